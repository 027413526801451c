// Command aspp searches accelerometer signal processing pipelines for the
// features that best grade road unevenness.
//
// Usage:
//
//	aspp evaluate [--dataset zeb.csv] [--out dir] [--format parquet|csv]
//	aspp windshield [--dataset windshield.csv] [--out dir]
//	aspp grid [--list]
//	aspp config init|show
package main
