// Package aspp builds and evaluates accelerometer signal processing
// pipelines: a chain of signal operations followed by one aggregation,
// producing one scalar feature per dataset row.
//
// A Family enumerates the Cartesian grid of pipelines with a fixed number of
// operation slots. An Evaluator fans a batch of pipelines out to a worker pool
// and collects the resulting columns into a FeatureTable keyed by canonical
// id.
package aspp
