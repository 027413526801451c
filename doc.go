// Package unevenness ranks scored accelerometer signal processing pipelines
// and renders the text report of a grading run: the top features, the raw
// signal baseline and kernel size sweeps of the convolution operations.
//
// Feature generation lives in package aspp, scoring in package score and the
// end-to-end run in package benchmark.
package unevenness
