// Package signal holds the single-trace building blocks of an accelerometer
// signal processing pipeline: the text codec used to store raw traces in a
// dataset cell, the operation catalogue (moving average, ramp smoothing,
// Butterworth band-pass) and the aggregation catalogue that reduces a trace
// to one scalar.
//
// Operations and aggregations are closed sets. Identifiers such as "avg-5"
// or "RMS" are parsed once into typed values; after that every dispatch is a
// switch over the kind, so the only place an unknown name can appear is the
// parse boundary:
//
//	op, err := signal.ParseOperation("bnd-10/40")
//	agg, err := signal.ParseAggregation("RMS")
//	value := agg.Apply(op.Apply(trace))
//
// Operations never modify their input; convolution based operations return a
// longer trace (len(x)+k-1) while the band-pass keeps the input length.
package signal
