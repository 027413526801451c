// Package benchmark runs the pipeline grid search and the windshield
// mounting experiments end to end: it loads a recording dataset, evaluates
// pipelines over every trace, scores the resulting features and writes the
// result artifacts.
package benchmark
