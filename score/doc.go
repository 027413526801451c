// Package score rates a feature column on two axes: how well it grades road
// unevenness (absolute correlation with the ground truth inside velocity
// buckets) and how consistent it is across measurement setups (one minus the
// mean pairwise deviation after joint min-max normalization).
//
// Buckets and groups that lack the variance or overlap a statistic needs are
// left out of the mean. A score with nothing left to average is NaN, never 0.
package score
