// Package sentiment turns classifier verdicts into per-commit sentiment scores
// and aggregates them into rolling, per-author and categorical statistics.
//
// All functions assume the commit sequence is chronological, oldest first.
// The moving average and the trend are only meaningful in that order; callers
// holding a newest-first list (the order git log produces) must reverse it
// before building a Series.
package sentiment
