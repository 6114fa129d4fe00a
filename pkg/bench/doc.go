// Package bench implements the adaptive iteration-count benchmark loop,
// ported from the upstream bench.rs `iter`/`async_iter` functions: it grows
// the per-sample iteration count until either the result stabilizes or a
// wall-clock ceiling is hit, then hands the collected samples to pkg/stats.
package bench
