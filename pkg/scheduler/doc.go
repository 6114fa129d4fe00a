// Package scheduler drives a Plan to completion under one of two runtimes
// (spec.md §4.5): an async, goroutine-based cooperative executor bounded by
// a semaphore, or a sync, fixed-size worker-goroutine pool standing in for
// the source project's OS-thread pool. Both runtimes apply the same
// per-test policy layer (flakiness retries, should-panic interpretation,
// output capture, optional IPC-worker delegation) before reporting through
// a report.Reporter.
//
// Grounded on original_source/test-r-core/src/{execution.rs,sync.rs} for
// the pick_next loop shape, and on the teacher's use of golang.org/x/sync
// for bounded concurrent worker pools (internal/reconciler).
package scheduler
