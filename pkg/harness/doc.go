// Package harness wires the Registry, Filter, Plan, Scheduler, IPC, and
// Reporter packages together into one suite run, the Go analogue of
// cargo-test-r/src/main.rs and test-r-core's tokio.rs/sync.rs test_runner
// entry points (filter the registry, build a plan, drive the scheduler,
// report lifecycle events, resolve an exit code).
package harness
