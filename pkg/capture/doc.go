// Package capture redirects the process-wide stdout/stderr into
// per-test, ordinal-tagged line buffers for in-process test execution,
// grounded on spec.md §4.6 and the upstream crate's use of
// `std::io::set_output_capture` (the Go analogue substitutes a process-wide
// os.Pipe-backed redirect, since Go has no per-goroutine writer hook).
package capture
