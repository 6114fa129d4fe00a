package scheduler

import (
	"time"
)

// Config carries every knob the CLI layer (internal/cli, §6) resolves down
// to the scheduler.
type Config struct {
	// Async selects the goroutine-semaphore cooperative runtime; false
	// selects the fixed worker-goroutine pool (§4.5).
	Async bool

	// ThreadCount is the effective concurrency width. Zero means
	// runtime.NumCPU().
	ThreadCount int

	// NoCapture disables output capture globally regardless of any test's
	// own CaptureControl (§4.5 "If --nocapture is set, capture is disabled
	// globally").
	NoCapture bool

	// SpawnWorkers forces every test through the IPC worker pool even when
	// capture/parallelism alone wouldn't require it (the hidden
	// --spawn-workers flag, and the mode a worker process itself runs its
	// own sub-plan under is never SpawnWorkers=true recursively — workers
	// always execute in-process).
	SpawnWorkers bool

	// WorkerBinaryPath is the current executable, passed to ipc.WorkerConfig
	// when worker delegation is required.
	WorkerBinaryPath string
	// WorkerArgs carries the selection flags a worker needs to bootstrap its
	// own Registry/Plan (§4.7); see internal/cli's workerArgs.
	WorkerArgs []string

	// DefaultTimeout applies to tests that declare none; zero means no
	// timeout. Timeouts are only honored in async mode or when a test is
	// forced through a worker (§4.5 "Timeouts are not supported in sync
	// mode").
	DefaultTimeout time.Duration
}

// effectiveThreadCount resolves Config.ThreadCount against the actual
// machine, mirroring "available parallelism" in spec.md §4.5.
func (c Config) effectiveThreadCount(numCPU int) int {
	if c.ThreadCount > 0 {
		return c.ThreadCount
	}
	return numCPU
}
