package scheduler

// capturePolicy is the resolved decision the Run loop acts on, derived once
// per suite run from Config, the parallelism width, and whether the plan
// has any shared dependency at all (§4.5 "Output capture policy").
type capturePolicy struct {
	// capture is false only when --nocapture forced capture off entirely.
	capture bool
	// useWorkers forces every test through the IPC worker pool because
	// capture is wanted and more than one thread is in play.
	useWorkers bool
	// forcedSingleThread is true when shared dependencies made
	// worker-delegation impossible, so the run silently downgrades to one
	// thread instead (a Warning is still emitted).
	forcedSingleThread bool
}

// resolveCapturePolicy implements §4.5's policy paragraph and §7's "Shared
// dependency with parallel capture requested" warning.
func resolveCapturePolicy(cfg Config, threads int, hasSharedDeps bool) capturePolicy {
	if cfg.NoCapture {
		return capturePolicy{capture: false}
	}

	parallel := threads > 1
	if !parallel && !cfg.SpawnWorkers {
		return capturePolicy{capture: true}
	}

	if hasSharedDeps {
		// Spawned workers cannot share in-process dependency values, so
		// capture wins and parallelism loses instead.
		return capturePolicy{capture: true, forcedSingleThread: true}
	}

	return capturePolicy{capture: true, useWorkers: true}
}
