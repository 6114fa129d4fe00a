package plan

import (
	"context"
	"sync"

	"github.com/giantswarm/gotestr/pkg/registry"
)

// Plan is the module-path trie governing iteration order and dependency
// materialization (§3, §4.3).
type Plan struct {
	mu      sync.Mutex
	root    *node
	async   bool
	changed chan struct{} // closed and replaced under mu whenever tree state changes
}

// notifyLocked wakes every goroutine blocked in WaitForChange. Callers must
// hold mu.
func (p *Plan) notifyLocked() {
	close(p.changed)
	p.changed = make(chan struct{})
}

// WaitForChange blocks until a test is picked, a sequential lock is
// released, or ctx is done — whichever comes first. A scheduler loop uses
// this to distinguish "nothing pickable this instant because a sequential
// region is locked" (§4.4 step 2) from "the plan is genuinely exhausted",
// instead of busy-spinning on PickNext.
func (p *Plan) WaitForChange(ctx context.Context) error {
	p.mu.Lock()
	ch := p.changed
	p.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Build constructs a Plan from an already-filtered test list plus the full
// set of registered dependencies and suite properties (§4.3).
//
// An empty filtered test list still produces a valid root node carrying
// top-level (global-scope) dependencies and properties, so a worker process
// started in IPC mode can construct root-level dependencies for whatever
// single test its primary assigns it (§4.3 "Empty filter output still
// produces a root node").
func Build(async bool, tests []*registry.TestDescriptor, deps []*registry.DependencyDescriptor, props []*registry.SuiteProperty) *Plan {
	root := newNode("")

	if len(tests) == 0 {
		for _, d := range deps {
			if d.ModulePath == "" {
				root.dependencies = append(root.dependencies, d)
			}
		}
		for _, p := range props {
			if p.ModulePath == "" {
				if p.Kind == registry.PropertySequential {
					root.isSequential = true
				}
				root.props = append(root.props, p)
			}
		}
		return &Plan{root: root, async: async, changed: make(chan struct{})}
	}

	for _, p := range props {
		root.addProp(p)
	}
	for _, d := range deps {
		root.addDependency(d)
	}
	for _, t := range tests {
		root.addTest(t)
	}
	return &Plan{root: root, async: async, changed: make(chan struct{})}
}

// SkipCreatingDependencies disables dependency construction when picking
// the next test. Used when the plan only drives spawned workers, each of
// which materializes its own dependencies independently (§4.4).
func (p *Plan) SkipCreatingDependencies() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.root.setSkipCreatingDependencies()
}

// HasDependencies reports whether any node in the plan owns a dependency.
func (p *Plan) HasDependencies() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.root.hasDependencies()
}

// Remaining returns the number of not-yet-picked tests.
func (p *Plan) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.root.remaining
}

// IsEmpty reports whether the plan has no more work.
func (p *Plan) IsEmpty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.root.isEmpty()
}

// Item is one executable bundle returned by PickNext: the selected test,
// its materialized dependency view, and a Release function that must be
// called exactly once, regardless of how the test run ends (success,
// failure, panic, or timeout), to release any held sequential-region lock
// (§4.4, §5 "guard object... releases its sequential lock on drop, on all
// exit paths").
type Item struct {
	Test    *registry.TestDescriptor
	Deps    registry.DependencyView
	Release func()
}

// Resolve locates the single test identified by modulePath/name and
// materializes whatever ancestor dependencies it needs, without consuming
// it from the tree or touching any sequential lock. Used by a worker
// process (§4.7), which always runs exactly one named test per IPC command.
func (p *Plan) Resolve(ctx context.Context, modulePath, name string) (*Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	test, view, err := p.root.resolve(ctx, p.async, modulePath, name, registry.MapDependencyView{})
	if err != nil {
		return nil, err
	}
	return &Item{Test: test, Deps: view, Release: func() {}}, nil
}

// wrapRelease returns a Release func that calls the node-level release
// (freeing a held sequential lock, if any) and then wakes any goroutine
// blocked in WaitForChange, since that release may have just made another
// node's test pickable.
func (p *Plan) wrapRelease(release func()) func() {
	return func() {
		release()
		p.mu.Lock()
		p.notifyLocked()
		p.mu.Unlock()
	}
}

// PickNext implements §4.4. It holds the plan-wide mutex for the
// traversal/materialization step and releases it before returning, so the
// caller is free to run the returned test (which may take arbitrarily long)
// without blocking other goroutines from picking their own work.
func (p *Plan) PickNext(ctx context.Context) (*Item, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	result, err := p.root.pickNext(ctx, p.async, registry.MapDependencyView{})
	if err != nil {
		return nil, false, err
	}
	if result == nil {
		return nil, false, nil
	}
	p.notifyLocked()
	return &Item{Test: result.test, Deps: result.deps, Release: p.wrapRelease(result.release)}, true, nil
}
