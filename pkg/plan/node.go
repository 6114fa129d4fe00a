package plan

import (
	"context"
	"fmt"

	"github.com/giantswarm/gotestr/pkg/registry"
)

// ErrAsyncInSyncRuntime is returned by PickNext when a node's scope declares
// an async dependency constructor but the plan was built in sync mode
// (§4.4 edge policy, §7 "Async constructor in sync runtime").
type ErrAsyncInSyncRuntime struct {
	DependencyName string
	ModulePath     string
}

func (e *ErrAsyncInSyncRuntime) Error() string {
	return fmt.Sprintf("async dependency %q (scope %q) requested in sync runtime", e.DependencyName, e.ModulePath)
}

// node is one entry in the module-path trie (§3 "Plan node").
type node struct {
	path string

	dependencies []*registry.DependencyDescriptor
	tests        []*registry.TestDescriptor // LIFO: popped from the end (§5 "within a single node the scheduler is LIFO")
	props        []*registry.SuiteProperty
	children     []*node

	materialized      registry.MapDependencyView
	materializedCount int
	lock              sequentialLock
	remaining         int
	isSequential      bool
	skipCreatingDeps  bool
}

func newNode(path string) *node {
	return &node{path: path}
}

func (n *node) isEmpty() bool {
	return len(n.tests) == 0 && len(n.children) == 0
}

// hasDependencies reports whether this node or any descendant owns at least
// one dependency descriptor (used by the scheduler's capture policy to decide
// whether parallel output capture must fall back to single-threaded execution).
func (n *node) hasDependencies() bool {
	if len(n.dependencies) > 0 {
		return true
	}
	for _, c := range n.children {
		if c.hasDependencies() {
			return true
		}
	}
	return false
}

func (n *node) setSkipCreatingDependencies() {
	n.skipCreatingDeps = true
	for _, c := range n.children {
		c.setSkipCreatingDependencies()
	}
}

func (n *node) isMaterialized() bool {
	return n.skipCreatingDeps || n.materializedCount == len(n.dependencies)
}

func (n *node) addDependency(d *registry.DependencyDescriptor) {
	if n.path == d.ModulePath {
		n.dependencies = append(n.dependencies, d)
		return
	}
	for _, c := range n.children {
		if isPrefixOf(c.path, d.ModulePath) {
			c.addDependency(d)
			return
		}
	}
	child := newNode(nextLevel(n.path, d.ModulePath))
	child.addDependency(d)
	n.children = append(n.children, child)
}

func (n *node) addTest(t *registry.TestDescriptor) {
	n.remaining++
	if n.path == t.ModulePath {
		n.tests = append(n.tests, t)
		return
	}
	for _, c := range n.children {
		if isPrefixOf(c.path, t.ModulePath) {
			c.addTest(t)
			return
		}
	}
	child := newNode(nextLevel(n.path, t.ModulePath))
	child.addTest(t)
	n.children = append(n.children, child)
}

func (n *node) addProp(p *registry.SuiteProperty) {
	if n.path == p.ModulePath {
		if p.Kind == registry.PropertySequential {
			n.isSequential = true
		}
		n.props = append(n.props, p)
		return
	}
	for _, c := range n.children {
		if isPrefixOf(c.path, p.ModulePath) {
			c.addProp(p)
			return
		}
	}
	child := newNode(nextLevel(n.path, p.ModulePath))
	child.addProp(p)
	n.children = append(n.children, child)
}

// dropDeps releases a node's materialized dependencies once it has no
// remaining tests and no lock is held (§3 invariant, §8 property 3).
func (n *node) dropDeps() {
	n.materialized = nil
	n.materializedCount = 0
}

// materializeDeps constructs every dependency owned by this node, in
// topological order, threading the parent scope's view so constructors can
// consume ancestor-scope values (§4.3, §4.4 step 1).
func (n *node) materializeDeps(ctx context.Context, async bool, parent registry.MapDependencyView) (registry.MapDependencyView, error) {
	view := parent.Clone()
	materialized := make(registry.MapDependencyView, len(n.dependencies))

	for _, dep := range sortDependencies(n.dependencies) {
		if dep.Constructor.Async && !async {
			return nil, &ErrAsyncInSyncRuntime{DependencyName: dep.Name, ModulePath: dep.ModulePath}
		}
		value, err := dep.Constructor.Build(ctx, view)
		if err != nil {
			return nil, fmt.Errorf("constructing dependency %q (scope %q): %w", dep.Name, dep.ModulePath, err)
		}
		materialized[dep.Name] = value
		view[dep.Name] = value
	}

	n.materialized = materialized
	n.materializedCount = len(n.dependencies)
	return view, nil
}

func (n *node) dependencyView(parent registry.MapDependencyView) registry.MapDependencyView {
	view := parent.Clone()
	for k, v := range n.materialized {
		view[k] = v
	}
	return view
}

// resolve locates a specific test by module path and name, materializing
// only the ancestor dependency chain needed to run it. Used by the IPC
// worker loop (§4.7), which is handed one fully-identified test at a time by
// the primary rather than driving pick_next itself.
func (n *node) resolve(ctx context.Context, async bool, modulePath, name string, parentView registry.MapDependencyView) (*registry.TestDescriptor, registry.MapDependencyView, error) {
	var view registry.MapDependencyView
	if !n.isMaterialized() {
		var err error
		view, err = n.materializeDeps(ctx, async, parentView)
		if err != nil {
			return nil, nil, err
		}
	} else {
		view = n.dependencyView(parentView)
	}

	if n.path == modulePath {
		for _, t := range n.tests {
			if t.Name == name {
				return t, view, nil
			}
		}
		return nil, nil, fmt.Errorf("test %q not found in scope %q", name, modulePath)
	}

	for _, c := range n.children {
		if isPrefixOf(c.path, modulePath) {
			return c.resolve(ctx, async, modulePath, name, view)
		}
	}
	return nil, nil, fmt.Errorf("no scope found for %q (looking for test %q)", modulePath, name)
}

// picked is one bundle returned by pickNext, mirroring execution.rs's
// (RegisteredTest, HashMap<...>, SequentialExecutionLockGuard) triple.
type picked struct {
	test    *registry.TestDescriptor
	deps    registry.MapDependencyView
	release func()
}

// pickNext implements §4.4's algorithm. The caller is expected to hold the
// Plan-wide mutex for the duration of this call; the returned release
// closure is safe to invoke without that mutex held.
func (n *node) pickNext(ctx context.Context, async bool, parentView registry.MapDependencyView) (*picked, error) {
	if n.isEmpty() {
		return nil, nil
	}

	var view registry.MapDependencyView
	if !n.isMaterialized() {
		var err error
		view, err = n.materializeDeps(ctx, async, parentView)
		if err != nil {
			return nil, err
		}
	} else {
		view = n.dependencyView(parentView)
	}

	locked := n.lock.isLocked()

	var result *picked
	if len(n.tests) == 0 || locked {
		remaining := n.children[:0]
		for _, child := range n.children {
			if result == nil {
				r, err := child.pickNext(ctx, async, view)
				if err != nil {
					return nil, err
				}
				if r != nil {
					result = r
				}
			}
			if !child.isEmpty() {
				remaining = append(remaining, child)
			}
		}
		n.children = remaining
	} else {
		release, err := n.lock.acquire(ctx, n.isSequential)
		if err != nil {
			return nil, err
		}
		last := len(n.tests) - 1
		test := n.tests[last]
		n.tests = n.tests[:last]
		result = &picked{test: test, deps: view, release: release}
	}

	if n.isEmpty() && n.isMaterialized() && !n.lock.isLocked() {
		n.dropDeps()
	}
	if result != nil {
		n.remaining--
	}
	return result, nil
}
