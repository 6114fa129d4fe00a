package registry

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry is the process-wide, mutex-protected collection of everything
// registered by pkg/testdecl during package init(). Registration is
// thread-safe but, per spec.md §4.1, contention never matters because it
// only happens serially before main() starts running tests.
type Registry struct {
	mu sync.Mutex

	tests        []*TestDescriptor
	dependencies []*DependencyDescriptor
	properties   []*SuiteProperty
	generators   []registeredGenerator

	materialized bool
}

type registeredGenerator struct {
	modulePath string
	fn         Generator
}

// New returns an empty Registry. Most callers use the process-wide Default
// instead.
func New() *Registry {
	return &Registry{}
}

// Default is the process-wide registry pkg/testdecl registers into.
var Default = New()

// RegisterTest appends a test descriptor.
func (r *Registry) RegisterTest(d *TestDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tests = append(r.tests, d)
}

// RegisterDependency appends a dependency descriptor.
func (r *Registry) RegisterDependency(d *DependencyDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dependencies = append(r.dependencies, d)
}

// RegisterSuiteProperty appends a suite-level property.
func (r *Registry) RegisterSuiteProperty(p *SuiteProperty) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.properties = append(r.properties, p)
}

// RegisterGenerator appends a dynamic test generator scoped to modulePath.
func (r *Registry) RegisterGenerator(modulePath string, fn Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators = append(r.generators, registeredGenerator{modulePath: modulePath, fn: fn})
}

// Snapshot is the immutable view the Filter and Plan consume.
type Snapshot struct {
	Tests        []*TestDescriptor
	Dependencies []*DependencyDescriptor
	Properties   []*SuiteProperty
}

// dimensionTags indexes registered dependency tags by their Dimension name,
// used to answer GeneratorTarget.Dimension lookups.
func (r *Registry) dimensionTags() map[string][]string {
	out := make(map[string][]string)
	for _, d := range r.dependencies {
		if d.Dimension == "" {
			continue
		}
		out[d.Dimension] = append(out[d.Dimension], d.Tag)
	}
	for k := range out {
		sort.Strings(out[k])
	}
	return out
}

// MaterializeGenerators runs every registered generator exactly once and
// merges their emitted tests into the test list (§4.1). Generators run
// concurrently (bounded by GOMAXPROCS via errgroup) since per spec.md §9
// Open Questions, generators are dependency-free and therefore safe to run
// in any order or concurrency.
func (r *Registry) MaterializeGenerators(ctx context.Context) error {
	r.mu.Lock()
	if r.materialized {
		r.mu.Unlock()
		return nil
	}
	generators := make([]registeredGenerator, len(r.generators))
	copy(generators, r.generators)
	dims := r.dimensionTags()
	r.mu.Unlock()

	results := make([][]*TestDescriptor, len(generators))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, gen := range generators {
		i, gen := i, gen
		g.Go(func() error {
			target := &GeneratorTarget{ModulePath: gen.modulePath, dimensions: dims}
			gen.fn(target)
			results[i] = target.tests
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("generator materialization failed: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, emitted := range results {
		r.tests = append(r.tests, emitted...)
	}
	r.materialized = true
	return nil
}

// Snapshot copies the currently registered state out from under the mutex.
// Callers must have already run MaterializeGenerators if dynamic tests are
// expected to be present.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	tests := make([]*TestDescriptor, len(r.tests))
	copy(tests, r.tests)
	deps := make([]*DependencyDescriptor, len(r.dependencies))
	copy(deps, r.dependencies)
	props := make([]*SuiteProperty, len(r.properties))
	copy(props, r.properties)

	return Snapshot{Tests: tests, Dependencies: deps, Properties: props}
}

// Validate checks for registration conflicts that are fatal at planning
// time (§7): duplicate fully-qualified test names, and dependency edges
// referencing a name that is not registered at any scope. Whether the
// referenced dependency is visible from the referring dependency's scope is
// not checked.
func (s Snapshot) Validate() error {
	seen := make(map[string]bool, len(s.Tests))
	for _, t := range s.Tests {
		if seen[t.FullyQualifiedName] {
			return fmt.Errorf("registration conflict: duplicate test name %q", t.FullyQualifiedName)
		}
		seen[t.FullyQualifiedName] = true
	}

	known := make(map[string]bool, len(s.Dependencies))
	for _, d := range s.Dependencies {
		known[d.Name] = true
	}
	for _, d := range s.Dependencies {
		for _, dep := range d.DependsOn {
			if !known[dep] {
				return fmt.Errorf("registration conflict: dependency %q (scope %q) references unknown dependency %q", d.Name, d.ModulePath, dep)
			}
		}
	}
	return nil
}
