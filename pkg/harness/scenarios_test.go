package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/gotestr/pkg/registry"
)

// TestScenarioA mirrors spec.md §8 Scenario A: a test that prints to
// stdout and fails an assertion. Capture is forced single-threaded here (no
// SpawnWorkers), exercising the in-process pkg/capture path rather than IPC.
func TestScenarioA(t *testing.T) {
	reg := registry.New()
	reg.RegisterTest(&registry.TestDescriptor{
		FullyQualifiedName: "suite::it_does_work",
		ModulePath:         "suite",
		Name:               "it_does_work",
		Func: func(ctx context.Context, deps registry.DependencyView) registry.Outcome {
			fmt.Print("Print from 'it_does_work'\n")
			return registry.Outcome{Failed: true, Panic: "assertion failed: 2 + 2 == 5"}
		},
	})

	var buf bytes.Buffer
	summary, err := Run(context.Background(), reg, Options{
		Format:      FormatJSON,
		Stdout:      &buf,
		ThreadCount: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, buf.String(), "assertion failed")
}

// TestScenarioB mirrors spec.md §8 Scenario B: two dependencies consumed by
// one test, constructed before the test runs and in declaration order.
func TestScenarioB(t *testing.T) {
	var mu sync.Mutex
	var order []string

	reg := registry.New()
	reg.RegisterDependency(&registry.DependencyDescriptor{
		Name:       "harness.Dep1",
		ModulePath: "crate::deps::tests",
		Constructor: registry.DependencyConstructor{
			Build: func(ctx context.Context, deps registry.DependencyView) (any, error) {
				mu.Lock()
				order = append(order, "Dep1")
				mu.Unlock()
				return 10, nil
			},
		},
	})
	reg.RegisterDependency(&registry.DependencyDescriptor{
		Name:       "harness.Dep2",
		ModulePath: "crate::deps::tests",
		Constructor: registry.DependencyConstructor{
			Build: func(ctx context.Context, deps registry.DependencyView) (any, error) {
				mu.Lock()
				order = append(order, "Dep2")
				mu.Unlock()
				return 20, nil
			},
		},
	})
	reg.RegisterTest(&registry.TestDescriptor{
		FullyQualifiedName: "crate::deps::tests::dep_test_works",
		ModulePath:         "crate::deps::tests",
		Name:               "dep_test_works",
		Func: func(ctx context.Context, deps registry.DependencyView) registry.Outcome {
			d1, ok1 := deps.Get("harness.Dep1")
			d2, ok2 := deps.Get("harness.Dep2")
			if !ok1 || !ok2 || d1.(int) != 10 || d2.(int) != 20 {
				return registry.Outcome{Failed: true, Panic: "dependencies missing or wrong value"}
			}
			mu.Lock()
			order = append(order, "dep_test_works")
			mu.Unlock()
			return registry.Outcome{}
		},
	})

	var buf bytes.Buffer
	summary, err := Run(context.Background(), reg, Options{Format: FormatTerse, Stdout: &buf, ThreadCount: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, []string{"Dep1", "Dep2", "dep_test_works"}, order)
}

// TestScenarioC mirrors spec.md §8 Scenario C: a sequential suite of two
// tests that each hold its lock for a measurable duration. Wall-clock must
// be at least the sum of both sleeps regardless of thread count, proving
// the subtree never overlaps.
func TestScenarioC(t *testing.T) {
	const sleep = 60 * time.Millisecond

	var mu sync.Mutex
	var active int
	var maxActive int

	reg := registry.New()
	reg.RegisterSuiteProperty(&registry.SuiteProperty{ModulePath: "suite::seq", Kind: registry.PropertySequential})

	makeTest := func(name string) *registry.TestDescriptor {
		return &registry.TestDescriptor{
			FullyQualifiedName: "suite::seq::" + name,
			ModulePath:         "suite::seq",
			Name:               name,
			Func: func(ctx context.Context, deps registry.DependencyView) registry.Outcome {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				time.Sleep(sleep)

				mu.Lock()
				active--
				mu.Unlock()
				return registry.Outcome{}
			},
		}
	}
	reg.RegisterTest(makeTest("sleeper_one"))
	reg.RegisterTest(makeTest("sleeper_two"))

	start := time.Now()
	var buf bytes.Buffer
	summary, err := Run(context.Background(), reg, Options{Format: FormatTerse, Stdout: &buf, Async: true, ThreadCount: 4, NoCapture: true})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 1, maxActive, "sequential subtree must never overlap")
	assert.GreaterOrEqual(t, elapsed, 2*sleep)
}

// TestScenarioD mirrors spec.md §8 Scenario D: a flaky test marked
// retry_known_flaky(n) that fails on its first attempt but passes on a
// retry is reported as an overall pass with a nonzero retry count.
func TestScenarioD(t *testing.T) {
	var attempts int

	reg := registry.New()
	reg.RegisterTest(&registry.TestDescriptor{
		FullyQualifiedName: "suite::flaky_test",
		ModulePath:         "suite",
		Name:               "flaky_test",
		Flakiness:          registry.RetryKnownFlaky(10),
		Func: func(ctx context.Context, deps registry.DependencyView) registry.Outcome {
			attempts++
			if attempts == 1 {
				return registry.Outcome{Failed: true, Panic: "simulated flake"}
			}
			return registry.Outcome{}
		},
	})

	var buf bytes.Buffer
	summary, err := Run(context.Background(), reg, Options{Format: FormatTerse, Stdout: &buf, ThreadCount: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, attempts)
}

// TestScenarioF mirrors spec.md §8 Scenario F: `--list --format json` emits
// exactly the filtered tests' fully qualified names and runs nothing.
func TestScenarioF(t *testing.T) {
	ran := false
	reg := registry.New()
	for _, name := range []string{"suite::a", "suite::b", "suite::c"} {
		name := name
		reg.RegisterTest(&registry.TestDescriptor{
			FullyQualifiedName: name,
			ModulePath:         "suite",
			Name:               strings.TrimPrefix(name, "suite::"),
			Func: func(ctx context.Context, deps registry.DependencyView) registry.Outcome {
				ran = true
				return registry.Outcome{}
			},
		})
	}

	var buf bytes.Buffer
	summary, err := Run(context.Background(), reg, Options{List: true, Format: FormatJSON, Stdout: &buf})
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, summary)

	var names []string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &names))
	assert.ElementsMatch(t, []string{"suite::a", "suite::b", "suite::c"}, names)
}

// TestEmptyFilterStillSucceeds mirrors spec.md §8 boundary behaviour: an
// empty filter result still produces a valid do-nothing run, exit code 0.
func TestEmptyFilterStillSucceeds(t *testing.T) {
	reg := registry.New()
	reg.RegisterTest(&registry.TestDescriptor{
		FullyQualifiedName: "suite::only_test",
		ModulePath:         "suite",
		Name:               "only_test",
		Func:               func(ctx context.Context, deps registry.DependencyView) registry.Outcome { return registry.Outcome{} },
	})

	var buf bytes.Buffer
	summary, err := Run(context.Background(), reg, Options{Format: FormatTerse, Stdout: &buf, Filter: "nothing-matches-this"})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Passed)
	assert.Equal(t, 0, summary.Failed)
}
