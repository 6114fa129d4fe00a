// Package filter applies user selection criteria (§4.2) to a registry
// snapshot, producing the ordered subsequence of tests the plan will be
// built from.
package filter

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/giantswarm/gotestr/pkg/registry"
)

// Mode selects between test mode and bench mode (§4.2: "Benchmarks are
// runnable only under bench mode; tests only under test mode").
type Mode int

const (
	ModeTest Mode = iota
	ModeBench
)

// Criteria mirrors the subset of §6's CLI surface that affects selection.
type Criteria struct {
	IncludeIgnored     bool
	IgnoredOnly        bool
	ExcludeShouldPanic bool
	Mode               Mode
	Filter             string // positional FILTER argument, may be a ":tag:NAME" selector
	Exact              bool
	Skip               []string

	Shuffle     bool
	ShuffleSeed *uint64
}

// Result is the outcome of Apply: the ordered, filtered test list plus the
// shuffle seed actually used (logged by the CLI when shuffling was
// requested without an explicit seed, per SPEC_FULL.md supplemental
// feature #5).
type Result struct {
	Tests    []*registry.TestDescriptor
	UsedSeed uint64 // only meaningful when Shuffled is true
	Shuffled bool
}

// Apply implements §4.2's "a test is selected if and only if it passes
// every active criterion".
func Apply(tests []*registry.TestDescriptor, props []*registry.SuiteProperty, c Criteria) Result {
	ancestorTags := ancestorTagIndex(tests, props)

	out := make([]*registry.TestDescriptor, 0, len(tests))
	for _, t := range tests {
		if matches(t, c, ancestorTags) {
			out = append(out, t)
		}
	}

	result := Result{Tests: out}
	if c.Shuffle || c.ShuffleSeed != nil {
		seed := uint64(0)
		if c.ShuffleSeed != nil {
			seed = *c.ShuffleSeed
		} else {
			seed = rand.Uint64()
		}
		shuffled := make([]*registry.TestDescriptor, len(out))
		copy(shuffled, out)
		rng := rand.New(rand.NewSource(int64(seed)))
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		result.Tests = shuffled
		result.UsedSeed = seed
		result.Shuffled = true
	}
	return result
}

func matches(t *registry.TestDescriptor, c Criteria, ancestorTags map[string][]string) bool {
	if t.IsBenchmark && c.Mode != ModeBench {
		return false
	}
	if !t.IsBenchmark && c.Mode == ModeBench {
		return false
	}

	if t.Ignored {
		if !c.IncludeIgnored && !c.IgnoredOnly {
			return false
		}
	} else if c.IgnoredOnly {
		return false
	}

	if c.ExcludeShouldPanic && t.ShouldPanic.Expected {
		return false
	}

	for _, skip := range c.Skip {
		if strings.Contains(t.FullyQualifiedName, skip) {
			return false
		}
	}

	if c.Filter != "" {
		if tag, ok := parseTagSelector(c.Filter); ok {
			if !hasTag(t, tag, ancestorTags) {
				return false
			}
		} else if c.Exact {
			if t.FullyQualifiedName != c.Filter {
				return false
			}
		} else if !strings.Contains(t.FullyQualifiedName, c.Filter) {
			return false
		}
	}

	return true
}

// parseTagSelector recognizes the ":tag:NAME" positional filter syntax
// (§6 "Tag filter syntax").
func parseTagSelector(filter string) (string, bool) {
	const prefix = ":tag:"
	if strings.HasPrefix(filter, prefix) {
		return strings.TrimPrefix(filter, prefix), true
	}
	return "", false
}

func hasTag(t *registry.TestDescriptor, tag string, ancestorTags map[string][]string) bool {
	for _, own := range t.Tags {
		if own == tag {
			return true
		}
	}
	for _, ancestor := range ancestorTags[t.ModulePath] {
		if ancestor == tag {
			return true
		}
	}
	return false
}

// ancestorTagIndex pre-computes, for every module path that owns at least
// one test, the set of tags contributed by that path and every ancestor
// suite property (§4.2: "matched against the test's own tags or any
// ancestor suite's tags").
func ancestorTagIndex(tests []*registry.TestDescriptor, props []*registry.SuiteProperty) map[string][]string {
	byPath := make(map[string][]string)
	for _, p := range props {
		if p.Kind == registry.PropertyTag {
			byPath[p.ModulePath] = append(byPath[p.ModulePath], p.Tag)
		}
	}

	// Memoize per distinct module path encountered; ancestors are found by
	// repeatedly trimming the last "::segment" off the path.
	cache := make(map[string][]string)
	var resolve func(path string) []string
	resolve = func(path string) []string {
		if cached, ok := cache[path]; ok {
			return cached
		}
		tags := append([]string(nil), byPath[path]...)
		if idx := strings.LastIndex(path, "::"); idx >= 0 {
			tags = append(tags, resolve(path[:idx])...)
		} else if path != "" {
			tags = append(tags, resolve("")...)
		}
		cache[path] = tags
		return tags
	}

	// Resolve for every test's own module path, not just paths that carry a
	// tag property directly — a test several levels under a tagged suite
	// has no entry in byPath of its own but must still inherit the tag.
	out := make(map[string][]string)
	for _, t := range tests {
		if _, ok := out[t.ModulePath]; !ok {
			out[t.ModulePath] = resolve(t.ModulePath)
		}
	}
	return out
}

// Validate enforces the CLI constraints noted in §6: --test and --bench are
// mutually exclusive, as are --shuffle and --shuffle-seed (clap's
// conflicts_with in the original).
func Validate(c Criteria, testFlag, benchFlag bool) error {
	if testFlag && benchFlag {
		return fmt.Errorf("--test and --bench cannot both be set")
	}
	if c.Shuffle && c.ShuffleSeed != nil {
		return fmt.Errorf("--shuffle and --shuffle-seed cannot both be set")
	}
	return nil
}
