package plan

import (
	"strings"

	"github.com/giantswarm/gotestr/pkg/registry"
)

// isPrefixOf mirrors execution.rs's `is_prefix_of`
// (`that.starts_with(&format!("{this}::"))`): "" is a prefix of everything, a
// path is a prefix of itself, and "a::b" is a prefix of "a::b::c" but not of
// an unrelated sibling like "a::bc".
func isPrefixOf(a, b string) bool {
	if a == "" || a == b {
		return true
	}
	return strings.HasPrefix(b, a+"::")
}

// nextLevel mirrors execution.rs's `next_level`: given that `from` is a
// prefix of `to`, returns the path of the next child node on the way from
// `from` to `to`.
func nextLevel(from, to string) string {
	remaining := to
	if from != "" {
		remaining = to[len(from)+2:]
	}
	next := remaining
	for i := 0; i+1 < len(remaining); i++ {
		if remaining[i] == ':' && remaining[i+1] == ':' {
			next = remaining[:i]
			break
		}
	}
	if from == "" {
		return next
	}
	return from + "::" + next
}

// sortDependencies performs a Kahn-style topological sort over the
// dependency subgraph induced by the names present in deps; edges to names
// outside that set are ignored because they are expected to be resolved by
// an ancestor scope (§4.3).
func sortDependencies(deps []*registry.DependencyDescriptor) []*registry.DependencyDescriptor {
	present := make(map[string]*registry.DependencyDescriptor, len(deps))
	for _, d := range deps {
		present[d.Name] = d
	}

	indegree := make(map[string]int, len(deps))
	dependents := make(map[string][]string, len(deps))
	for _, d := range deps {
		indegree[d.Name] = 0
	}
	for _, d := range deps {
		for _, dd := range d.DependsOn {
			if _, ok := present[dd]; !ok {
				continue // resolved at an ancestor scope
			}
			indegree[d.Name]++
			dependents[dd] = append(dependents[dd], d.Name)
		}
	}

	var queue []string
	for _, d := range deps {
		if indegree[d.Name] == 0 {
			queue = append(queue, d.Name)
		}
	}

	out := make([]*registry.DependencyDescriptor, 0, len(deps))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		out = append(out, present[name])
		for _, next := range dependents[name] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	// A cycle would leave entries out of `out`; the registered graph is
	// assumed acyclic (spec.md makes no provision for cycle diagnostics), so
	// any leftovers are appended in original order rather than silently
	// dropped.
	if len(out) != len(deps) {
		emitted := make(map[string]bool, len(out))
		for _, d := range out {
			emitted[d.Name] = true
		}
		for _, d := range deps {
			if !emitted[d.Name] {
				out = append(out, d)
			}
		}
	}
	return out
}
