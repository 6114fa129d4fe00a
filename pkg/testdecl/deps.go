package testdecl

import (
	"context"
	"reflect"

	"github.com/giantswarm/gotestr/pkg/registry"
)

// depConfig accumulates DepOption settings before a Dependency call builds
// its registry.DependencyDescriptor.
type depConfig struct {
	tag       string
	async     bool
	dependsOn []string
	dimension string
}

// DepOption mutates a dependency registration's configuration.
type DepOption func(*depConfig)

// WithTag disambiguates two dependencies of the same constructed type in
// one scope (`#[test_dep(tagged_as = "...")]`, SPEC_FULL.md supplemental
// feature #1).
func WithTag(tag string) DepOption {
	return func(c *depConfig) { c.tag = tag }
}

// AsyncConstructor marks the constructor as awaited inline under the async
// runtime; rejected with a PlanError if ever reached under the sync
// runtime (§4.4 edge policy).
func AsyncConstructor() DepOption {
	return func(c *depConfig) { c.async = true }
}

// Dimension names this dependency as a member of a matrix dimension
// (SPEC_FULL.md supplemental feature #2), queryable from a generator via
// registry.GeneratorTarget.Dimension.
func Dimension(name string) DepOption {
	return func(c *depConfig) { c.dimension = name }
}

// DependsOnType declares that this constructor consumes the dependency of
// type T (optionally tagged), letting pkg/plan's topological sort order
// constructors correctly within a scope.
func DependsOnType[T any](tag ...string) DepOption {
	name := dependencyName[T](firstOrEmpty(tag))
	return func(c *depConfig) { c.dependsOn = append(c.dependsOn, name) }
}

func firstOrEmpty(tag []string) string {
	if len(tag) == 0 {
		return ""
	}
	return tag[0]
}

// dependencyName derives a dependency's registry name from its Go type
// plus an optional disambiguating tag, the direct analogue of deps.rs's
// type_path_to_string.
func dependencyName[T any](tag string) string {
	name := reflect.TypeFor[T]().String()
	if tag != "" {
		name += "#" + tag
	}
	return name
}

// Dependency registers a typed constructor at modulePath
// (`#[test_dep] fn ctor(...) -> T`). The constructor receives a
// registry.DependencyView over every dependency already materialized in
// its own and ancestor scopes.
func Dependency[T any](modulePath string, ctor func(ctx context.Context, deps registry.DependencyView) (T, error), opts ...DepOption) {
	var cfg depConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	registry.Default.RegisterDependency(&registry.DependencyDescriptor{
		Name:       dependencyName[T](cfg.tag),
		ModulePath: modulePath,
		DependsOn:  cfg.dependsOn,
		Dimension:  cfg.dimension,
		Tag:        cfg.tag,
		Constructor: registry.DependencyConstructor{
			Async: cfg.async,
			Build: func(ctx context.Context, deps registry.DependencyView) (any, error) {
				return ctor(ctx, deps)
			},
		},
	})
}

// Get retrieves a dependency of type T (optionally tagged) from a
// DependencyView, the analogue of deps.rs's generated `test_r_get_dep_*`
// getter. ok is false when the dependency isn't present or failed to
// downcast to T.
func Get[T any](deps registry.DependencyView, tag ...string) (T, bool) {
	var zero T
	v, ok := deps.Get(dependencyName[T](firstOrEmpty(tag)))
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
