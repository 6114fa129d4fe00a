package testdecl

import "github.com/giantswarm/gotestr/pkg/registry"

// Sequential marks modulePath (and all its descendants) as a sequential
// region: no two tests under it ever run concurrently (`#[sequential]` on a
// module, §3's "Sequential region").
func Sequential(modulePath string) {
	registry.Default.RegisterSuiteProperty(&registry.SuiteProperty{
		ModulePath: modulePath,
		Kind:       registry.PropertySequential,
	})
}

// SuiteTag attaches a tag to every test under modulePath, including
// descendants (`#[tag(name)]` on a module rather than a single test),
// resolved by pkg/filter's ancestor-tag lookup.
func SuiteTag(modulePath, tag string) {
	registry.Default.RegisterSuiteProperty(&registry.SuiteProperty{
		ModulePath: modulePath,
		Kind:       registry.PropertyTag,
		Tag:        tag,
	})
}

// RegisterGenerator registers a dynamic test generator scoped to
// modulePath (`#[test_r::test_gen]`, dynamic.rs). It runs exactly once,
// during Registry.MaterializeGenerators, before filtering/planning begins.
func RegisterGenerator(modulePath string, fn registry.Generator) {
	registry.Default.RegisterGenerator(modulePath, fn)
}
