// Package testdecl is the public registration surface test packages import
// to declare tests, benchmarks, shared dependencies, suite properties, and
// dynamic test generators. It is the Go analogue of the attribute macros in
// test-r-macro/src/{test,deps,suite,dynamic}.rs — Go has neither
// proc-macros nor reliable caller-module introspection, so every
// registration call takes an explicit module-path-style scope string
// instead of inferring it from source location (spec.md §9's "Open
// questions" does not cover this directly; it is this port's resolution of
// the general "how does a Go call site express itself into the plan trie"
// problem test.go's register helper and pkg/plan already assume is solved
// upstream).
//
// Registration happens at package init() time, exactly mirroring the
// pre-main constructor hook design note in spec.md §9: by the time main()
// runs, every package that imported testdecl and called one of its
// functions in an init() func has already populated registry.Default.
package testdecl
