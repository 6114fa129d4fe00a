// Package registry is the process-wide collection populated during package
// init() (the Go stand-in for the source project's pre-main constructor
// hook, per spec.md §9's re-architecture guidance). Registration is expected
// to finish before MaterializeGenerators runs; the Register methods do not
// check this. Everything downstream treats its Snapshot as immutable.
package registry
