// Package plan builds the module-path trie described in spec.md §3/§4.3-§4.4
// from a filtered test list, its dependency descriptors and suite
// properties, and drives iteration over it via PickNext.
//
// It is grounded on original_source/test-r-core/src/execution.rs
// (TestSuiteExecution::construct / pick_next_internal), translated from
// Rust's borrow-checked tree-of-references into an owned Go tree guarded by
// a single mutex: spec.md §5 already requires the plan to be "mutated only
// by the scheduler's pull loop under a mutex", so PickNext holds that lock
// for the traversal/materialization step and releases it before the caller
// runs the returned test.
package plan
