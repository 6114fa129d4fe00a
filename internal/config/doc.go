// Package config loads gotestr's project configuration: an optional
// .gotestr.yaml providing defaults for test-threads/format/shuffle, and the
// RUST_TEST_TIME_UNIT/RUST_TEST_TIME_INTEGRATION environment variables
// controlling report.TimeThreshold values (§6). RUST_TEST_TIME_DOCTEST is not
// read.
package config
