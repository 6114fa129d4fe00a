package ipc

import "time"

// Command is sent primary -> worker: run exactly this test and respond
// (§4.7 "Message set (primary -> worker)").
type Command struct {
	Name       string
	CrateName  string
	ModulePath string
}

// ResultKind tags the SerializableResult union.
type ResultKind uint8

const (
	ResultPassed ResultKind = iota
	ResultBenchmarked
	ResultFailed
	ResultIgnored
)

// SerializableResult is the wire form of a test outcome (§4.7 "result is
// the serialized outcome"). Captured output is not part of this struct: the
// primary reads the worker's stdout/stderr directly off the child process
// and attaches lines to the result itself on arrival of Response.
type SerializableResult struct {
	Kind ResultKind

	ExecTime time.Duration

	// PanicMessage is set only for ResultFailed.
	PanicMessage string

	// Set only for ResultBenchmarked.
	MedianNanos  float64
	MedianAbsDev float64
	MinNanos     float64
	MaxNanos     float64
	MBPerSec     float64
}

// Response is sent worker -> primary: the finished outcome of the test it
// was most recently assigned (§4.7 "Message set (worker -> primary)").
type Response struct {
	Result SerializableResult
}
