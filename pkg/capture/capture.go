package capture

import (
	"bufio"
	"os"
	"sort"
	"sync"
	"sync/atomic"
)

// Line is one newline-terminated line observed on stdout or stderr, tagged
// with a monotonically increasing ordinal shared between both streams so
// they can be interleaved back into originally observed order (§4.6).
type Line struct {
	Ordinal int
	Stderr  bool
	Text    string
}

// Session owns one process-wide stdout/stderr redirection. Only one Session
// may be active at a time (enforced by the scheduler restricting in-process
// capture to non-parallel execution, per §4.5's capture policy); os.Stdout
// and os.Stderr are process-global in Go, so concurrent tests cannot each
// get their own capture without the worker-subprocess path in pkg/ipc.
type Session struct {
	mu    sync.Mutex
	lines []Line

	ordinal int64

	origStdout *os.File
	origStderr *os.File
	stdoutW    *os.File
	stderrW    *os.File

	wg sync.WaitGroup
}

// Start substitutes os.Stdout/os.Stderr with pipe-backed writers and begins
// line-splitting both streams in background goroutines.
func Start() (*Session, error) {
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, err
	}

	s := &Session{
		origStdout: os.Stdout,
		origStderr: os.Stderr,
		stdoutW:    stdoutW,
		stderrW:    stderrW,
	}
	os.Stdout = stdoutW
	os.Stderr = stderrW

	s.wg.Add(2)
	go s.scan(stdoutR, false)
	go s.scan(stderrR, true)

	return s, nil
}

func (s *Session) scan(r *os.File, stderr bool) {
	defer s.wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		ord := int(atomic.AddInt64(&s.ordinal, 1))
		s.mu.Lock()
		s.lines = append(s.lines, Line{Ordinal: ord, Stderr: stderr, Text: scanner.Text()})
		s.mu.Unlock()
	}
}

// Stop restores the original os.Stdout/os.Stderr and returns the captured
// lines in observed order. Safe to call exactly once; callers should invoke
// it via defer immediately after Start so it runs on every exit path
// (success, failure, panic, or timeout), per §4.6 "Restoration is
// guaranteed on all exit paths".
func (s *Session) Stop() []Line {
	os.Stdout = s.origStdout
	os.Stderr = s.origStderr

	s.stdoutW.Close()
	s.stderrW.Close()
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	// Two goroutines race to append after claiming an ordinal, so the slice
	// itself may not be ordinal-sorted even though each line's ordinal is
	// assigned deterministically.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}
