package ipc

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/gotestr/pkg/capture"
)

// WorkerConfig configures how the primary spawns worker subprocesses
// (§4.7 "Worker argument handling").
type WorkerConfig struct {
	// BinaryPath is the current executable; workers must come from the same
	// build as the primary (§6 "Bytes are stable across runs of the same
	// binary").
	BinaryPath string
	// ExtraArgs are appended after the mandatory --ipc/--spawn-workers/
	// --test-threads=1 flags, e.g. the original filter arguments.
	ExtraArgs []string
	// IdleTimeout is how long an unused worker is kept alive before being
	// torn down (§4.7 "A worker exits... after a configured idle period").
	IdleTimeout time.Duration
}

// worker is one spawned, socket-connected subprocess, identified by a UUID
// used both as its IPC socket name and as the correlation ID attached to any
// synthetic crash-failure message the primary reports on its behalf.
type worker struct {
	id       uuid.UUID
	cmd      *exec.Cmd
	conn     net.Conn
	stdout   *bufio.Reader
	stderr   *bufio.Reader
	lastUsed time.Time
}

// Pool lazily spawns and reuses worker subprocesses up to an effective
// concurrency limit, per §4.7's lifecycle description.
type Pool struct {
	mu     sync.Mutex
	cfg    WorkerConfig
	idle   []*worker
	closed bool
}

// NewPool constructs an empty pool; workers are spawned lazily by Run.
func NewPool(cfg WorkerConfig) *Pool {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Second
	}
	return &Pool{cfg: cfg}
}

func (p *Pool) spawn(ctx context.Context) (*worker, error) {
	id := uuid.New()
	name := id.String()

	ln, err := Listen(name)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen for worker %s: %w", name, err)
	}
	defer ln.Close()

	args := append([]string{"--ipc", name, "--spawn-workers", "--test-threads=1"}, p.cfg.ExtraArgs...)
	cmd := exec.CommandContext(ctx, p.cfg.BinaryPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ipc: spawn worker: %w", err)
	}

	acceptCh := make(chan net.Conn, 1)
	errCh := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			errCh <- err
			return
		}
		acceptCh <- conn
	}()

	select {
	case conn := <-acceptCh:
		return &worker{
			id: id, cmd: cmd, conn: conn,
			stdout: bufio.NewReader(stdout), stderr: bufio.NewReader(stderr),
			lastUsed: time.Now(),
		}, nil
	case err := <-errCh:
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("ipc: worker %s failed to connect: %w", name, err)
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		return nil, ctx.Err()
	}
}

func (p *Pool) acquire(ctx context.Context) (*worker, error) {
	p.mu.Lock()
	if len(p.idle) > 0 {
		w := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		p.mu.Unlock()
		return w, nil
	}
	p.mu.Unlock()
	return p.spawn(ctx)
}

func (p *Pool) release(w *worker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		terminate(w)
		return
	}
	w.lastUsed = time.Now()
	p.idle = append(p.idle, w)

	usedAt := w.lastUsed
	time.AfterFunc(p.cfg.IdleTimeout, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, idle := range p.idle {
			if idle == w && idle.lastUsed.Equal(usedAt) {
				p.idle = append(p.idle[:i], p.idle[i+1:]...)
				terminate(w)
				return
			}
		}
	})
}

func terminate(w *worker) {
	w.conn.Close()
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
	_, _ = w.cmd.Process.Wait()
}

// Outcome is what Run reports back for one assigned test.
type Outcome struct {
	Response Response
	Captured []capture.Line
	// Crashed is true when the worker died or timed out; the caller should
	// interpret this as a failed test per §7 "Worker failures".
	Crashed bool
	Err     error
}

// Run assigns cmd to a pooled worker (spawning one if none are idle), reads
// its stdout/stderr directly off the child process (§4.7 "the worker itself
// does not capture"), and waits for TestFinished up to timeout (zero means
// no deadline). A crashed or timed-out worker is terminated rather than
// returned to the pool; a fresh one is spawned for the next Run call.
func (p *Pool) Run(ctx context.Context, cmd Command, timeout time.Duration) Outcome {
	w, err := p.acquire(ctx)
	if err != nil {
		return Outcome{Crashed: true, Err: err}
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var linesMu sync.Mutex
	var lines []capture.Line
	var ordinal int64
	linesDone := make(chan struct{})
	go func() {
		defer close(linesDone)
		drainLines(w.stdout, false, &ordinal, &linesMu, &lines)
	}()
	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		drainLines(w.stderr, true, &ordinal, &linesMu, &lines)
	}()

	if err := WriteCommand(w.conn, cmd); err != nil {
		terminate(w)
		return Outcome{Crashed: true, Err: fmt.Errorf("worker %s: %w", w.id, err)}
	}

	respCh := make(chan Response, 1)
	errCh := make(chan error, 1)
	go func() {
		resp, err := ReadResponse(w.conn)
		if err != nil {
			errCh <- err
			return
		}
		respCh <- resp
	}()

	select {
	case resp := <-respCh:
		p.release(w)
		<-linesDone
		<-stderrDone
		return Outcome{Response: resp, Captured: lines}
	case err := <-errCh:
		terminate(w)
		return Outcome{Crashed: true, Err: fmt.Errorf("worker %s: %w", w.id, err)}
	case <-runCtx.Done():
		terminate(w)
		return Outcome{Crashed: true, Err: fmt.Errorf("worker %s: timed out: %w", w.id, runCtx.Err())}
	}
}

// drainLines reads newline-terminated lines off r and appends them to the
// shared *out slice, guarding the append with mu since the primary's stdout-
// and stderr-draining goroutines both write into the same slice (mirroring
// pkg/capture.Session.scan's identical two-goroutines-one-slice guard).
// Only the ordinal counter needs atomic access independent of mu: it is
// shared so the two streams interleave correctly by observed order, but it
// must stay correct even if a future caller drains each stream under its own
// mutex.
func drainLines(r *bufio.Reader, stderr bool, ordinal *int64, mu *sync.Mutex, out *[]capture.Line) {
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			line = trimNewline(line)
			n := atomic.AddInt64(ordinal, 1)
			mu.Lock()
			*out = append(*out, capture.Line{Ordinal: int(n), Stderr: stderr, Text: line})
			mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func trimNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '\r' {
		s = s[:len(s)-1]
	}
	return s
}

// Close terminates every idle worker and refuses further reuse.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for _, w := range p.idle {
		terminate(w)
	}
	p.idle = nil
}
