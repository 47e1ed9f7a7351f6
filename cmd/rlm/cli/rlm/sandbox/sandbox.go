// Package sandbox executes LLM-authored JavaScript against the trailer index
// in an isolated interpreter with no host bindings beyond the documented API.
//
// The interpreter (goja) runs on its own goroutine — the child — and has no
// filesystem, network, or subprocess access. The only way in or out is the
// message channel to the host: execute in, result out, with llm-request and
// gitlog-request messages served by injected host effects in between.
// Interpreter state persists across execute calls so the LLM can accumulate
// intermediate results on the global scope.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/index"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/memory"
)

// DefaultExecTimeout bounds one execute call's wall clock.
const DefaultExecTimeout = 2 * time.Second

// Sandbox failures. Child execution errors are not failures; they come back
// in Output.Error.
var (
	ErrExecutionTimeout = errors.New("sandbox-execution-timed-out")
	ErrTerminated       = errors.New("sandbox-terminated")
)

// Env is the data handed to the child at init.
type Env struct {
	Index         *index.TrailerIndex
	WorkingMemory *memory.WorkingMemory
	ScopeKeys     []string
}

// Options tunes a sandbox instance.
type Options struct {
	// ExecTimeout bounds one execute; DefaultExecTimeout when zero.
	ExecTimeout time.Duration
}

// Sandbox is the host-side handle. One execute may be outstanding at a time.
type Sandbox struct {
	env      Env
	handlers Handlers
	timeout  time.Duration

	execCh chan *execRequest
	reqCh  chan *hostRequest
	quit   chan struct{}
	ready  chan struct{}

	rt atomic.Pointer[goja.Runtime]

	terminateOnce sync.Once
	terminated    atomic.Bool
}

// New creates the child execution context, sends it the environment, and
// waits for its ready reply.
func New(env Env, handlers Handlers, opts Options) *Sandbox {
	timeout := opts.ExecTimeout
	if timeout <= 0 {
		timeout = DefaultExecTimeout
	}
	s := &Sandbox{
		env:      env,
		handlers: handlers,
		timeout:  timeout,
		execCh:   make(chan *execRequest),
		reqCh:    make(chan *hostRequest),
		quit:     make(chan struct{}),
		ready:    make(chan struct{}),
	}
	go s.runChild()
	<-s.ready
	return s
}

// Execute runs one code fragment in the child, serving its effect requests
// until the result message arrives or the wall clock expires. On timeout the
// call fails but the sandbox survives; interpreter state remains available
// for recovery attempts.
func (s *Sandbox) Execute(ctx context.Context, code string) (*Output, error) {
	if s.terminated.Load() {
		return nil, ErrTerminated
	}

	req := &execRequest{
		code:   code,
		result: make(chan *Output, 1),
		cancel: make(chan struct{}),
	}
	select {
	case s.execCh <- req:
	case <-s.quit:
		return nil, ErrTerminated
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	for {
		select {
		case out := <-req.result:
			return out, nil
		case hr := <-s.reqCh:
			// Serve the effect off the loop so the wall clock keeps running
			// while the handler works. The child is blocked on its reply, so
			// at most one request is in flight.
			go s.serve(ctx, hr)
		case <-timer.C:
			close(req.cancel)
			s.interrupt(ErrExecutionTimeout.Error())
			return nil, fmt.Errorf("%w after %s", ErrExecutionTimeout, s.timeout)
		case <-ctx.Done():
			close(req.cancel)
			s.interrupt("canceled")
			return nil, ctx.Err()
		case <-s.quit:
			return nil, ErrTerminated
		}
	}
}

func (s *Sandbox) serve(ctx context.Context, hr *hostRequest) {
	var value string
	var err error
	switch hr.kind {
	case kindLLM:
		if s.handlers.LLM == nil {
			err = errors.New("no LLM effect configured")
		} else {
			value, err = s.handlers.LLM(ctx, hr.messages)
		}
	case kindGitLog:
		if s.handlers.GitLog == nil {
			err = errors.New("no git log effect configured")
		} else {
			value, err = s.handlers.GitLog(ctx, hr.args)
		}
	}
	// Buffered reply; dropped if the child already unwound.
	hr.reply <- hostResponse{id: hr.id, value: value, err: err}
}

// Terminate shuts the child down. Idempotent; called on every REPL exit path.
func (s *Sandbox) Terminate() {
	s.terminateOnce.Do(func() {
		s.terminated.Store(true)
		close(s.quit)
		s.interrupt("terminated")
	})
}

// Terminated reports whether Terminate has been called.
func (s *Sandbox) Terminated() bool {
	return s.terminated.Load()
}

func (s *Sandbox) interrupt(reason string) {
	if rt := s.rt.Load(); rt != nil {
		rt.Interrupt(reason)
	}
}

// postRequest sends an effect request to the host and blocks until the
// response with the matching id arrives, or the execute is abandoned.
// Runs on the child goroutine, called from inside JS.
func (s *Sandbox) postRequest(req *execRequest, hr *hostRequest) (string, error) {
	hr.id = uuid.NewString()
	hr.reply = make(chan hostResponse, 1)

	select {
	case s.reqCh <- hr:
	case <-req.cancel:
		return "", ErrExecutionTimeout
	case <-s.quit:
		return "", ErrTerminated
	}

	select {
	case resp := <-hr.reply:
		if resp.id != hr.id {
			return "", fmt.Errorf("response id mismatch: %s != %s", resp.id, hr.id)
		}
		return resp.value, resp.err
	case <-req.cancel:
		return "", ErrExecutionTimeout
	case <-s.quit:
		return "", ErrTerminated
	}
}
