package fractal

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is the cancellation cause of a request replaced by a newer generation.
var ErrSuperseded = errors.New("superseded by a newer request")

// Session serializes requests for one display target.
//
// Every Submit or Begin starts a new generation and cancels the one before it. A result that
// finishes after a newer generation started is released and reported as Cancelled, so
// only the latest request ever reaches the display.
type Session struct {
	engine *Engine

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelCauseFunc
}

func NewSession(e *Engine) *Session {
	return &Session{engine: e}
}

// Submit computes p as the newest generation, returning that generation with the result.
//
// An invalid p is rejected without disturbing the request in flight.
func (s *Session) Submit(ctx context.Context, p Params) (*Result, uint64, error) {
	if err := p.Validate(); err != nil {
		return nil, 0, err
	}

	ctx, gen, cancel := s.Begin(ctx)
	defer cancel(nil)

	res, err := s.Run(ctx, gen, p)
	return res, gen, err
}

// Begin starts a new generation and cancels the previous one. Callers that read requests
// in order must call Begin in that order, before handing the work to another goroutine.
// The returned cancel must be called once Run is done.
func (s *Session) Begin(ctx context.Context) (context.Context, uint64, context.CancelCauseFunc) {
	ctx, cancel := context.WithCancelCause(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if s.cancel != nil {
		s.cancel(ErrSuperseded)
	}
	s.cancel = cancel

	return ctx, s.generation, cancel
}

// Run computes p for a generation from Begin. If a newer generation has started by the
// time the grid is ready, the grid is released and the error is Cancelled.
func (s *Session) Run(ctx context.Context, gen uint64, p Params) (*Result, error) {
	res, err := s.engine.Compute(ctx, p)
	if err != nil {
		return nil, err
	}

	if !s.Current(gen) {
		res.Release()
		return nil, &Error{Kind: Cancelled, Err: ErrSuperseded}
	}

	return res, nil
}

func (s *Session) Current(gen uint64) bool {
	return s.Generation() == gen
}

func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Cancel stops whatever request is in flight.
func (s *Session) Cancel(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel(cause)
	}
}
