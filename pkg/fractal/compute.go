package fractal

import (
	"context"
	"fmt"
	"github.com/willbeason/quantum-fractal/pkg/transforms"
	"log/slog"
	"time"
)

type Result struct {
	Grid    *Grid
	Effect  transforms.Effect
	Elapsed time.Duration
}

// Release returns the grid buffer to the engine that allocated it.
func (r *Result) Release() {
	r.Grid.Release()
}

type Option func(*Engine)

func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// Engine computes grids and owns the buffers it hands out.
//
// An Engine is safe for concurrent use; concurrent requests never share a buffer.
type Engine struct {
	dispatcher Dispatcher
	logger     *slog.Logger
	pool       *bufferPool
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.New(slog.DiscardHandler),
		pool:   newBufferPool(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func Compute(ctx context.Context, p Params, opts ...Option) (*Result, error) {
	return NewEngine(opts...).Compute(ctx, p)
}

// Compute validates p, fills a grid and returns it with the time spent.
//
// No worker starts unless p is valid. If ctx is done before every partition unit has
// been computed the grid is released and the error has Kind Cancelled.
func (e *Engine) Compute(ctx context.Context, p Params) (*Result, error) {
	start := time.Now()

	r, err := p.resolve()
	if err != nil {
		e.logger.Debug("fractal request rejected", "error", err)
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, cancelled(ctx)
	}

	grid := e.pool.newGrid(r)
	if err := e.dispatcher.run(ctx, r, grid.Cells); err != nil {
		grid.Release()
		if ctx.Err() != nil {
			e.logger.Debug("fractal request cancelled", "effect", r.effect, "cause", context.Cause(ctx))
			return nil, cancelled(ctx)
		}
		return nil, fmt.Errorf("dispatching %v request: %w", r.effect, err)
	}

	elapsed := time.Since(start)
	e.logger.Debug("fractal computed",
		"effect", r.effect,
		"width", r.Width,
		"height", r.Height,
		"max_iter", r.MaxIter,
		"elapsed", elapsed)

	return &Result{Grid: grid, Effect: r.effect, Elapsed: elapsed}, nil
}

func cancelled(ctx context.Context) *Error {
	return &Error{Kind: Cancelled, Err: context.Cause(ctx)}
}
