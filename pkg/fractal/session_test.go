package fractal

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestSessionSupersedes(t *testing.T) {
	s := NewSession(NewEngine(WithDispatcher(Dispatcher{Workers: 2, Partition: Chunks{Size: 1}})))

	type outcome struct {
		res *Result
		gen uint64
		err error
	}
	slow := make(chan outcome, 1)
	go func() {
		res, gen, err := s.Submit(context.Background(), slowParams())
		slow <- outcome{res: res, gen: gen, err: err}
	}()

	require.Eventually(t, func() bool { return s.Generation() == 1 }, 5*time.Second, time.Millisecond)

	res, gen, err := s.Submit(context.Background(), exampleParams())
	require.NoError(t, err)
	defer res.Release()
	assert.Equal(t, uint64(2), gen)

	select {
	case got := <-slow:
		assert.Nil(t, got.res)
		assert.Equal(t, uint64(1), got.gen)
		assert.True(t, IsCancelled(got.err))
		assert.ErrorIs(t, got.err, ErrSuperseded)
	case <-time.After(10 * time.Second):
		t.Fatal("superseded request did not stop")
	}
}

func TestSessionInvalidKeepsGeneration(t *testing.T) {
	s := NewSession(NewEngine())

	res, _, err := s.Submit(context.Background(), exampleParams())
	require.NoError(t, err)
	res.Release()

	p := exampleParams()
	p.Width = 0
	_, gen, err := s.Submit(context.Background(), p)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	assert.Equal(t, uint64(0), gen)
	assert.Equal(t, uint64(1), s.Generation())
}

func TestSessionCancel(t *testing.T) {
	s := NewSession(NewEngine(WithDispatcher(Dispatcher{Workers: 1, Partition: Chunks{Size: 1}})))

	done := make(chan error, 1)
	go func() {
		_, _, err := s.Submit(context.Background(), slowParams())
		done <- err
	}()

	require.Eventually(t, func() bool { return s.Generation() == 1 }, 5*time.Second, time.Millisecond)
	s.Cancel(nil)

	select {
	case err := <-done:
		assert.True(t, IsCancelled(err))
	case <-time.After(10 * time.Second):
		t.Fatal("cancelled request did not stop")
	}
}

func TestSessionBeginOrdersGenerations(t *testing.T) {
	s := NewSession(NewEngine())

	oldCtx, oldGen, oldCancel := s.Begin(context.Background())
	defer oldCancel(nil)
	newCtx, newGen, newCancel := s.Begin(context.Background())
	defer newCancel(nil)

	assert.Equal(t, uint64(1), oldGen)
	assert.Equal(t, uint64(2), newGen)
	assert.ErrorIs(t, context.Cause(oldCtx), ErrSuperseded)
	require.NoError(t, newCtx.Err())

	// The older generation runs last but still loses.
	res, err := s.Run(newCtx, newGen, exampleParams())
	require.NoError(t, err)
	res.Release()

	res, err = s.Run(context.Background(), oldGen, exampleParams())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.False(t, s.Current(oldGen))
	assert.True(t, s.Current(newGen))
}
