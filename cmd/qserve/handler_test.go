package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willbeason/quantum-fractal/pkg/fractal"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func dial(t *testing.T) (*websocket.Conn, context.Context) {
	t.Helper()

	engine := fractal.NewEngine(fractal.WithDispatcher(fractal.Dispatcher{Workers: 2, Partition: fractal.Chunks{Size: 1}}))
	srv := httptest.NewServer(gridHandler(engine, slog.New(slog.DiscardHandler)))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	t.Cleanup(cancel)

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.CloseNow() })

	return c, ctx
}

func smallParams() fractal.Params {
	return fractal.Params{
		Width: 4, Height: 3,
		XMin: -2, XMax: 2,
		YMin: -2, YMax: 2,
		MaxIter: 10,
		Hbar:    0.5,
		Effect:  "phase_shift",
	}
}

func TestGridHandler(t *testing.T) {
	c, ctx := dial(t)

	require.NoError(t, wsjson.Write(ctx, c, request{ID: 7, Params: smallParams()}))

	var resp response
	require.NoError(t, wsjson.Read(ctx, c, &resp))

	assert.Equal(t, uint64(7), resp.ID)
	assert.Nil(t, resp.Error)
	assert.Equal(t, 4, resp.Width)
	assert.Equal(t, 3, resp.Height)
	assert.Equal(t, "phase_shift", resp.Effect)
	require.Len(t, resp.Counts, 12)

	want, err := fractal.Compute(context.Background(), smallParams())
	require.NoError(t, err)
	defer want.Release()
	assert.Equal(t, want.Grid.Cells, resp.Counts)
}

func TestGridHandlerInvalidRequest(t *testing.T) {
	c, ctx := dial(t)

	p := smallParams()
	p.XMax = p.XMin
	require.NoError(t, wsjson.Write(ctx, c, request{ID: 1, Params: p}))

	var resp response
	require.NoError(t, wsjson.Read(ctx, c, &resp))

	assert.Equal(t, uint64(1), resp.ID)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid_bounds", resp.Error.Kind)
	assert.Empty(t, resp.Counts)
}

func TestGridHandlerDropsSupersededRequest(t *testing.T) {
	c, ctx := dial(t)

	slow := fractal.Params{
		Width: 1000, Height: 1000,
		XMin: -1, XMax: 1,
		YMin: -1, YMax: 1,
		MaxIter: 10_000_000,
		Effect:  "pauli_x",
	}
	require.NoError(t, wsjson.Write(ctx, c, request{ID: 1, Params: slow}))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, wsjson.Write(ctx, c, request{ID: 2, Params: smallParams()}))

	var resp response
	require.NoError(t, wsjson.Read(ctx, c, &resp))
	assert.Equal(t, uint64(2), resp.ID)
	assert.Nil(t, resp.Error)

	readCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	var extra response
	assert.Error(t, wsjson.Read(readCtx, c, &extra), "superseded request must not be answered")
}

func TestGridHandlerBurstAnswersLatest(t *testing.T) {
	c, ctx := dial(t)

	p := fractal.Params{
		Width: 200, Height: 200,
		XMin: -1, XMax: 1,
		YMin: -1, YMax: 1,
		MaxIter: 1000,
		Effect:  "pauli_x",
	}
	const n = 20
	for id := uint64(1); id <= n; id++ {
		require.NoError(t, wsjson.Write(ctx, c, request{ID: id, Params: p}))
	}

	var last uint64
	for last != n {
		var resp response
		require.NoError(t, wsjson.Read(ctx, c, &resp))
		require.Nil(t, resp.Error)
		require.Greater(t, resp.ID, last, "replies must arrive in request order")
		last = resp.ID
	}

	readCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	var extra response
	assert.Error(t, wsjson.Read(readCtx, c, &extra), "no reply may follow the latest request")
}

func TestNormalDisconnect(t *testing.T) {
	tcs := []struct {
		name string
		err  error
		want bool
	}{
		{name: "server shutdown", err: fmt.Errorf("read: %w", context.Canceled), want: true},
		{name: "eof", err: io.EOF, want: true},
		{name: "client close", err: websocket.CloseError{Code: websocket.StatusNormalClosure}, want: true},
		{name: "going away", err: websocket.CloseError{Code: websocket.StatusGoingAway}, want: true},
		{name: "protocol error", err: websocket.CloseError{Code: websocket.StatusProtocolError}, want: false},
		{name: "other", err: errors.New("boom"), want: false},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalDisconnect(tc.err))
		})
	}
}
