package main

import (
	"context"
	"errors"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/willbeason/quantum-fractal/pkg/fractal"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

type request struct {
	ID     uint64         `json:"id"`
	Params fractal.Params `json:"params"`
}

type response struct {
	ID        uint64         `json:"id"`
	Width     int            `json:"width,omitempty"`
	Height    int            `json:"height,omitempty"`
	MaxIter   uint32         `json:"max_iter,omitempty"`
	Effect    string         `json:"effect,omitempty"`
	ElapsedMS float64        `json:"elapsed_ms,omitempty"`
	Counts    []uint32       `json:"counts,omitempty"`
	Error     *responseError `json:"error,omitempty"`
}

type responseError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// gridHandler serves one Session per websocket. A newer request on the same socket cancels
// the older one, and the superseded request gets no reply.
func gridHandler(engine *fractal.Engine, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warn("websocket accept failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		c.SetReadLimit(1 << 16)

		logger.Info("display connected", "remote", r.RemoteAddr)
		err = serveConn(r.Context(), c, fractal.NewSession(engine), logger)

		if normalDisconnect(err) {
			logger.Info("display disconnected", "remote", r.RemoteAddr)
			_ = c.CloseNow()
			return
		}
		logger.Warn("display connection failed", "remote", r.RemoteAddr, "error", err)
		_ = c.Close(websocket.StatusInternalError, "read failed")
	}
}

// normalDisconnect reports whether err ends a connection the ordinary way: the client
// closed it, went away, or the server is shutting down.
func normalDisconnect(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

// connWriter sends replies for one socket. Only the newest generation may write, so a
// reply from a superseded request can never land after the latest one.
type connWriter struct {
	c       *websocket.Conn
	session *fractal.Session
	mu      sync.Mutex
}

func (w *connWriter) write(ctx context.Context, gen uint64, resp response) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != 0 && !w.session.Current(gen) {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return true, wsjson.Write(ctx, w.c, resp)
}

func serveConn(ctx context.Context, c *websocket.Conn, session *fractal.Session, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := &connWriter{c: c, session: session}

	var wg sync.WaitGroup
	defer wg.Wait()
	defer session.Cancel(errors.New("display disconnected"))

	for {
		var req request
		if err := wsjson.Read(ctx, c, &req); err != nil {
			return err
		}

		// Invalid requests are answered but never supersede the request in flight.
		if err := req.Params.Validate(); err != nil {
			if _, err := writer.write(ctx, 0, errorResponse(req.ID, err)); err != nil {
				logger.Warn("writing response failed", "id", req.ID, "error", err)
			}
			continue
		}

		// The generation follows arrival order.
		reqCtx, gen, reqCancel := session.Begin(ctx)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer reqCancel(nil)

			resp, ok := handle(reqCtx, session, gen, req, logger)
			if !ok {
				return
			}

			sent, err := writer.write(ctx, gen, resp)
			if err != nil {
				logger.Warn("writing response failed", "id", req.ID, "error", err)
			} else if !sent {
				logger.Debug("discarding stale reply", "id", req.ID, "generation", gen)
			}
		}()
	}
}

// handle runs one request. It returns false when the request was superseded and nothing should be sent.
func handle(ctx context.Context, session *fractal.Session, gen uint64, req request, logger *slog.Logger) (response, bool) {
	res, err := session.Run(ctx, gen, req.Params)
	if fractal.IsCancelled(err) {
		logger.Debug("discarding stale request", "id", req.ID, "generation", gen, "cause", err)
		return response{}, false
	}
	if err != nil {
		return errorResponse(req.ID, err), true
	}
	defer res.Release()

	counts := make([]uint32, len(res.Grid.Cells))
	copy(counts, res.Grid.Cells)

	return response{
		ID:        req.ID,
		Width:     res.Grid.Width,
		Height:    res.Grid.Height,
		MaxIter:   res.Grid.MaxIter,
		Effect:    res.Effect.String(),
		ElapsedMS: float64(res.Elapsed.Microseconds()) / 1000,
		Counts:    counts,
	}, true
}

func errorResponse(id uint64, err error) response {
	return response{
		ID:    id,
		Error: &responseError{Kind: kindName(err), Message: err.Error()},
	}
}

func kindName(err error) string {
	if k := fractal.KindOf(err); k != 0 {
		return k.String()
	}
	return "internal"
}
