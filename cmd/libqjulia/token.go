package main

import (
	"context"
	"errors"
	"runtime/cgo"
)

var errHostCancelled = errors.New("cancelled by host")

// hostToken backs a qj_token_new handle. A handle must not be used after qj_token_free.
type hostToken struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
}

func newToken() uintptr {
	ctx, cancel := context.WithCancelCause(context.Background())
	return uintptr(cgo.NewHandle(&hostToken{ctx: ctx, cancel: cancel}))
}

func lookupToken(h uintptr) (*hostToken, bool) {
	if h == 0 {
		return nil, false
	}
	t, ok := cgo.Handle(h).Value().(*hostToken)
	return t, ok
}

func tokenContext(h uintptr) context.Context {
	if t, ok := lookupToken(h); ok {
		return t.ctx
	}
	return context.Background()
}

func cancelTokenHandle(h uintptr) {
	if t, ok := lookupToken(h); ok {
		t.cancel(errHostCancelled)
	}
}

func freeToken(h uintptr) {
	if t, ok := lookupToken(h); ok {
		t.cancel(errHostCancelled)
		cgo.Handle(h).Delete()
	}
}
