package translator

import (
	"context"
	"sync"
	"sync/atomic"
)

// StatusCode is the observable lifecycle state of a submission.
type StatusCode int32

const (
	StatusUnset StatusCode = iota
	StatusQueued
	StatusSuccess
	StatusRejectedMemory
	StatusCanceled
)

// Terminal reports whether a status can never change again.
func (s StatusCode) Terminal() bool {
	switch s {
	case StatusSuccess, StatusRejectedMemory, StatusCanceled:
		return true
	default:
		return false
	}
}

func (s StatusCode) String() string {
	switch s {
	case StatusUnset:
		return "unset"
	case StatusQueued:
		return "queued"
	case StatusSuccess:
		return "success"
	case StatusRejectedMemory:
		return "rejected_memory"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// RequestTracker is the caller-held handle for one submission. It is safe to
// query from any goroutine while completion happens on a worker. The tracker
// outlives the Request it observes; it holds the request pointer only so the
// batcher can find pending work for cancel/amend, and never reaches into it
// otherwise.
type RequestTracker struct {
	status atomic.Int32
	req    atomic.Pointer[Request]

	once sync.Once
	done chan struct{}
	resp Response
}

func newTracker() *RequestTracker {
	return &RequestTracker{done: make(chan struct{})}
}

func (t *RequestTracker) Status() StatusCode {
	return StatusCode(t.status.Load())
}

// setStatus advances the status. Terminal states are sticky: once a terminal
// code is observed, later writes are dropped so a canceled request cannot be
// flipped to success by a late completion callback.
func (t *RequestTracker) setStatus(code StatusCode) {
	for {
		cur := t.status.Load()
		if StatusCode(cur).Terminal() {
			return
		}
		if t.status.CompareAndSwap(cur, int32(code)) {
			return
		}
	}
}

func (t *RequestTracker) track(r *Request) {
	t.req.Store(r)
}

func (t *RequestTracker) request() *Request {
	return t.req.Load()
}

// resolve publishes the response and wakes every waiter. Called exactly once
// per tracker regardless of outcome.
func (t *RequestTracker) resolve(resp Response) {
	t.once.Do(func() {
		t.resp = resp
		close(t.done)
	})
}

// Done is closed once the tracker has resolved.
func (t *RequestTracker) Done() <-chan struct{} {
	return t.done
}

// Response returns the resolved value. Only valid after Done is closed.
func (t *RequestTracker) Response() Response {
	return t.resp
}

// Wait blocks until the tracker resolves or ctx is canceled.
func (t *RequestTracker) Wait(ctx context.Context) (Response, error) {
	select {
	case <-t.done:
		return t.resp, nil
	case <-ctx.Done():
		return EmptyResponse(), ctx.Err()
	}
}
