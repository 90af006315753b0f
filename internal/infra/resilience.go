// Package infra provides shared infrastructure for the Wikidot client:
// linear-backoff retries, request deduplication and an LRU cache with TTL.
package infra

import (
	"context"
	"fmt"
	"sync"
)

// RequestDeduplicator coalesces identical in-flight requests. When several
// goroutines ask for the same key at once, fn runs once and every waiter
// receives its result.
type RequestDeduplicator[T any] struct {
	mu       sync.Mutex
	inflight map[string]*inflightRequest[T]
}

// inflightRequest tracks a request in progress with waiters
type inflightRequest[T any] struct {
	done    chan struct{}
	result  T
	err     error
	waiters int
	cancel  context.CancelFunc
}

// NewRequestDeduplicator creates a new request deduplicator
func NewRequestDeduplicator[T any]() *RequestDeduplicator[T] {
	return &RequestDeduplicator[T]{
		inflight: make(map[string]*inflightRequest[T]),
	}
}

// Do executes fn unless a request with the same key is already running, in
// which case it waits for that request's result. The boolean reports whether
// the result was shared.
//
// fn runs on its own goroutine under a context that keeps the first caller's
// values but not its cancellation. Each caller stops waiting when its own ctx
// ends; fn's context is canceled once no caller is left waiting.
func (d *RequestDeduplicator[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, bool, error) {
	d.mu.Lock()
	req, shared := d.inflight[key]
	if !shared {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		req = &inflightRequest[T]{
			done:   make(chan struct{}),
			cancel: cancel,
		}
		d.inflight[key] = req
		go d.run(runCtx, key, req, fn)
	}
	req.waiters++
	d.mu.Unlock()

	select {
	case <-req.done:
		return req.result, shared, req.err
	case <-ctx.Done():
		d.leave(key, req)
		var zero T
		return zero, shared, ctx.Err()
	}
}

// leave drops a waiter; the last one out cancels the request and frees the
// key so later callers start a fresh one.
func (d *RequestDeduplicator[T]) leave(key string, req *inflightRequest[T]) {
	d.mu.Lock()
	defer d.mu.Unlock()
	req.waiters--
	if req.waiters > 0 {
		return
	}
	req.cancel()
	if d.inflight[key] == req {
		delete(d.inflight, key)
	}
}

func (d *RequestDeduplicator[T]) run(ctx context.Context, key string, req *inflightRequest[T], fn func(context.Context) (T, error)) {
	defer func() {
		if r := recover(); r != nil {
			req.err = fmt.Errorf("request %q panicked: %v", key, r)
		}
		req.cancel()
		d.mu.Lock()
		if d.inflight[key] == req {
			delete(d.inflight, key)
		}
		d.mu.Unlock()
		close(req.done)
	}()

	req.result, req.err = fn(ctx)
}

// Stats returns the current number of in-flight requests
func (d *RequestDeduplicator[T]) Stats() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}
