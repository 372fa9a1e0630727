package slot

import (
	"context"
	"sync"
	"sync/atomic"
)

// Handle represents one in-flight or completed asynchronous load. A handle
// is created by a StartFunc when a load begins and is released exactly once,
// either by the Loader when the load is superseded by a newer result, or by
// Loader.Release.
//
// Handles are not reused across loads. Each load attempt produces its own
// handle.
type Handle[T any] interface {
	// Result returns the loaded resource. It blocks until the underlying
	// load completes, fails, or ctx is canceled. The result is produced
	// once; subsequent calls return the same outcome.
	Result(ctx context.Context) (T, error)

	// Release frees the loaded resource and any bookkeeping held by the
	// handle. Release is idempotent. The resource must not be used after
	// Release returns.
	Release()
}

// goHandle backs Go. The spawned goroutine resolves value/err and closes
// done; Release before resolution marks the handle abandoned so a late
// success is freed by the goroutine instead of leaking.
type goHandle[T any] struct {
	done      chan struct{}
	value     T
	err       error
	abandoned atomic.Bool
	freeOnce  sync.Once
	release   func(T)
}

// Go starts fn in a goroutine and returns a handle for its outcome.
//
// The release callback is invoked at most once, with the loaded value, when
// the handle is released after a successful load. It may be nil for values
// that need no cleanup. If the handle is released while the load is still
// in flight, a success that arrives later is released immediately so the
// resource cannot leak.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error), release func(T)) Handle[T] {
	h := &goHandle[T]{
		done:    make(chan struct{}),
		release: release,
	}
	go func() {
		h.value, h.err = fn(ctx)
		close(h.done)
		if h.abandoned.Load() {
			h.free()
		}
	}()
	return h
}

func (h *goHandle[T]) Result(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (h *goHandle[T]) Release() {
	h.abandoned.Store(true)
	select {
	case <-h.done:
		h.free()
	default:
		// Still in flight. The goroutine frees a late success.
	}
}

// free runs the release callback at most once, and only for a success.
func (h *goHandle[T]) free() {
	h.freeOnce.Do(func() {
		if h.err == nil && h.release != nil {
			h.release(h.value)
		}
	})
}

// resolvedHandle backs Resolved.
type resolvedHandle[T any] struct {
	value    T
	freeOnce sync.Once
	release  func(T)
}

// Resolved returns an already-completed handle for a value that was loaded
// elsewhere, such as a cache hit. The release callback follows the same
// contract as in Go.
func Resolved[T any](v T, release func(T)) Handle[T] {
	return &resolvedHandle[T]{value: v, release: release}
}

func (h *resolvedHandle[T]) Result(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	return h.value, nil
}

func (h *resolvedHandle[T]) Release() {
	h.freeOnce.Do(func() {
		if h.release != nil {
			h.release(h.value)
		}
	})
}

// failedHandle backs Failed.
type failedHandle[T any] struct {
	err error
}

// Failed returns an already-failed handle. Useful when a StartFunc detects
// an invalid request before any asynchronous work begins.
func Failed[T any](err error) Handle[T] {
	return failedHandle[T]{err: err}
}

func (h failedHandle[T]) Result(_ context.Context) (T, error) {
	var zero T
	return zero, h.err
}

func (failedHandle[T]) Release() {}
