// Package slot provides a reusable, auto-cancelling, single-slot
// asynchronous resource loader.
//
// The core type is Loader, which owns one logical slot for a loaded
// resource. Each call to Load cancels any load still in flight, starts a
// new one, and releases the previously installed resource only after the
// replacement is ready, so the slot never visibly holds nothing between
// two loads.
//
// # Loader
//
// A Loader is constructed from a single StartFunc that begins a load and
// returns a Handle whose result resolves later:
//
//	Load → cancel previous scope → start → await → swap → release old
//
// If a load fails or is canceled, the previously installed resource is
// retained and the Loader enters a degraded state.
//
// # Handles
//
// The Handle interface represents ownership of one load attempt. Concrete
// loaders supply their own mechanism (file read, bundle fetch, network
// pull); the Go, Resolved, and Failed constructors cover the common cases.
//
// # Cancellation
//
// Two triggers compose per attempt: an internal cancellation fired when a
// newer Load supersedes the attempt, and the caller's context. The context
// passed to Load is treated as the slot's lifetime: when it is canceled the
// entire slot is released, not just the in-flight attempt.
//
// # Example
//
//	loader := slot.New[*Texture](
//	    func(ctx context.Context, path string) slot.Handle[*Texture] {
//	        return slot.Go(ctx, func(ctx context.Context) (*Texture, error) {
//	            return bundle.Fetch(ctx, path)
//	        }, func(t *Texture) { t.Free() })
//	    },
//	    slot.WithRetry[*Texture](3),
//	)
//
//	tex, err := loader.Load(ctx, "icons/sword.png")
package slot

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/pipz"
)

// attemptID names the terminal pipeline stage that performs the load.
const attemptID pipz.Name = "load-attempt"

// StartFunc begins an asynchronous load of the resource identified by path
// and returns immediately with a handle whose result resolves later.
//
// The ctx is the attempt's cancellation scope: it is canceled when a newer
// Load supersedes the attempt, when the caller's context is canceled, or
// when a configured load timeout elapses. StartFunc must not block; all
// slow work belongs behind the returned handle.
type StartFunc[T any] func(ctx context.Context, path string) Handle[T]

// Loader owns a single logical slot for an asynchronously loaded resource.
// At most one handle is current at a time; requesting a new load cancels
// the in-flight one and releases the superseded resource only after the
// replacement resolves.
//
// A Loader is reusable after Release. Concurrent Load calls get
// last-writer-wins semantics: the call that cancels the other's scope last
// owns the slot. Single-caller usage per Loader is the intended pattern.
type Loader[T any] struct {
	start       StartFunc[T]
	pipeline    pipz.Chainable[*Request[T]]
	clock       clockz.Clock
	metrics     MetricsProvider
	loadTimeout time.Duration

	state     atomic.Int32
	value     atomic.Pointer[T]
	lastError atomic.Pointer[error]
	history   *errorLog

	mu      sync.Mutex
	current Handle[T]
	cancel  context.CancelFunc
	gen     uint64
}

// New creates a Loader around a StartFunc.
//
// Pipeline options (With*) wrap the load attempt with middleware for retry,
// timeout, circuit breaking, and other reliability patterns. Nothing is
// retried unless an option asks for it. Instance configuration uses
// chainable methods before the first Load:
//
//	loader := slot.New[Manifest](start).
//	    Clock(clock).
//	    LoadTimeout(5 * time.Second).
//	    ErrorHistorySize(16)
func New[T any](start StartFunc[T], opts ...Option[T]) *Loader[T] {
	l := &Loader[T]{
		start: start,
		clock: clockz.RealClock,
	}
	terminal := pipz.Apply(attemptID, func(ctx context.Context, req *Request[T]) (*Request[T], error) {
		return l.attempt(ctx, req)
	})
	l.pipeline = buildPipeline(terminal, opts)
	l.state.Store(int32(StateIdle))

	return l
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Clock sets a custom clock for time operations.
// Use this with clockz.FakeClock for deterministic timeout testing.
// Must be called before Load.
func (l *Loader[T]) Clock(clock clockz.Clock) *Loader[T] {
	l.clock = clock
	return l
}

// Metrics sets a metrics provider for observability integration.
// The provider receives callbacks on state changes, load success/failure,
// supersession, and release. Must be called before Load.
func (l *Loader[T]) Metrics(provider MetricsProvider) *Loader[T] {
	l.metrics = provider
	return l
}

// LoadTimeout sets a per-attempt deadline. If the load does not resolve
// within this duration, the awaiting caller observes a deadline error.
// Default: no timeout. Must be called before Load.
func (l *Loader[T]) LoadTimeout(d time.Duration) *Loader[T] {
	l.loadTimeout = d
	return l
}

// ErrorHistorySize sets the number of recent errors to retain.
// When set, ErrorHistory() returns up to this many recent errors.
// Use 0 (default) to only retain the most recent error via LastError().
// Must be called before Load.
func (l *Loader[T]) ErrorHistorySize(n int) *Loader[T] {
	l.history = newErrorLog(n)
	return l
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// State returns the current state of the Loader.
func (l *Loader[T]) State() State {
	return State(l.state.Load())
}

// Current returns the currently installed resource and true, or the zero
// value and false if the slot is empty.
func (l *Loader[T]) Current() (T, bool) {
	ptr := l.value.Load()
	if ptr == nil {
		var zero T
		return zero, false
	}
	return *ptr, true
}

// LastError returns the last error encountered, or nil if no error occurred.
func (l *Loader[T]) LastError() error {
	ptr := l.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns the recent error history, oldest first.
// Returns nil if error history is not enabled (see ErrorHistorySize).
func (l *Loader[T]) ErrorHistory() []error {
	return l.history.all()
}

// -----------------------------------------------------------------------------
// Operations
// -----------------------------------------------------------------------------

// Load requests the resource at path, superseding any load still in flight.
//
// The sequence per request: any previous in-flight attempt's scope is
// canceled before the new load starts; a fresh scope linked to ctx is
// created; the previous handle stays installed while the new load runs and
// is released only once the new result resolves. A failed or canceled
// attempt leaves the previously installed resource untouched, and a call
// that is superseded observes a cancellation error even when its own
// handle happens to resolve.
//
// ctx doubles as the slot's lifetime: when it is canceled the whole slot
// is released, mirroring teardown tied to an owning object's destruction.
// Errors from the underlying load are returned unwrapped.
func (l *Loader[T]) Load(ctx context.Context, path string) (T, error) {
	context.AfterFunc(ctx, l.Release)

	l.mu.Lock()
	superseded := l.cancel != nil
	if superseded {
		l.cancel()
		l.cancel = nil
	}
	var scope context.Context
	var cancel context.CancelFunc
	if l.loadTimeout > 0 {
		scope, cancel = l.clock.WithTimeout(ctx, l.loadTimeout)
	} else {
		scope, cancel = context.WithCancel(ctx)
	}
	l.gen++
	gen := l.gen
	l.cancel = cancel
	// Captured now, released only after the replacement resolves.
	prev := l.current
	l.mu.Unlock()

	if superseded {
		capitan.Emit(ctx, LoadSuperseded,
			KeyPath.Field(path),
		)
		if l.metrics != nil {
			l.metrics.OnSupersede()
		}
	}

	start := l.clock.Now()
	l.transitionState(ctx, l.State(), StateLoading)
	capitan.Emit(ctx, LoadStarted,
		KeyPath.Field(path),
	)

	req := &Request[T]{Path: path, replacing: prev}
	if ptr := l.value.Load(); ptr != nil {
		req.Previous = *ptr
	}

	processed, err := l.pipeline.Process(scope, req)

	l.mu.Lock()
	mine := l.gen == gen
	if mine {
		l.cancel = nil
	}
	l.mu.Unlock()
	cancel()

	if err == nil && !mine {
		// The handle resolved after a newer Load (or Release) took the
		// slot. The installed resource belongs to the new owner now, so
		// this caller observes cancellation and releases nothing.
		err = scope.Err()
		if err == nil {
			err = context.Canceled
		}
	}

	if err != nil {
		if mine {
			l.setError(err)
			l.transitionState(ctx, l.State(), l.failureState())
		}
		capitan.Emit(ctx, LoadFailed,
			KeyPath.Field(path),
			KeyError.Field(err.Error()),
			KeyDuration.Field(l.clock.Since(start)),
		)
		if l.metrics != nil {
			l.metrics.OnLoadFailure(l.clock.Since(start))
		}
		var zero T
		return zero, err
	}

	if prev != nil {
		prev.Release()
	}
	l.value.Store(&processed.Value)
	l.lastError.Store(nil)
	l.history.clear()
	l.transitionState(ctx, l.State(), StateReady)
	capitan.Emit(ctx, LoadSucceeded,
		KeyPath.Field(path),
		KeyDuration.Field(l.clock.Since(start)),
	)
	if l.metrics != nil {
		l.metrics.OnLoadSuccess(l.clock.Since(start))
	}

	return processed.Value, nil
}

// attempt is the terminal pipeline stage: start the new load, install its
// handle as current, and await the result. The handle the request is
// replacing is captured and released by Load, not here, so retry middleware
// re-running the stage cannot orphan the resource the whole request is
// meant to replace. Any other handle the install overwrites belongs to an
// attempt that already lost, and is released so a late success cannot leak.
func (l *Loader[T]) attempt(ctx context.Context, req *Request[T]) (*Request[T], error) {
	l.mu.Lock()
	h := l.start(ctx, req.Path)
	stale := l.current
	l.current = h
	l.mu.Unlock()

	if stale != nil && stale != req.replacing {
		stale.Release()
	}

	v, err := h.Result(ctx)
	if err != nil {
		// The handle stays installed; a failed attempt releases nothing.
		return req, err
	}

	req.Value = v
	return req, nil
}

// Release tears down the slot: the in-flight scope (if any) is canceled,
// the current handle (if any) is released, and the installed value is
// cleared. Release is idempotent and the Loader remains usable for further
// Load calls afterwards.
func (l *Loader[T]) Release() {
	l.mu.Lock()
	h := l.current
	cancel := l.cancel
	l.current = nil
	l.cancel = nil
	// Orphan any in-flight attempt so its completion cannot touch the slot.
	l.gen++
	l.mu.Unlock()

	if h == nil && cancel == nil {
		return
	}

	if cancel != nil {
		cancel()
	}
	if h != nil {
		h.Release()
	}
	l.value.Store(nil)

	ctx := context.Background()
	l.transitionState(ctx, l.State(), StateIdle)
	capitan.Emit(ctx, SlotReleased,
		KeyState.Field(l.State().String()),
	)
	if l.metrics != nil {
		l.metrics.OnRelease()
	}
}

// failureState returns the appropriate state after a failed load, based on
// whether a resource is still installed.
func (l *Loader[T]) failureState() State {
	if l.value.Load() == nil {
		return StateIdle
	}
	return StateDegraded
}

// transitionState updates the state and emits a state change event if changed.
func (l *Loader[T]) transitionState(ctx context.Context, oldState, newState State) {
	if oldState == newState {
		return
	}
	l.state.Store(int32(newState))
	capitan.Emit(ctx, StateChanged,
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
	if l.metrics != nil {
		l.metrics.OnStateChange(oldState, newState)
	}
}

// setError stores an error atomically and adds it to the error history.
func (l *Loader[T]) setError(err error) {
	e := err
	l.lastError.Store(&e)
	l.history.push(err)
}
