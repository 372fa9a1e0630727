package slot

import (
	"context"
	"time"

	"github.com/zoobzio/pipz"
)

// Option configures the processing pipeline for a Loader. Pipeline options
// wrap the load attempt with middleware for retry, timeout, circuit
// breaking, and other reliability patterns.
//
// Instance configuration (clock, metrics, timeout, error history) is
// handled via chainable methods on the Loader before the first Load.
type Option[T any] func(pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]]

// buildPipeline wraps a terminal with pipeline options.
func buildPipeline[T any](terminal pipz.Chainable[*Request[T]], opts []Option[T]) pipz.Chainable[*Request[T]] {
	pipeline := terminal
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}
	return pipeline
}

// -----------------------------------------------------------------------------
// Pipeline Options - Wrapping (With*)
// -----------------------------------------------------------------------------
// These options wrap the whole load attempt (start plus await). The
// resource being replaced is captured and released outside the pipeline,
// so retries and fallbacks cannot orphan it.

// WithRetry wraps the load attempt with retry logic.
// Failed attempts are retried immediately up to maxAttempts times.
// For exponential backoff between retries, use WithBackoff instead.
func WithRetry[T any](maxAttempts int) Option[T] {
	return func(p pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]] {
		return pipz.NewRetry("retry", p, maxAttempts)
	}
}

// WithBackoff wraps the load attempt with exponential backoff retry logic.
// Failed attempts are retried with increasing delays: baseDelay, 2*baseDelay, 4*baseDelay, etc.
func WithBackoff[T any](maxAttempts int, baseDelay time.Duration) Option[T] {
	return func(p pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]] {
		return pipz.NewBackoff("backoff", p, maxAttempts, baseDelay)
	}
}

// WithTimeout wraps the load attempt with a timeout.
// Unlike Loader.LoadTimeout, which bounds a single attempt's scope, this
// bounds whatever it wraps, so combined with WithRetry it can cap the
// total time across all retries.
func WithTimeout[T any](d time.Duration) Option[T] {
	return func(p pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]] {
		return pipz.NewTimeout("timeout", p, d)
	}
}

// WithFallback wraps the load attempt with fallback processors.
// If the primary attempt fails, each fallback is tried in order until one succeeds.
func WithFallback[T any](fallbacks ...pipz.Chainable[*Request[T]]) Option[T] {
	return func(p pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]] {
		all := append([]pipz.Chainable[*Request[T]]{p}, fallbacks...)
		return pipz.NewFallback("fallback", all...)
	}
}

// WithCircuitBreaker wraps the load attempt with circuit breaker protection.
// After 'failures' consecutive failures, the circuit opens and rejects
// further requests until 'recovery' time has passed.
func WithCircuitBreaker[T any](failures int, recovery time.Duration) Option[T] {
	return func(p pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]] {
		return pipz.NewCircuitBreaker("circuit-breaker", p, failures, recovery)
	}
}

// WithMiddleware wraps the load attempt with a sequence of processors.
// Processors execute in order, with the load attempt last.
//
// Use the Use* functions to create processors for common patterns,
// or provide custom pipz.Chainable implementations directly.
//
// Example:
//
//	slot.New[Manifest](
//	    start,
//	    slot.WithMiddleware(
//	        slot.UseEffect[Manifest]("audit", auditFn),
//	        slot.UseRateLimit[Manifest](10, 5),
//	    ),
//	    slot.WithRetry[Manifest](3),
//	)
func WithMiddleware[T any](processors ...pipz.Chainable[*Request[T]]) Option[T] {
	return func(p pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]] {
		all := make([]pipz.Chainable[*Request[T]], 0, len(processors)+1)
		all = append(all, processors...)
		all = append(all, p)
		return pipz.NewSequence("middleware", all...)
	}
}

// -----------------------------------------------------------------------------
// Middleware Processors - Adapters (Use*)
// -----------------------------------------------------------------------------
// These create processors for use inside WithMiddleware.

// UseTransform creates a processor that transforms the request.
// Cannot fail. Use for pure transformations like path rewriting.
func UseTransform[T any](name string, fn func(context.Context, *Request[T]) *Request[T]) pipz.Chainable[*Request[T]] {
	return pipz.Transform(pipz.Name(name), fn)
}

// UseApply creates a processor that can transform the request and fail.
// Use for operations like path resolution or result enrichment that may
// produce errors.
func UseApply[T any](name string, fn func(context.Context, *Request[T]) (*Request[T], error)) pipz.Chainable[*Request[T]] {
	return pipz.Apply(pipz.Name(name), fn)
}

// UseEffect creates a processor that performs a side effect.
// The request passes through unchanged. Use for logging, metrics,
// or notifications that should not affect the loaded value.
func UseEffect[T any](name string, fn func(context.Context, *Request[T]) error) pipz.Chainable[*Request[T]] {
	return pipz.Effect(pipz.Name(name), fn)
}

// UseFilter wraps a processor with a condition.
// If the condition returns false, the request passes through unchanged.
func UseFilter[T any](name string, condition func(context.Context, *Request[T]) bool, processor pipz.Chainable[*Request[T]]) pipz.Chainable[*Request[T]] {
	return pipz.NewFilter(pipz.Name(name), condition, processor)
}

// UseRateLimit creates a rate limiting processor.
// Uses a token bucket algorithm with the specified rate (tokens per second)
// and burst size. When tokens are exhausted, requests wait for availability.
func UseRateLimit[T any](rate float64, burst int) pipz.Chainable[*Request[T]] {
	return pipz.NewRateLimiter[*Request[T]]("rate-limiter", rate, burst)
}
