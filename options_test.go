package slot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("transient")

	var attempts atomic.Int32
	loader := New[string](func(_ context.Context, path string) Handle[string] {
		if attempts.Add(1) < 3 {
			return Failed[string](boom)
		}
		return Resolved("res:"+path, nil)
	}, WithRetry[string](3))

	v, err := loader.Load(ctx, "A")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v != "res:A" {
		t.Errorf("expected res:A, got %q", v)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
	if loader.State() != StateReady {
		t.Errorf("expected ready, got %s", loader.State())
	}
}

func TestWithRetry_ExhaustedReturnsError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("permanent")

	var attempts atomic.Int32
	loader := New[string](func(_ context.Context, _ string) Handle[string] {
		attempts.Add(1)
		return Failed[string](boom)
	}, WithRetry[string](3))

	_, err := loader.Load(ctx, "A")
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestWithRetry_HandleCustodyAcrossRetries(t *testing.T) {
	ctx := context.Background()

	// First load installs a resource, second load fails once and then
	// succeeds. The retried attempt must release the original resource,
	// and only the original: failed attempts produce nothing to free.
	var releasedA atomic.Int32
	var attempts atomic.Int32
	loader := New[string](func(_ context.Context, path string) Handle[string] {
		if path == "A" {
			return Resolved("res:A", func(string) { releasedA.Add(1) })
		}
		if attempts.Add(1) < 2 {
			return Failed[string](errors.New("transient"))
		}
		return Resolved("res:B", nil)
	}, WithRetry[string](2))

	loader.Load(ctx, "A")
	v, err := loader.Load(ctx, "B")
	if err != nil {
		t.Fatalf("Load B failed: %v", err)
	}
	if v != "res:B" {
		t.Errorf("expected res:B, got %q", v)
	}
	if releasedA.Load() != 1 {
		t.Errorf("expected original resource released exactly once, got %d", releasedA.Load())
	}
}

func TestWithRetry_ReleasesOverwrittenAttemptHandle(t *testing.T) {
	ctx := context.Background()

	// The first attempt outlives its stage timeout and resolves
	// successfully only after the retry has already installed a new
	// handle. The overwritten handle's late success must be freed.
	var attempts atomic.Int32
	var firstReleased atomic.Int32
	firstDone := make(chan struct{})

	loader := New[string](func(sctx context.Context, path string) Handle[string] {
		if attempts.Add(1) == 1 {
			return Go(sctx, func(_ context.Context) (string, error) {
				<-firstDone
				return "res:slow", nil
			}, func(string) { firstReleased.Add(1) })
		}
		return Resolved("res:"+path, nil)
	}, WithTimeout[string](50*time.Millisecond), WithRetry[string](2))

	v, err := loader.Load(ctx, "A")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v != "res:A" {
		t.Errorf("expected res:A, got %q", v)
	}
	if attempts.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts.Load())
	}

	close(firstDone)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && firstReleased.Load() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if firstReleased.Load() != 1 {
		t.Fatalf("expected overwritten attempt's late success freed, got %d releases", firstReleased.Load())
	}
}

func TestUseTransform_RewritesPath(t *testing.T) {
	ctx := context.Background()

	var seen atomic.Pointer[string]
	loader := New[string](func(_ context.Context, path string) Handle[string] {
		seen.Store(&path)
		return Resolved("res:"+path, nil)
	}, WithMiddleware(
		UseTransform("resolve-alias", func(_ context.Context, req *Request[string]) *Request[string] {
			if req.Path == "alias" {
				req.Path = "real"
			}
			return req
		}),
	))

	v, err := loader.Load(ctx, "alias")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := seen.Load(); got == nil || *got != "real" {
		t.Errorf("expected start func to see rewritten path 'real', got %v", got)
	}
	if v != "res:real" {
		t.Errorf("expected res:real, got %q", v)
	}
}

func TestUseEffect_ObservesRequests(t *testing.T) {
	ctx := context.Background()

	var observed atomic.Int32
	loader := New[string](func(_ context.Context, path string) Handle[string] {
		return Resolved("res:"+path, nil)
	}, WithMiddleware(
		UseEffect("audit", func(_ context.Context, _ *Request[string]) error {
			observed.Add(1)
			return nil
		}),
	))

	loader.Load(ctx, "A")
	loader.Load(ctx, "B")

	if observed.Load() != 2 {
		t.Errorf("expected 2 observed requests, got %d", observed.Load())
	}
}

func TestWithFallback_UsesSecondary(t *testing.T) {
	ctx := context.Background()

	loader := New[string](func(_ context.Context, _ string) Handle[string] {
		return Failed[string](errors.New("primary down"))
	}, WithFallback(
		UseApply("cached", func(_ context.Context, req *Request[string]) (*Request[string], error) {
			req.Value = "cached:" + req.Path
			return req, nil
		}),
	))

	v, err := loader.Load(ctx, "A")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v != "cached:A" {
		t.Errorf("expected cached:A, got %q", v)
	}
}
