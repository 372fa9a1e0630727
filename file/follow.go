package file

import (
	"context"
	"sync"

	"github.com/zoobzio/slot"
)

// Follow drives a slot.Loader from file change notifications. Every write
// to path triggers a reload through the loader, superseding any load still
// in flight, and each successfully installed value is delivered on the
// returned channel. The initial load happens immediately.
//
// Reloads run concurrently so a new change can pre-empt one still in
// flight; the slot arbitrates, and a superseded reload delivers nothing.
// Failed reloads are absorbed: the loader keeps its previous value (and
// reports StateDegraded) and Follow keeps watching. The channel is closed
// when ctx is canceled, which also releases the slot.
func Follow[T any](ctx context.Context, loader *slot.Loader[T], path string) (<-chan T, error) {
	changes, err := NewWatcher(path).Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan T)

	go func() {
		defer close(out)
		var wg sync.WaitGroup
		defer wg.Wait()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				wg.Add(1)
				go func() {
					defer wg.Done()
					v, err := loader.Load(ctx, path)
					if err != nil {
						return
					}
					select {
					case out <- v:
					case <-ctx.Done():
					}
				}()
			}
		}
	}()

	return out, nil
}
