package file

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a file for changes and emits a notification per write.
type Watcher struct {
	path string
}

// NewWatcher creates a Watcher for the given file path.
func NewWatcher(path string) *Watcher {
	return &Watcher{path: path}
}

// Watch begins watching the file and returns a channel that emits whenever
// the file is written or created. One notification is emitted immediately
// so consumers can perform an initial load. The channel is closed when the
// context is canceled.
func (w *Watcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(w.path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch file %s: %w", w.path, err)
	}

	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer watcher.Close()

		// Initial notification
		select {
		case out <- struct{}{}:
		case <-ctx.Done():
			return
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				// Only notify on write or create events
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				default:
					// A notification is already pending; coalesce.
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Continue watching despite errors
			}
		}
	}()

	return out, nil
}
