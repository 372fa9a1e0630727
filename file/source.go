// Package file provides filesystem-backed loading for slot.Loader: a
// StartFunc that reads, decodes, and validates files, an fsnotify-based
// change watcher, and a Follow helper that reloads the slot on every
// change.
package file

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/zoobzio/slot"
)

// validate is the shared validator instance.
var validate = validator.New()

// Source returns a slot.StartFunc that loads files of type T.
//
// Each load reads the file at the requested path, decodes it with the
// codec, and validates the result using go-playground/validator struct
// tags. The read runs behind the returned handle; cancellation of the
// attempt's scope aborts the wait, not the underlying syscall.
//
// Example:
//
//	type Manifest struct {
//	    Name    string   `yaml:"name" validate:"required"`
//	    Bundles []string `yaml:"bundles" validate:"min=1"`
//	}
//
//	loader := slot.New[Manifest](file.Source[Manifest](file.YAMLCodec{}))
//	m, err := loader.Load(ctx, "assets/manifest.yaml")
func Source[T any](codec Codec) slot.StartFunc[T] {
	return func(ctx context.Context, path string) slot.Handle[T] {
		return slot.Go(ctx, func(ctx context.Context) (T, error) {
			var v T
			if err := ctx.Err(); err != nil {
				return v, err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return v, fmt.Errorf("read %s: %w", path, err)
			}
			if err := codec.Unmarshal(data, &v); err != nil {
				return v, fmt.Errorf("unmarshal failed: %w", err)
			}
			if err := validate.Struct(v); err != nil {
				return v, fmt.Errorf("validation failed: %w", err)
			}
			return v, nil
		}, nil)
	}
}

// Raw returns a slot.StartFunc that loads file contents as raw bytes,
// skipping decode and validation.
func Raw() slot.StartFunc[[]byte] {
	return func(ctx context.Context, path string) slot.Handle[[]byte] {
		return slot.Go(ctx, func(ctx context.Context) ([]byte, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			return data, nil
		}, nil)
	}
}
