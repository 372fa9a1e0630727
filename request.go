package slot

// Request carries a load request through the processing pipeline. Middleware
// installed via Options can observe the path, compare against the previous
// value, or rewrite the result before it is installed in the slot.
type Request[T any] struct {
	// Path identifies the resource to load. Its interpretation belongs to
	// the StartFunc: a filesystem path, a bundle address, an object key.
	Path string

	// Previous is the last successfully installed value. On first load
	// this is the zero value of T.
	Previous T

	// Value is the newly loaded resource. It is set by the load attempt
	// and may be modified by pipeline stages before it is installed.
	Value T

	// replacing is the handle that was installed when this request began.
	// It outlives every attempt of the request and is released by Load
	// once the replacement resolves.
	replacing Handle[T]
}
