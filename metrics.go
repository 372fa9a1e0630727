package slot

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key loader events.
type MetricsProvider interface {
	// OnStateChange is called when the loader transitions between states.
	OnStateChange(from, to State)

	// OnLoadSuccess is called when a load completes and is installed.
	// Duration is the time from request to installation.
	OnLoadSuccess(duration time.Duration)

	// OnLoadFailure is called when a load fails or is canceled.
	OnLoadFailure(duration time.Duration)

	// OnSupersede is called when an in-flight load is canceled by a newer
	// load request.
	OnSupersede()

	// OnRelease is called when the slot is released.
	OnRelease()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnStateChange(_, _ State)      {}
func (NoOpMetricsProvider) OnLoadSuccess(_ time.Duration) {}
func (NoOpMetricsProvider) OnLoadFailure(_ time.Duration) {}
func (NoOpMetricsProvider) OnSupersede()                  {}
func (NoOpMetricsProvider) OnRelease()                    {}
