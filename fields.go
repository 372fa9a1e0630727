package slot

import "github.com/zoobzio/capitan"

// Field keys for Loader events.
var (
	// KeyPath is the path passed to the load request.
	KeyPath = capitan.NewStringKey("path")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyState is the current state of the Loader.
	KeyState = capitan.NewStringKey("state")

	// KeyOldState is the previous state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the new state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyDuration is the elapsed time of a load attempt.
	KeyDuration = capitan.NewDurationKey("duration")
)
