package slot

import "github.com/zoobzio/capitan"

// Load lifecycle signals.
var (
	// LoadStarted is emitted when a load attempt begins.
	LoadStarted = capitan.NewSignal(
		"slot.load.started",
		"Load attempt started",
	)

	// LoadSuperseded is emitted when an in-flight load is canceled because
	// a newer load request replaced it.
	LoadSuperseded = capitan.NewSignal(
		"slot.load.superseded",
		"In-flight load canceled by a newer request",
	)

	// LoadSucceeded is emitted when a load completes and its resource is
	// installed in the slot.
	LoadSucceeded = capitan.NewSignal(
		"slot.load.succeeded",
		"Load completed and resource installed",
	)

	// LoadFailed is emitted when a load fails or is canceled.
	LoadFailed = capitan.NewSignal(
		"slot.load.failed",
		"Load failed or canceled",
	)
)

// Slot lifecycle signals.
var (
	// SlotReleased is emitted when the slot's resource and cancellation
	// scope are torn down.
	SlotReleased = capitan.NewSignal(
		"slot.released",
		"Slot resource and scope released",
	)

	// StateChanged is emitted when a Loader transitions between states.
	StateChanged = capitan.NewSignal(
		"slot.state.changed",
		"Loader state transition",
	)
)
