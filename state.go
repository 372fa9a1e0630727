package slot

// State represents the current state of a Loader's slot.
type State int32

const (
	// StateIdle indicates the slot holds no resource. This is the initial
	// state, the state after Release, and the state after a failed load
	// when no resource was ever installed.
	StateIdle State = iota

	// StateLoading indicates a load is in flight.
	StateLoading

	// StateReady indicates the last load succeeded and its resource is
	// installed in the slot.
	StateReady

	// StateDegraded indicates the last load failed or was canceled while a
	// previously loaded resource remains installed and usable.
	StateDegraded
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}
