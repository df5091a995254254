package types

// State represents the layered strategy lifecycle state.
//
// States follow a defined progression:
//
//	StateUninitialized → StateInitializing → StateInitialized → StateReady
//
// StateInitialized means the layer registry is built but worker ids have not been
// assigned, or the local worker id is not yet known. Only StateReady answers
// authority queries. Close returns the strategy to StateUninitialized.
type State int

const (
	// StateUninitialized is the state before Init and after Close.
	StateUninitialized State = iota

	// StateInitializing indicates sub-strategies are being constructed and initialized.
	StateInitializing

	// StateInitialized indicates the registry is built and waiting for worker ids.
	StateInitialized

	// StateReady indicates worker ids are assigned and the local worker id is set.
	StateReady
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitializing:
		return "Initializing"
	case StateInitialized:
		return "Initialized"
	case StateReady:
		return "Ready"
	default:
		return "Unknown"
	}
}
