package resource

// Phase is the lifecycle phase of a resource generation.
type Phase uint8

const (
	// Idle means no load has started.
	Idle Phase = iota

	// Pending means the loader for the current generation is running.
	Pending

	// Resolved means the current generation produced a value.
	Resolved

	// Errored means the current generation failed. Errors are terminal for
	// the generation; nothing retries automatically.
	Errored
)

// String returns the string representation of the Phase.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// State is a snapshot of a resource. Value is meaningful only when Phase
// is Resolved and Err only when Phase is Errored.
type State[T any] struct {
	Phase      Phase
	Generation uint64
	Value      T
	Err        error
}

// IsSettled reports whether the state is Resolved or Errored.
func (s State[T]) IsSettled() bool {
	return s.Phase == Resolved || s.Phase == Errored
}
