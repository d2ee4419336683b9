// Package gesture implements the drag/resize interaction controller for
// the planning grid. One gesture at a time: the state machine is the
// single source of truth for what the pointer is currently doing.
package gesture

// State represents the current state of the interaction controller.
type State string

const (
	// StateIdle means no gesture is active.
	StateIdle State = "idle"
	// StateDragging means a whole bar is being moved.
	StateDragging State = "dragging"
	// StateResizing means one edge of a bar is being dragged.
	StateResizing State = "resizing"
	// StatePending means a completed gesture awaits operator confirmation.
	StatePending State = "pending"
)

// FSM manages state transitions for planning gestures.
type FSM struct {
	transitions map[State][]State
}

// NewFSM creates a new FSM with the allowed gesture transitions.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateIdle:     {StateDragging, StateResizing},
			StateDragging: {StateIdle, StatePending},
			StateResizing: {StateIdle, StatePending},
			StatePending:  {StateIdle},
		},
	}
}

// CanTransition checks if transition is allowed.
func (f *FSM) CanTransition(from, to State) bool {
	allowed, ok := f.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
