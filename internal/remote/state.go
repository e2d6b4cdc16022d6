package remote

import "time"

// State is the lifecycle state of a Remote's connection.
type State string

const (
	StateDisconnected  State = "disconnected"
	StateConnecting    State = "connecting"
	StateConnected     State = "connected"
	StateDisconnecting State = "disconnecting"
)

// String returns the string representation of a State.
func (s State) String() string {
	return string(s)
}

// StateTransition records a state change for debugging.
type StateTransition struct {
	From      State     `json:"from"`
	To        State     `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// StateHandler is called after every state change.
type StateHandler func(from, to State)

// maxTransitions limits the transition history kept per Remote.
const maxTransitions = 50

// transition moves to the given state and returns a func that fires the
// state handlers. Must be called with r.mu held; call the returned func
// after unlocking.
func (r *Remote) transition(to State) func() {
	from := r.state
	if from == to {
		return func() {}
	}
	r.state = to

	r.transitions = append(r.transitions, StateTransition{From: from, To: to, Timestamp: time.Now()})
	if len(r.transitions) > maxTransitions {
		r.transitions = r.transitions[len(r.transitions)-maxTransitions:]
	}

	if to == StateDisconnected {
		close(r.done)
	}

	handlers := make([]StateHandler, len(r.stateHandlers))
	copy(handlers, r.stateHandlers)
	return func() {
		for _, h := range handlers {
			h(from, to)
		}
	}
}
