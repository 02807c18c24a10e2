package session

import "sync"

// State is the call session's lifecycle position. Mute and single-flight
// guarantees are derived from it: the session is muted while GREETING or
// SPEAKING, and a pipeline cycle is in flight while PROCESSING or SPEAKING.
type State int

const (
	StateConnecting State = iota
	StateGreeting
	StateListening
	StateProcessing
	StateSpeaking
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateGreeting:
		return "GREETING"
	case StateListening:
		return "LISTENING"
	case StateProcessing:
		return "PROCESSING"
	case StateSpeaking:
		return "SPEAKING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// InvalidTransitionError represents an invalid state transition attempt.
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return "invalid state transition from " + e.From.String() + " to " + e.To.String()
}

var validTransitions = map[State][]State{
	StateConnecting: {StateGreeting, StateClosed},
	StateGreeting:   {StateListening, StateClosed},
	StateListening:  {StateProcessing, StateClosed},
	StateProcessing: {StateSpeaking, StateListening, StateClosed},
	StateSpeaking:   {StateListening, StateClosed},
	StateClosed:     {},
}

// stateMachine validates transitions. Writes happen only on the session's
// event goroutine; the lock exists for external State() readers.
type stateMachine struct {
	mu      sync.RWMutex
	current State
}

func newStateMachine() *stateMachine {
	return &stateMachine{current: StateConnecting}
}

func (m *stateMachine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *stateMachine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !transitionValid(m.current, to) {
		return &InvalidTransitionError{From: m.current, To: to}
	}
	m.current = to
	return nil
}

func transitionValid(from, to State) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Muted reports whether the session's own speech is (about to be) on the
// wire, including the trailing guard interval.
func (m *stateMachine) Muted() bool {
	switch m.State() {
	case StateGreeting, StateSpeaking:
		return true
	}
	return false
}

// PipelineBusy reports whether a transcribe-reply-synthesize cycle is in
// flight.
func (m *stateMachine) PipelineBusy() bool {
	switch m.State() {
	case StateProcessing, StateSpeaking:
		return true
	}
	return false
}
