package session

import (
	"errors"
	"fmt"
	"sync"
)

// Status is the session state as observed by a consumer.
type Status int

// Session states. Unknown and Loading are initial; Authenticated and
// Anonymous are the settled states.
const (
	StatusUnknown Status = iota
	StatusLoading
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when a status change is not allowed.
var ErrInvalidTransition = errors.New("invalid session status transition")

// TransitionError describes a rejected transition.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid session status transition %s -> %s", e.From, e.To)
}

// Is supports errors.Is(err, ErrInvalidTransition).
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

var transitions = map[Status][]Status{
	StatusUnknown:       {StatusLoading, StatusAuthenticated, StatusAnonymous},
	StatusLoading:       {StatusAuthenticated, StatusAnonymous},
	StatusAuthenticated: {StatusAnonymous},
	StatusAnonymous:     {StatusLoading, StatusAuthenticated},
}

// TransitionFunc observes an accepted status change.
type TransitionFunc func(from, to Status)

// Machine tracks the session status. It is safe for concurrent use.
type Machine struct {
	mu        sync.Mutex
	current   Status
	listeners []TransitionFunc
}

// NewMachine returns a machine in StatusUnknown.
func NewMachine() *Machine {
	return &Machine{current: StatusUnknown}
}

// Current returns the current status.
func (m *Machine) Current() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// OnTransition registers fn to be called after every accepted transition.
func (m *Machine) OnTransition(fn TransitionFunc) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Transition moves to status to. Moving to the current status is a no-op.
func (m *Machine) Transition(to Status) error {
	m.mu.Lock()
	from := m.current
	if from == to {
		m.mu.Unlock()
		return nil
	}
	if !allowed(from, to) {
		m.mu.Unlock()
		return &TransitionError{From: from, To: to}
	}
	m.current = to
	listeners := append([]TransitionFunc(nil), m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(from, to)
	}
	return nil
}

func allowed(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
