package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/orchestrated-app/hub/internal/bus"
)

// State represents a daemon runtime state.
type State string

const (
	Booting  State = "BOOTING"
	Syncing  State = "SYNCING"
	Ready    State = "READY"
	Degraded State = "DEGRADED"
	Errored  State = "ERROR"
)

// validTransitions defines allowed state transitions. Degraded means the
// gateway is failing but stale cached data is still being served.
var validTransitions = map[State][]State{
	Booting:  {Syncing, Errored},
	Syncing:  {Ready, Degraded, Errored},
	Ready:    {Syncing, Degraded, Errored},
	Degraded: {Syncing, Ready, Errored},
	Errored:  {Booting},
}

// Machine tracks and enforces daemon runtime state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	lastErr string
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Booting state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Booting,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// LastError returns the most recent error note recorded alongside a transition.
func (m *Machine) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
// Transitioning to the current state is a no-op.
func (m *Machine) Transition(to State) error {
	return m.TransitionWithNote(to, "")
}

// TransitionWithNote is Transition carrying an error note, recorded so the
// API can report why the daemon is Degraded or Errored.
func (m *Machine) TransitionWithNote(to State, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if to == m.current {
		m.lastErr = note
		return nil
	}
	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	m.lastErr = note
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      "daemon.status_changed",
			Timestamp: time.Now(),
			Payload: StatusChange{
				From: from,
				To:   to,
			},
		})
	}
	return nil
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}
