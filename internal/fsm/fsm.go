package fsm

import (
	"fmt"
	"sync"

	"omxcore/internal/omxerr"
)

// Machine is the per-component state holder. It only decides whether a
// command is legal to *begin* — the actual servant work (draining ports,
// allocating buffers, flushing) happens elsewhere and reports back via
// Complete or Cancel once done, matching the two-phase StateSet protocol
// of spec §3/§4.1. The Machine itself does not fix when Complete runs;
// component.Runtime.SendCommand calls Begin and Complete within one call
// and fires OMX_EventCmdComplete before returning.
type Machine struct {
	mu sync.Mutex

	state        State
	transitional bool // a StateSet is in flight
	target       State
}

// New returns a Machine starting in Loaded, spec §3's initial state.
func New() *Machine {
	return &Machine{state: StateLoaded}
}

// State returns the last committed stable state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Transitioning reports the in-flight target state, if any.
func (m *Machine) Transitioning() (target State, inFlight bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target, m.transitional
}

// BeginStateSet validates and, if legal, records to as the in-flight
// target (spec §3: only one state transition may be outstanding at a
// time). It returns SameState if to equals the current stable state,
// IncorrectStateOperation if a transition is already in flight, and
// IncorrectStateTransition if the diagram forbids from->to directly.
func (m *Machine) BeginStateSet(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transitional {
		return fmt.Errorf("%w: StateSet to %s already in flight",
			omxerr.New(omxerr.IncorrectStateOperation), m.target)
	}
	if to == m.state {
		return fmt.Errorf("%w: already %s", omxerr.ErrSameState, m.state)
	}
	if !CanTransition(m.state, to) {
		return fmt.Errorf("%w: %s -> %s", omxerr.New(omxerr.IncorrectStateTransition), m.state, to)
	}

	m.transitional = true
	m.target = to
	return nil
}

// CompleteStateSet commits the in-flight transition, the one place the
// stable state field actually changes. It returns an Undefined error,
// leaving the state unchanged, if called with no transition pending —
// that would be a servant bug, not a caller's.
func (m *Machine) CompleteStateSet() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.transitional {
		return m.state, fmt.Errorf("%w: CompleteStateSet with no transition pending",
			omxerr.New(omxerr.Undefined))
	}
	m.state = m.target
	m.transitional = false
	return m.state, nil
}

// CancelStateSet aborts an in-flight transition, leaving the stable state
// unchanged (used when the servant work backing a StateSet fails, e.g.
// InsufficientResources during Idle population, spec §3's
// WaitForResources path).
func (m *Machine) CancelStateSet() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitional = false
}

// CheckFlushAllowed validates that Flush is legal in the current stable
// state (spec §4.2: flush drains in-flight buffers, meaningless in
// Loaded where no buffers are populated at all).
func (m *Machine) CheckFlushAllowed() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateIdle, StateExecuting, StatePause:
		return nil
	default:
		return fmt.Errorf("%w: Flush in state %s", omxerr.New(omxerr.IncorrectStateOperation), m.state)
	}
}

// CheckPortCommandAllowed validates PortEnable/PortDisable legality. These
// are legal in every stable state per spec §3 — the command simply
// dictates whether the kernel must also (de)populate the port before
// completing.
func (m *Machine) CheckPortCommandAllowed() error {
	return nil
}

// CheckMarkBufferAllowed validates MarkBuffer legality — meaningless
// before any buffers exist (Loaded, WaitForResources).
func (m *Machine) CheckMarkBufferAllowed() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateIdle, StateExecuting, StatePause:
		return nil
	default:
		return fmt.Errorf("%w: MarkBuffer in state %s", omxerr.New(omxerr.IncorrectStateOperation), m.state)
	}
}
