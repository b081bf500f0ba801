// Package fsm implements the component state machine (spec §4.1, §3): the
// five stable OMX_STATE* values plus the transient "transitioning to"
// state recorded while a StateSet command is in flight, and the command
// dispatch rules that decide IncorrectStateTransition / SameState /
// IncorrectStateOperation before any servant work begins.
package fsm

import "omxcore/internal/support/check"

// State is one of the five stable component lifecycle states (spec §3).
type State uint8

const (
	StateLoaded State = iota
	StateIdle
	StateExecuting
	StatePause
	StateWaitForResources
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "Loaded"
	case StateIdle:
		return "Idle"
	case StateExecuting:
		return "Executing"
	case StatePause:
		return "Pause"
	case StateWaitForResources:
		return "WaitForResources"
	default:
		check.Assertf(false, "unknown fsm state: %d", s)
		return "Unknown"
	}
}

// Command identifies the kind of command sent through SendCommand (spec §4.1).
type Command uint8

const (
	CmdStateSet Command = iota
	CmdFlush
	CmdPortEnable
	CmdPortDisable
	CmdMarkBuffer
)

func (c Command) String() string {
	switch c {
	case CmdStateSet:
		return "StateSet"
	case CmdFlush:
		return "Flush"
	case CmdPortEnable:
		return "PortEnable"
	case CmdPortDisable:
		return "PortDisable"
	case CmdMarkBuffer:
		return "MarkBuffer"
	default:
		return "Unknown"
	}
}

// transitionTable[from][to] reports whether a direct StateSet(to) is legal
// from state `from` (spec §3's lifecycle diagram). WaitForResources is
// entered only from Loaded, and the only transition listed out of it is
// back to Loaded.
var transitionTable = map[State]map[State]bool{
	StateLoaded: {
		StateIdle:             true,
		StateWaitForResources: true,
	},
	StateIdle: {
		StateLoaded:    true,
		StateExecuting: true,
		StatePause:     true,
	},
	StateExecuting: {
		StateIdle:  true,
		StatePause: true,
	},
	StatePause: {
		StateIdle:      true,
		StateExecuting: true,
	},
	StateWaitForResources: {
		StateLoaded: true,
	},
}

// CanTransition reports whether from -> to is a legal direct StateSet.
func CanTransition(from, to State) bool {
	m, ok := transitionTable[from]
	if !ok {
		return false
	}
	return m[to]
}
