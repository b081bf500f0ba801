// Package omxerr implements the fixed error taxonomy every core and
// component operation reports through (spec §7). A Kind is the stable,
// comparable part of an error; Error wraps it with an optional cause and
// enough context to log usefully, without ever losing the Kind through a
// wrapping chain (Is/As work as expected).
package omxerr

import "fmt"

// Kind enumerates the fixed result taxonomy. Every fallible operation in
// this module returns one, wrapped in an *Error (or nil for None).
type Kind uint8

const (
	None Kind = iota
	InsufficientResources
	Undefined
	BadParameter
	ComponentNotFound
	NoMore
	BadPortIndex
	IncorrectStateTransition
	IncorrectStateOperation
	SameState
	UnsupportedIndex
	UnsupportedSetting
	PortUnpopulated
	ContentURIError
	FormatNotDetected
	PortsNotCompatible
	CommandCanceled
)

func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case InsufficientResources:
		return "InsufficientResources"
	case Undefined:
		return "Undefined"
	case BadParameter:
		return "BadParameter"
	case ComponentNotFound:
		return "ComponentNotFound"
	case NoMore:
		return "NoMore"
	case BadPortIndex:
		return "BadPortIndex"
	case IncorrectStateTransition:
		return "IncorrectStateTransition"
	case IncorrectStateOperation:
		return "IncorrectStateOperation"
	case SameState:
		return "SameState"
	case UnsupportedIndex:
		return "UnsupportedIndex"
	case UnsupportedSetting:
		return "UnsupportedSetting"
	case PortUnpopulated:
		return "PortUnpopulated"
	case ContentURIError:
		return "ContentURIError"
	case FormatNotDetected:
		return "FormatNotDetected"
	case PortsNotCompatible:
		return "PortsNotCompatible"
	case CommandCanceled:
		return "CommandCanceled"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by core and component
// operations. Component and Port are optional context, filled in where the
// failure is port- or component-scoped.
type Error struct {
	Kind      Kind
	Component string
	Port      int
	Cause     error
}

// Port sentinel meaning "not a port-scoped error".
const NoPort = -1

func New(kind Kind) *Error {
	return &Error{Kind: kind, Port: NoPort}
}

func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Port: NoPort, Cause: cause}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Component != "" {
		msg = fmt.Sprintf("%s: component %q", msg, e.Component)
	}
	if e.Port != NoPort {
		msg = fmt.Sprintf("%s port %d", msg, e.Port)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, omxerr.New(omxerr.NoMore)) or compare against the
// package-level sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithComponent returns a copy of e annotated with a component name.
func (e *Error) WithComponent(name string) *Error {
	c := *e
	c.Component = name
	return &c
}

// WithPort returns a copy of e annotated with a port index.
func (e *Error) WithPort(idx int) *Error {
	c := *e
	c.Port = idx
	return &c
}

// Sentinel values for errors.Is comparisons against bare Kinds.
var (
	ErrNoMore             = New(NoMore)
	ErrComponentNotFound  = New(ComponentNotFound)
	ErrSameState          = New(SameState)
	ErrPortsNotCompatible = New(PortsNotCompatible)
)

// Of returns the Kind carried by err, or Undefined if err is not an *Error
// (and None if err is nil).
func Of(err error) Kind {
	if err == nil {
		return None
	}
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind
	}
	return Undefined
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// AtEnumBoundary translates the internal NoMore sentinel to nil, the public
// API convention spec §7 calls for ("NoMore... is translated to None at
// the wrapping public API"). Any other error passes through unchanged.
func AtEnumBoundary(err error) error {
	if err == nil {
		return nil
	}
	if Of(err) == NoMore {
		return nil
	}
	return err
}
