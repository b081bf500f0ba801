package tunnel

import "sync"

// StatusBits tracks one side's readiness bits for a tunnelled port (spec
// §4.6): AcceptUseBuffer and AcceptBufferExchange. Status records the bits
// and answers ReadyForExchange; nothing in this module sets them (neither
// the kernel nor Setup calls SetOut/SetIn), and buffer exchange across a
// tunnel does not consult ReadyForExchange.
type StatusBits uint8

const (
	AcceptUseBuffer StatusBits = 1 << iota
	AcceptBufferExchange
)

// Status is shared between both sides of one tunnel (held by the Tunnel
// value returned from Setup), each side only ever writing its own half.
type Status struct {
	mu  sync.Mutex
	out StatusBits
	in  StatusBits
}

// SetOut/SetIn record the named side's current bits (idempotent — a side
// advances monotonically: AcceptUseBuffer then AcceptUseBuffer|AcceptBufferExchange).
func (s *Status) SetOut(bits StatusBits) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = bits
}

func (s *Status) SetIn(bits StatusBits) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.in = bits
}

// ReadyForExchange reports whether both sides have set AcceptBufferExchange.
func (s *Status) ReadyForExchange() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.has(AcceptBufferExchange) && s.in.has(AcceptBufferExchange)
}

func (b StatusBits) has(mask StatusBits) bool { return b&mask == mask }
