// Package buffer implements the buffer header protocol (spec §4.4): the
// metadata record that accompanies every buffer payload and is the unit of
// ownership transfer between application, kernel, and tunnel peer.
package buffer

import (
	"time"

	"github.com/google/uuid"

	"omxcore/internal/support/check"
)

// Owner identifies who currently holds a Header. The zero value, OwnerNone,
// means the header exists but nobody has claimed it — only valid between
// allocation and the first Claim.
type Owner uint8

const (
	OwnerNone Owner = iota
	OwnerApplication
	OwnerKernel
	OwnerTunnelPeer
)

// Mark is an application cookie attached to a buffer (spec §3, §4.6):
// when the target component finishes processing the buffer it carries, a
// Mark event fires. Cookie disambiguates marks issued in quick succession.
type Mark struct {
	Target string
	Cookie uuid.UUID
}

// Header is the buffer header: payload reference plus metadata. Headers are
// never duplicated — Claim/Release enforce single ownership.
type Header struct {
	Payload   []byte
	Alloc     int
	Filled    int
	Offset    int
	Timestamp time.Duration
	Flags     Flags
	Mark      *Mark

	InputPort  int
	OutputPort int

	AppPrivate any

	owner Owner
}

// NewHeader allocates a header over payload (supplier-allocated or
// app-supplied via UseBuffer — spec §3 "Lifecycles").
func NewHeader(payload []byte, inputPort, outputPort int) *Header {
	return &Header{
		Payload:    payload,
		Alloc:      len(payload),
		InputPort:  inputPort,
		OutputPort: outputPort,
		owner:      OwnerNone,
	}
}

// Owner reports the current holder.
func (h *Header) Owner() Owner {
	return h.owner
}

// Claim transfers ownership to by. It panics (debug builds only) if the
// header is already claimed by a different owner — a double-claim is a
// protocol violation (spec §3: "a buffer header is held by exactly one
// party at a time").
func (h *Header) Claim(by Owner) {
	check.Assertf(h.owner == OwnerNone || h.owner == by,
		"buffer header double-claimed: held by %d, claimed by %d", h.owner, by)
	h.owner = by
}

// Release relinquishes ownership back to OwnerNone, the state between a
// handoff's release and the next Claim.
func (h *Header) Release() {
	h.owner = OwnerNone
}

// ValidateWrite returns false if the payload is ReadOnly — consumers must
// copy instead of mutating in place (spec §4.4).
func (h *Header) ValidateWrite() bool {
	return !h.Flags.Has(ReadOnly)
}

// IsEOSTerminal reports whether this header both carries EOS and has data,
// meaning the sink must fully drain it before emitting its own EOS output
// (spec §4.4 rule).
func (h *Header) IsEOSTerminal() bool {
	return h.Flags.Has(EOS) && h.Filled > 0
}

// PrecedesDataBoundary reports whether this header carries out-of-band
// codec setup data that is exempt from the EOS boundary rule.
func (h *Header) PrecedesDataBoundary() bool {
	return h.Flags.Has(CodecConfig)
}
