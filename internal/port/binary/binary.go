// Package binary is the "other"-domain port refinement for raw/passthrough
// binary streams (e.g. a demuxer's compressed elementary stream output
// before a decoder has negotiated its format).
package binary

import (
	"omxcore/internal/port/other"
)

// Index namespace for binary-port parameters.
const (
	IndexParamBinaryChunkSize int32 = 0x05000000 + iota
)

// New builds a binary port Behaviour: the "other" base plus chunk sizing.
func New() *other.Behaviour {
	b := other.New()
	b.Register(IndexParamBinaryChunkSize, 4096, false)
	return b
}
