// Package opus is the Opus audio codec port refinement.
package opus

import (
	"omxcore/internal/port/audio"
)

// Index namespace for Opus-specific parameters.
const (
	IndexParamAudioOpus int32 = 0x02030000 + iota
)

// OpusParam describes Opus-specific stream parameters.
type OpusParam struct {
	BitRate  int
	FrameSiz int // milliseconds: 2.5, 5, 10, 20, 40, 60 — stored as *10 for int math
	VBR      bool
}

// New builds an Opus port Behaviour: the audio base plus Opus parameters.
func New() *audio.Behaviour {
	b := audio.New()
	b.Register(IndexParamAudioOpus, OpusParam{
		BitRate:  64000,
		FrameSiz: 200, // 20ms
		VBR:      true,
	}, false)
	return b
}
