// Package pcm is the PCM audio codec port refinement.
package pcm

import (
	"omxcore/internal/port/audio"
)

// Index namespace for PCM-specific parameters (spec §6, vendor/codec range
// within audio).
const (
	IndexParamAudioPcm int32 = 0x02010000 + iota
)

// PcmParam describes raw PCM sample layout.
type PcmParam struct {
	SampleRate    int
	BitsPerSample int
	Signed        bool
	Interleaved   bool
}

// New builds a PCM port Behaviour: the audio base plus PCM sample-layout
// parameters, falling through to audio.Behaviour for anything it doesn't
// register itself.
func New() *audio.Behaviour {
	b := audio.New()
	b.Register(IndexParamAudioPcm, PcmParam{
		SampleRate:    44100,
		BitsPerSample: 16,
		Signed:        true,
		Interleaved:   true,
	}, true)
	return b
}
