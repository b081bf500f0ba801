// Package audio is the base Behaviour for audio-domain ports. Codec
// refinements (pcm, mp3, opus) build on New's Behaviour and register their
// own indices on its Base.
package audio

import (
	"omxcore/internal/port"
	"omxcore/internal/port/base"
)

// Index namespace for generic audio-domain parameters (spec §6:
// "audio" range of the 32-bit index partition).
const (
	IndexParamAudioPortFormat int32 = 0x02000000 + iota
	IndexParamAudioChannels
)

// AudioPortFormat selects the audio coding used on this port.
type AudioPortFormat struct {
	Encoding string // e.g. "pcm", "mp3", "opus"
}

// Behaviour is the common audio-domain Behaviour. Codec refinements return
// it as is, after registering their codec-specific indices on its Base.
type Behaviour struct {
	*base.Base
}

// New constructs the audio base Behaviour with its generic indices
// registered, channel count defaulting to stereo.
func New() *Behaviour {
	b := base.New(port.DomainAudio)
	b.Register(IndexParamAudioPortFormat, AudioPortFormat{Encoding: "pcm"}, true)
	b.Register(IndexParamAudioChannels, 2, true)
	return &Behaviour{Base: b}
}
