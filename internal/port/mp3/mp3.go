// Package mp3 is the MP3 audio codec port refinement.
package mp3

import (
	"omxcore/internal/port/audio"
)

// Index namespace for MP3-specific parameters.
const (
	IndexParamAudioMp3 int32 = 0x02020000 + iota
)

// Mp3Param describes MP3-specific stream parameters.
type Mp3Param struct {
	BitRate    int
	SampleRate int
	CBR        bool
}

// New builds an MP3 port Behaviour: the audio base plus MP3 parameters.
func New() *audio.Behaviour {
	b := audio.New()
	b.Register(IndexParamAudioMp3, Mp3Param{
		BitRate:    128000,
		SampleRate: 44100,
		CBR:        true,
	}, false)
	return b
}
