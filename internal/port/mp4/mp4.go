// Package mp4 is the demuxer-config refinement specialised for the MP4/ISO
// base media file format container (moov/trak atom bookkeeping).
package mp4

import (
	"omxcore/internal/port/demuxcfg"
	"omxcore/internal/port/other"
)

// Index namespace for MP4-specific parameters.
const (
	IndexParamMp4TrackCount int32 = 0x05030000 + iota
	IndexParamMp4MoovOffset
)

// New builds an MP4 port Behaviour: the demuxer-config base plus
// mp4-specific atom bookkeeping, falling through to demuxcfg/other for
// anything it doesn't register itself.
func New() *other.Behaviour {
	b := demuxcfg.New()
	b.Register(IndexParamMp4TrackCount, 0, false)
	b.Register(IndexParamMp4MoovOffset, int64(0), false)
	return b
}
