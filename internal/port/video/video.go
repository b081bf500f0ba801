// Package video is the base Behaviour for video-domain ports.
package video

import (
	"omxcore/internal/port"
	"omxcore/internal/port/base"
)

// Index namespace for generic video-domain parameters (spec §6).
const (
	IndexParamVideoPortFormat int32 = 0x03000000 + iota
	IndexParamVideoFrameSize
)

// FrameSize is a width/height pair.
type FrameSize struct {
	Width, Height int
}

// Behaviour is the common video-domain Behaviour.
type Behaviour struct {
	*base.Base
}

// New constructs the video base Behaviour with generic indices registered.
func New() *Behaviour {
	b := base.New(port.DomainVideo)
	b.Register(IndexParamVideoPortFormat, "raw", true)
	b.Register(IndexParamVideoFrameSize, FrameSize{Width: 0, Height: 0}, true)
	return &Behaviour{Base: b}
}
