// Package other is the base Behaviour for the "other" domain — ports that
// carry neither audio, video, nor image payloads: binary passthrough,
// content URIs, demuxer/container configuration. Codec refinements binary,
// uri, demuxcfg, and mp4 register their indices on New's Behaviour.
package other

import (
	"omxcore/internal/port"
	"omxcore/internal/port/base"
)

// Behaviour is the common "other"-domain Behaviour. It has no generic
// indices of its own — every refinement in this domain introduces its own
// index namespace, since "other" ports are heterogeneous by definition.
type Behaviour struct {
	*base.Base
}

// New constructs the "other" base Behaviour.
func New() *Behaviour {
	return &Behaviour{Base: base.New(port.DomainOther)}
}
