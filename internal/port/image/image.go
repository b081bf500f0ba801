// Package image is the base Behaviour for image-domain ports (e.g. WebP).
package image

import (
	"omxcore/internal/port"
	"omxcore/internal/port/base"
)

// Index namespace for generic image-domain parameters (spec §6).
const (
	IndexParamImagePortFormat int32 = 0x04000000 + iota
)

// Behaviour is the common image-domain Behaviour.
type Behaviour struct {
	*base.Base
}

// New constructs the image base Behaviour with generic indices registered.
func New() *Behaviour {
	b := base.New(port.DomainImage)
	b.Register(IndexParamImagePortFormat, "raw", true)
	return &Behaviour{Base: b}
}
