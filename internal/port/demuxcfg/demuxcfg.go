// Package demuxcfg is the "other"-domain port refinement carrying demuxer
// configuration: container format auto-detection and the stream table.
package demuxcfg

import (
	"omxcore/internal/port/other"
)

// Index namespace for demuxer-config parameters.
const (
	IndexParamContainerFormat int32 = 0x05020000 + iota
	IndexParamStreamCount
)

// ContainerFormat names the detected (or forced) container, or
// "auto-detect" if detection hasn't run yet — spec §4.3's CodingAutoDetect
// and §7's FormatNotDetected failure path hinge on this value.
type ContainerFormat struct {
	Name     string
	Detected bool
}

// New builds a demuxer-config port Behaviour.
func New() *other.Behaviour {
	b := other.New()
	b.Register(IndexParamContainerFormat, ContainerFormat{Name: "auto-detect"}, false)
	b.Register(IndexParamStreamCount, 0, false)
	return b
}
