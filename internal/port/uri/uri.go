// Package uri is the "other"-domain port refinement for content-URI
// configuration on source/sink components (spec §7: ContentURIError).
package uri

import (
	"omxcore/internal/port/other"
)

// Index namespace for URI-port parameters.
const (
	IndexParamContentURI int32 = 0x05010000 + iota
)

// New builds a URI port Behaviour: the "other" base plus a content URI
// string, empty by default (set via SetParameter before Idle transition).
func New() *other.Behaviour {
	b := other.New()
	b.Register(IndexParamContentURI, "", false)
	return b
}
