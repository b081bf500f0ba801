// Package base implements the common Behaviour machinery every domain and
// codec port refinement composes in: a registered-index parameter store,
// the default (same-domain-required) tunnel compatibility check, and a
// no-op slaving hook. Domain packages (audio, video, image, other) embed
// *Base; codec refinements (pcm, mp3, opus, binary, uri, demuxcfg, mp4)
// register their own indices on the domain Behaviour's Base — explicit
// composition in place of implicit super dispatch (spec §9).
package base

import (
	"fmt"

	"omxcore/internal/omxerr"
	"omxcore/internal/port"
)

// Base holds the registered-index parameter table of one port Behaviour.
// The domain layer and any codec refinement register into the same Base,
// so AnswerParameter/SetParameter on the embedding domain type answer
// every index registered at either layer.
type Base struct {
	domain   port.Domain
	values   map[int32]any
	order    []int32 // preserves registration order for RegisteredIndices
	slaved   map[int32]bool
}

// New creates a Base for the given domain with no registered indices yet.
func New(domain port.Domain) *Base {
	return &Base{
		domain: domain,
		values: make(map[int32]any),
		slaved: make(map[int32]bool),
	}
}

// Register adds idx to the set this Base answers, with an initial value.
// propagatesFromMaster marks whether a master port's change to idx should
// flow to a slave port carrying the same index (spec §4.3 master/slave).
func (b *Base) Register(idx int32, initial any, propagatesFromMaster bool) {
	if _, exists := b.values[idx]; !exists {
		b.order = append(b.order, idx)
	}
	b.values[idx] = initial
	b.slaved[idx] = propagatesFromMaster
}

// Domain returns the domain this Base was constructed for.
func (b *Base) Domain() port.Domain {
	return b.domain
}

// RegisteredIndices returns every index this Base layer answers.
func (b *Base) RegisteredIndices() []int32 {
	out := make([]int32, len(b.order))
	copy(out, b.order)
	return out
}

// AnswerParameter returns the stored value for idx, or UnsupportedIndex.
func (b *Base) AnswerParameter(idx int32) (any, error) {
	v, ok := b.values[idx]
	if !ok {
		return nil, omxerr.New(omxerr.UnsupportedIndex)
	}
	return v, nil
}

// SetParameter stores a new value for idx, or UnsupportedIndex if idx was
// never registered.
func (b *Base) SetParameter(idx int32, value any) error {
	if _, ok := b.values[idx]; !ok {
		return omxerr.New(omxerr.UnsupportedIndex)
	}
	b.values[idx] = value
	return nil
}

// CheckTunnelCompat is the default tunnel-compatibility check: domains must
// match exactly. Per DESIGN.md's Open Question resolution, a cross-domain
// tunnel is always rejected — no refinement overrides this with a "compare
// against a sibling domain's constant" shortcut, which is the bug spec §9
// flags in the source this framework is modeled on.
func (b *Base) CheckTunnelCompat(own, peer port.Definition) error {
	if own.Domain != peer.Domain {
		return fmt.Errorf("%w: %s vs %s", omxerr.New(omxerr.PortsNotCompatible), own.Domain, peer.Domain)
	}
	return nil
}

// ApplySlaving updates idx's stored value if it was registered with
// propagatesFromMaster, reporting whether propagation happened.
func (b *Base) ApplySlaving(idx int32, value any) bool {
	if !b.slaved[idx] {
		return false
	}
	if _, ok := b.values[idx]; !ok {
		return false
	}
	b.values[idx] = value
	return true
}
