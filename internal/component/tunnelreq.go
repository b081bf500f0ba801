package component

import (
	"omxcore/internal/port"
)

// TunnelSetup is the struct the core fills in and reads back across the
// two-sided ComponentTunnelRequest negotiation (spec §4.5, §6). A nil
// *TunnelSetup argument to ComponentTunnelRequest means "tear down",
// mirroring the vtable's null-setup teardown convention.
type TunnelSetup struct {
	// PeerDef is the proposed peer port's definition, supplied by the
	// orchestrator (internal/tunnel) so this side can run
	// Behaviour.CheckTunnelCompat before agreeing to anything.
	PeerDef port.Definition
	// Supplier is round-tripped: on the first call to each side it is the
	// zero value and this side fills in its own preference; on the
	// follow-up "commit" call to the output side, the orchestrator has
	// already resolved the election and passes the final answer in.
	Supplier port.SupplierPreference
}

// ComponentTunnelRequest is the vtable operation every component
// implements (spec §6): propose, accept/reject, and commit a tunnel on
// portIdx with a peer's port. internal/tunnel.Setup drives this twice per
// side (propose then commit); internal/tunnel.Teardown drives it once per
// side with setup == nil.
func (r *Runtime) ComponentTunnelRequest(portIdx int, peerName string, peerPort int, setup *TunnelSetup) error {
	var err error
	r.post(func() {
		p, e := r.kernel.Port(portIdx)
		if e != nil {
			err = e
			return
		}

		if setup == nil {
			p.Flags = p.Flags.Clear(port.Tunneled)
			p.PeerIndex = -1
			return
		}

		if e := p.Behaviour.CheckTunnelCompat(p.Def, setup.PeerDef); e != nil {
			err = e
			return
		}

		p.PeerIndex = peerPort
		p.Flags = p.Flags.Set(port.Tunneled)
		if setup.Supplier == port.Unspecified {
			setup.Supplier = p.Def.SupplierPreference
		} else {
			p.Def.SupplierPreference = setup.Supplier
			if setup.Supplier == port.SupplyOutput && p.Def.Direction == port.DirOutput ||
				setup.Supplier == port.SupplyInput && p.Def.Direction == port.DirInput {
				p.Flags = p.Flags.Set(port.BufferSupplier)
			} else {
				p.Flags = p.Flags.Clear(port.BufferSupplier)
			}
		}
	})
	return err
}
