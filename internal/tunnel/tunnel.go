// Package tunnel drives the two-sided ComponentTunnelRequest negotiation
// between an output port of one component and an input port of another
// (spec §4.5), and the teardown counterpart. Structurally this is the
// same ordered-start/rollback-on-error shape as the teacher's
// machine/mesh.Mesh.Up/Destroy: negotiate both sides, roll back the first
// side if the second fails, and accumulate (never short-circuit) errors
// on teardown.
package tunnel

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"omxcore/internal/component"
	"omxcore/internal/port"
)

// Tunnel is the established binding between an output port of one
// component and an input port of another.
type Tunnel struct {
	Out      *component.Runtime
	OutPort  int
	In       *component.Runtime
	InPort   int
	Supplier port.SupplierPreference
	Status   *Status
}

// Setup negotiates a tunnel between outRuntime's outPort (an output port)
// and inRuntime's inPort (an input port), following spec §4.5's protocol
// exactly: propose on the output side, elect the supplier on the input
// side, commit the election back to the output side. Any failure rolls
// the output side back to untunnelled (a ComponentTunnelRequest with a
// nil setup).
func Setup(ctx context.Context, outRuntime *component.Runtime, outPort int, inRuntime *component.Runtime, inPort int) (*Tunnel, error) {
	outDef, err := portDef(outRuntime, outPort)
	if err != nil {
		return nil, fmt.Errorf("read output port definition: %w", err)
	}
	inDef, err := portDef(inRuntime, inPort)
	if err != nil {
		return nil, fmt.Errorf("read input port definition: %w", err)
	}

	outSetup := &component.TunnelSetup{PeerDef: inDef}
	if err := outRuntime.ComponentTunnelRequest(outPort, inRuntime.Name(), inPort, outSetup); err != nil {
		return nil, fmt.Errorf("propose tunnel on output side: %w", err)
	}

	inSetup := &component.TunnelSetup{PeerDef: outDef}
	if err := inRuntime.ComponentTunnelRequest(inPort, outRuntime.Name(), outPort, inSetup); err != nil {
		rollback(outRuntime, outPort, inRuntime.Name(), inPort)
		return nil, fmt.Errorf("negotiate tunnel on input side: %w", err)
	}

	supplier := electSupplier(outSetup.Supplier, inSetup.Supplier)

	commit := &component.TunnelSetup{PeerDef: inDef, Supplier: supplier}
	if err := outRuntime.ComponentTunnelRequest(outPort, inRuntime.Name(), inPort, commit); err != nil {
		rollback(outRuntime, outPort, inRuntime.Name(), inPort)
		return nil, fmt.Errorf("commit supplier election on output side: %w", err)
	}

	return &Tunnel{
		Out: outRuntime, OutPort: outPort,
		In: inRuntime, InPort: inPort,
		Supplier: supplier,
		Status:   &Status{},
	}, nil
}

// Teardown issues the two null-peer/null-setup requests spec §4.5
// describes, accumulating (not stopping on) errors from either side —
// the same accumulate-don't-short-circuit shape as mesh.Mesh.Destroy.
func Teardown(ctx context.Context, t *Tunnel) error {
	var result *multierror.Error
	if err := t.Out.ComponentTunnelRequest(t.OutPort, "", -1, nil); err != nil {
		result = multierror.Append(result, fmt.Errorf("teardown output side: %w", err))
	}
	if err := t.In.ComponentTunnelRequest(t.InPort, "", -1, nil); err != nil {
		result = multierror.Append(result, fmt.Errorf("teardown input side: %w", err))
	}
	return result.ErrorOrNil()
}

func rollback(outRuntime *component.Runtime, outPort int, peerName string, peerPort int) {
	_ = outRuntime.ComponentTunnelRequest(outPort, peerName, peerPort, nil)
}

func portDef(r *component.Runtime, idx int) (port.Definition, error) {
	p, err := r.Kernel().Port(idx)
	if err != nil {
		return port.Definition{}, err
	}
	return p.Def, nil
}

// electSupplier implements spec §4.5's election rule exactly as worked
// example S4 pins it (see DESIGN.md's Open Question decisions): same
// preference on both sides wins outright; an Unspecified side defers to
// the other; on an outright SupplyInput/SupplyOutput disagreement,
// SupplyInput wins; if both are Unspecified, the adopted default is
// "output supplies" (spec §9).
func electSupplier(outPref, inPref port.SupplierPreference) port.SupplierPreference {
	if outPref == inPref {
		if outPref == port.Unspecified {
			return port.SupplyOutput
		}
		return outPref
	}
	if outPref == port.Unspecified {
		return inPref
	}
	if inPref == port.Unspecified {
		return outPref
	}
	return port.SupplyInput
}
