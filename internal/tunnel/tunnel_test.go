package tunnel_test

import (
	"context"
	"errors"
	"testing"

	"omxcore/internal/component"
	"omxcore/internal/omxerr"
	"omxcore/internal/port"
	"omxcore/internal/port/pcm"
	"omxcore/internal/tunnel"
)

func newPortRuntime(name string, dir port.Direction, domain port.Domain, pref port.SupplierPreference) *component.Runtime {
	def := port.Definition{
		Domain:             domain,
		Direction:          dir,
		MinBufferCount:     1,
		ActualBufferCount:  1,
		MinBufferSize:      64,
		SupplierPreference: pref,
	}
	p := port.New(0, def, pcm.New())
	r := component.New(name, component.Version{Major: 1}, nil, []*port.Port{p})
	r.Start(context.Background())
	return r
}

func TestSetupSucceedsAndMarksPortsTunneled(t *testing.T) {
	out := newPortRuntime("src", port.DirOutput, port.DomainAudio, port.Unspecified)
	in := newPortRuntime("sink", port.DirInput, port.DomainAudio, port.Unspecified)
	defer out.Stop()
	defer in.Stop()

	tn, err := tunnel.Setup(context.Background(), out, 0, in, 0)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if tn.Supplier != port.SupplyOutput {
		t.Fatalf("Supplier = %s, want SupplyOutput (both Unspecified default)", tn.Supplier)
	}

	outPort, _ := out.Kernel().Port(0)
	inPort, _ := in.Kernel().Port(0)
	if !outPort.Flags.Has(port.Tunneled) || !inPort.Flags.Has(port.Tunneled) {
		t.Fatal("expected both ports marked Tunneled")
	}
}

func TestSupplierElectionDisagreementPinnedByS4(t *testing.T) {
	out := newPortRuntime("src", port.DirOutput, port.DomainAudio, port.SupplyInput)
	in := newPortRuntime("sink", port.DirInput, port.DomainAudio, port.SupplyOutput)
	defer out.Stop()
	defer in.Stop()

	tn, err := tunnel.Setup(context.Background(), out, 0, in, 0)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if tn.Supplier != port.SupplyInput {
		t.Fatalf("Supplier = %s, want SupplyInput (S4 worked example)", tn.Supplier)
	}
}

// Cross-domain tunnels are always rejected — see DESIGN.md's Open
// Question decisions ("Cross-domain tunnel-compat bug").
func TestSetupRejectsCrossDomainTunnel(t *testing.T) {
	out := newPortRuntime("src", port.DirOutput, port.DomainVideo, port.Unspecified)
	in := newPortRuntime("sink", port.DirInput, port.DomainAudio, port.Unspecified)
	defer out.Stop()
	defer in.Stop()

	_, err := tunnel.Setup(context.Background(), out, 0, in, 0)
	if !errors.Is(err, omxerr.ErrPortsNotCompatible) {
		t.Fatalf("err = %v, want PortsNotCompatible", err)
	}

	outPort, _ := out.Kernel().Port(0)
	if outPort.Flags.Has(port.Tunneled) {
		t.Fatal("output port should have been rolled back, not left Tunneled")
	}
}

func TestTeardownUntunnelsBothSides(t *testing.T) {
	out := newPortRuntime("src", port.DirOutput, port.DomainAudio, port.Unspecified)
	in := newPortRuntime("sink", port.DirInput, port.DomainAudio, port.Unspecified)
	defer out.Stop()
	defer in.Stop()

	tn, err := tunnel.Setup(context.Background(), out, 0, in, 0)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	if err := tunnel.Teardown(context.Background(), tn); err != nil {
		t.Fatalf("Teardown: %v", err)
	}

	outPort, _ := out.Kernel().Port(0)
	inPort, _ := in.Kernel().Port(0)
	if outPort.Flags.Has(port.Tunneled) || inPort.Flags.Has(port.Tunneled) {
		t.Fatal("expected both ports untunneled after Teardown")
	}
}
