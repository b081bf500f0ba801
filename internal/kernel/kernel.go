// Package kernel implements the kernel servant (spec §4.2): owns the port
// table, the buffer headers currently held locally, per-port registered
// parameter indices, and flush/populate/depopulate/claim/release
// operations. It has no notion of component state (that's the FSM's job)
// and no notion of media semantics (that's the processor's job) — it is
// pure bookkeeping, grounded on the teacher's "a struct owns its
// sub-resources behind small interfaces" shape (daemon/server.go,
// machine/mesh.Mesh).
package kernel

import (
	"fmt"
	"sync"

	"omxcore/internal/buffer"
	"omxcore/internal/omxerr"
	"omxcore/internal/port"
)

// ConfigPortIndex is the pseudo-port index for whole-component parameters
// that lack a real port index (spec §2: "a configuration port").
const ConfigPortIndex = -1

// Allocator allocates a buffer payload of the given size for a supplier
// port (spec §4.5: "Supplier responsibilities: allocate buffer payloads").
// Components that are the tunnel/app supplier on a port provide one.
type Allocator interface {
	Allocate(size int) ([]byte, error)
}

// Kernel is the port/buffer/command servant for one component.
type Kernel struct {
	mu         sync.Mutex
	ports      []*port.Port
	headers    map[int][]*buffer.Header // port index -> held headers
	alloc      map[int]Allocator        // port index -> allocator, if supplier
	configPort *port.Port               // pseudo-port at ConfigPortIndex, no buffers
}

// New constructs a Kernel with the given ports, indexed by their own Index
// field (which must be 0..len(ports)-1, contiguous, per spec §4.3).
func New(ports []*port.Port) *Kernel {
	k := &Kernel{
		ports:   ports,
		headers: make(map[int][]*buffer.Header),
		alloc:   make(map[int]Allocator),
	}
	return k
}

// SetConfigBehaviour installs the Behaviour answering the configuration
// pseudo-port's indices (whole-component parameters with no port index,
// spec §2). Must be called before the component is started.
func (k *Kernel) SetConfigBehaviour(b port.Behaviour) {
	k.configPort = &port.Port{Index: ConfigPortIndex, Behaviour: b, PeerIndex: -1}
}

// Port returns the port at idx, BadPortIndex if out of range, or the
// configuration pseudo-port when idx == ConfigPortIndex and one has been
// installed via SetConfigBehaviour.
func (k *Kernel) Port(idx int) (*port.Port, error) {
	if idx == ConfigPortIndex {
		if k.configPort == nil {
			return nil, omxerr.New(omxerr.UnsupportedIndex).WithPort(idx)
		}
		return k.configPort, nil
	}
	if idx < 0 || idx >= len(k.ports) {
		return nil, omxerr.New(omxerr.BadPortIndex).WithPort(idx)
	}
	return k.ports[idx], nil
}

// Ports returns the full port table (read-only use expected).
func (k *Kernel) Ports() []*port.Port {
	return k.ports
}

// SetAllocator registers the payload allocator used when this port is the
// tunnel/app-facing buffer supplier.
func (k *Kernel) SetAllocator(idx int, a Allocator) error {
	if _, err := k.Port(idx); err != nil {
		return err
	}
	k.alloc[idx] = a
	return nil
}

// Populate wraps each given payload in a new header held by port idx
// (spec §3 "Lifecycles"). It allocates nothing itself: callers pass
// payloads from a registered Allocator or from UseBuffer. It returns
// BadParameter if the port would then hold more than ActualBufferCount.
func (k *Kernel) Populate(idx int, payloads [][]byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	p, err := k.Port(idx)
	if err != nil {
		return err
	}

	if len(k.headers[idx])+len(payloads) > p.Def.ActualBufferCount {
		return fmt.Errorf("%w: populate would exceed nBufferCountActual=%d",
			omxerr.New(omxerr.BadParameter).WithPort(idx), p.Def.ActualBufferCount)
	}

	for _, payload := range payloads {
		h := buffer.NewHeader(payload, idx, idx)
		h.Claim(buffer.OwnerKernel)
		k.headers[idx] = append(k.headers[idx], h)
	}
	p.BufferLen = len(k.headers[idx])
	if p.IsPopulated() {
		p.Flags = p.Flags.Set(port.Populated)
	}
	return nil
}

// AllocateAndPopulate is the supplier-side population path: it calls the
// registered Allocator n times (n = remaining buffers to reach
// ActualBufferCount) and populates with the results.
func (k *Kernel) AllocateAndPopulate(idx int) error {
	k.mu.Lock()
	p, err := k.Port(idx)
	if err != nil {
		k.mu.Unlock()
		return err
	}
	alloc, ok := k.alloc[idx]
	remaining := p.Def.ActualBufferCount - len(k.headers[idx])
	k.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: no allocator registered for supplier port",
			omxerr.New(omxerr.InsufficientResources).WithPort(idx))
	}

	payloads := make([][]byte, 0, remaining)
	for i := 0; i < remaining; i++ {
		buf, err := alloc.Allocate(p.Def.MinBufferSize)
		if err != nil {
			return fmt.Errorf("%w: %v", omxerr.New(omxerr.InsufficientResources).WithPort(idx), err)
		}
		payloads = append(payloads, buf)
	}
	return k.Populate(idx, payloads)
}

// Depopulate releases every buffer header held on idx back to zero (spec
// §3: "destroyed symmetrically during Idle→Loaded or port-disable").
func (k *Kernel) Depopulate(idx int) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	p, err := k.Port(idx)
	if err != nil {
		return err
	}
	for _, h := range k.headers[idx] {
		h.Release()
	}
	k.headers[idx] = nil
	p.BufferLen = 0
	p.Flags = p.Flags.Clear(port.Populated)
	return nil
}

// Flush returns every in-flight header on idx to its owning side (spec §4.2,
// scenario S5): for the kernel's own purposes this simply means every
// header the kernel currently holds is accounted for and none are lost or
// duplicated. It does not itself talk to the processor; the FSM drives
// Flush as part of a Flush command and relies on the processor having
// already released any headers it was working on back to the kernel.
func (k *Kernel) Flush(idx int) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	p, err := k.Port(idx)
	if err != nil {
		return 0, err
	}
	p.Flags = p.Flags.Set(port.FlushInProgress)
	defer func() { p.Flags = p.Flags.Clear(port.FlushInProgress) }()

	n := len(k.headers[idx])
	for _, h := range k.headers[idx] {
		h.Filled = 0
		h.Flags = 0
	}
	return n, nil
}

// EnablePort marks idx enabled. Population is the caller's (FSM's)
// responsibility once this returns — enabling a port while Executing
// requires the FSM to also populate it before declaring the command
// complete (spec §4.2 FSM servant).
func (k *Kernel) EnablePort(idx int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, err := k.Port(idx)
	if err != nil {
		return err
	}
	p.Flags = p.Flags.Set(port.Enabled)
	p.Flags = p.Flags.Clear(port.BeingEnabled)
	return nil
}

// DisablePort marks idx disabled. Disabled ports carry no buffers (spec §3).
func (k *Kernel) DisablePort(idx int) error {
	if err := k.Depopulate(idx); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	p, err := k.Port(idx)
	if err != nil {
		return err
	}
	p.Flags = p.Flags.Clear(port.Enabled)
	p.Flags = p.Flags.Clear(port.BeingDisabled)
	return nil
}

// ClaimBuffer hands the kernel's next held header on idx to the processor
// (tiz_krn_claim_buffer, spec §4.2 "Processor servant").
func (k *Kernel) ClaimBuffer(idx int) (*buffer.Header, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	hs := k.headers[idx]
	if len(hs) == 0 {
		return nil, fmt.Errorf("%w: no buffer available", omxerr.New(omxerr.InsufficientResources).WithPort(idx))
	}
	h := hs[0]
	k.headers[idx] = hs[1:]
	h.Release()
	return h, nil
}

// ReleaseBuffer returns a header the processor is done with back to the
// kernel's pool for idx (tiz_krn_release_buffer). The kernel itself does
// not decide where the header goes next (app vs tunnel peer) — that
// routing lives in the component runtime, which calls ReleaseBuffer only
// after deciding locally-held is the right destination.
func (k *Kernel) ReleaseBuffer(idx int, h *buffer.Header) {
	k.mu.Lock()
	defer k.mu.Unlock()
	h.Claim(buffer.OwnerKernel)
	k.headers[idx] = append(k.headers[idx], h)
}

// HasAllocator reports whether idx has a registered supplier Allocator.
func (k *Kernel) HasAllocator(idx int) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.alloc[idx]
	return ok
}

// HeldCount returns the number of buffer headers currently held on idx —
// the basis for spec §8 invariant 3 (Loaded ⇒ 0, Idle+ ⇒ ActualBufferCount).
func (k *Kernel) HeldCount(idx int) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.headers[idx])
}
