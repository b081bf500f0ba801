// Package processor implements the processor servant (spec §4.2): the
// role-specific worker that actually moves bytes between a buffer header
// and whatever the component's plugin logic does with them. Core ships no
// codec or transport code of its own — only the narrow interface a role
// helper implements, plus the two concrete helpers spec.md's implementation
// budget calls out (processor/urlxfer, processor/metadatastore).
package processor

import (
	"context"

	"omxcore/internal/buffer"
)

// Ports is the narrow slice of kernel.Kernel a Processor needs: claiming
// and releasing the headers it works on. Defined here rather than
// importing *kernel.Kernel directly so role helpers can be unit tested
// against a fake.
type Ports interface {
	ClaimBuffer(portIdx int) (*buffer.Header, error)
	ReleaseBuffer(portIdx int, h *buffer.Header)
}

// Processor is the role-specific worker invoked by the component runtime
// whenever a buffer becomes available to process on one of its ports.
type Processor interface {
	// Process does one unit of work: claim what it needs from ports,
	// transform/move bytes, release headers back. It returns when there is
	// no more work to do right now (not an error — just idle) or on a real
	// failure.
	Process(ctx context.Context, ports Ports) error
}

// Func adapts a plain function to the Processor interface, the same
// handler-as-function idiom the teacher uses for its small role interfaces.
type Func func(ctx context.Context, ports Ports) error

func (f Func) Process(ctx context.Context, ports Ports) error { return f(ctx, ports) }
