// Package urlxfer defines the byte-range puller interface a source
// component's processor role uses to fill output buffers from a content
// URI (spec §7's ContentURIError, spec.md §2's "URL transfer" role
// helper). Core defines the Puller interface and the Worker processor that
// drives one; no concrete Puller ships here, and a real HTTP or file puller
// ships in a plugin, not in core — network transport is explicitly out of
// core's scope.
package urlxfer

import (
	"context"
	"fmt"
	"io"

	"omxcore/internal/processor"
)

// Puller reads a byte range from a content URI, the shape a plugin's real
// HTTP Range-request or os.File-backed puller implements.
type Puller interface {
	// ReadRange reads up to len(p) bytes starting at offset, returning the
	// number of bytes read and io.EOF once the source is exhausted.
	ReadRange(ctx context.Context, offset int64, p []byte) (n int, err error)
	// Size reports the total content length, or -1 if unknown (chunked
	// transfer, live stream).
	Size(ctx context.Context) (int64, error)
}

// Worker is a processor.Processor that fills the output port (index 0) by
// repeatedly calling a Puller, advancing its own read cursor. The package
// tests drive it with an in-memory Puller; cmd/omxctl's demo graph does not
// use it. Real source components supply their own Puller, typically backed
// by net/http or os.
type Worker struct {
	Puller     Puller
	OutputPort int
	offset     int64
}

// NewWorker returns a Worker reading from p onto outputPort, starting at
// the beginning of the content.
func NewWorker(p Puller, outputPort int) *Worker {
	return &Worker{Puller: p, OutputPort: outputPort}
}

// Process claims one output buffer, fills it from the current read
// cursor, and releases it back. io.EOF from the puller is translated to a
// nil (idle, nothing more to read right now) rather than propagated —
// callers drive EOS flagging at the component-runtime level once the
// cursor reaches Size().
func (w *Worker) Process(ctx context.Context, ports processor.Ports) error {
	h, err := ports.ClaimBuffer(w.OutputPort)
	if err != nil {
		return fmt.Errorf("claim output buffer: %w", err)
	}
	defer ports.ReleaseBuffer(w.OutputPort, h)

	n, err := w.Puller.ReadRange(ctx, w.offset, h.Payload[:h.Alloc])
	h.Filled = n
	h.Offset = 0
	w.offset += int64(n)
	if err != nil && err != io.EOF {
		return fmt.Errorf("read range at offset %d: %w", w.offset, err)
	}
	return nil
}
