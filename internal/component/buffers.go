package component

import (
	"context"
	"fmt"

	"omxcore/internal/buffer"
	"omxcore/internal/omxerr"
)

// UseBuffer registers an externally (application-)allocated payload on
// portIdx and hands the resulting header to the application, owned by
// OwnerApplication (spec §3 "Lifecycles", path (b)).
func (r *Runtime) UseBuffer(portIdx int, appPrivate any, payload []byte) (*buffer.Header, error) {
	var h *buffer.Header
	var err error
	r.post(func() {
		if e := r.kernel.Populate(portIdx, [][]byte{payload}); e != nil {
			err = e
			return
		}
		hh, e := r.kernel.ClaimBuffer(portIdx)
		if e != nil {
			err = e
			return
		}
		hh.AppPrivate = appPrivate
		hh.Claim(buffer.OwnerApplication)
		h = hh
	})
	return h, err
}

// AllocateBuffer allocates a fresh payload of sizeBytes on portIdx and
// hands the resulting header to the application (spec §3 "Lifecycles",
// path (a), app-initiated rather than tunnel-supplier-initiated).
func (r *Runtime) AllocateBuffer(portIdx int, appPrivate any, sizeBytes int) (*buffer.Header, error) {
	var h *buffer.Header
	var err error
	r.post(func() {
		if e := r.kernel.Populate(portIdx, [][]byte{make([]byte, sizeBytes)}); e != nil {
			err = e
			return
		}
		hh, e := r.kernel.ClaimBuffer(portIdx)
		if e != nil {
			err = e
			return
		}
		hh.AppPrivate = appPrivate
		hh.Claim(buffer.OwnerApplication)
		h = hh
	})
	return h, err
}

// FreeBuffer releases a single header back out of existence (spec §3
// "destroyed symmetrically during Idle→Loaded or port-disable" — this is
// the single-header analogue of Depopulate, used when the application
// frees buffers one at a time rather than via a full state transition).
func (r *Runtime) FreeBuffer(portIdx int, h *buffer.Header) error {
	var err error
	r.post(func() {
		p, e := r.kernel.Port(portIdx)
		if e != nil {
			err = e
			return
		}
		h.Release()
		if p.BufferLen > 0 {
			p.BufferLen--
		}
	})
	return err
}

// EmptyThisBuffer hands a filled input buffer to the component (spec §6):
// enqueues it for the processor and returns immediately; completion is
// reported later via EmptyBufferDone on this component's own goroutine
// (spec §5 "Suspension points").
func (r *Runtime) EmptyThisBuffer(portIdx int, h *buffer.Header) error {
	var err error
	r.post(func() {
		h.Claim(buffer.OwnerKernel)
		r.kernel.ReleaseBuffer(portIdx, h)
		err = r.drive(portIdx, true)
	})
	if err != nil {
		return err
	}
	return nil
}

// FillThisBuffer hands an empty output buffer to the component to be
// filled (spec §6), same asynchronous shape as EmptyThisBuffer.
func (r *Runtime) FillThisBuffer(portIdx int, h *buffer.Header) error {
	var err error
	r.post(func() {
		h.Claim(buffer.OwnerKernel)
		r.kernel.ReleaseBuffer(portIdx, h)
		err = r.drive(portIdx, false)
	})
	if err != nil {
		return err
	}
	return nil
}

// drive runs the processor registered on portIdx once and reports the
// resulting header back to the application via the matching *BufferDone
// callback (isEmpty selects EmptyBufferDone vs FillBufferDone, matching
// which vtable call this round of work originated from). Must run on the
// event-loop goroutine. Real components drive processors from readiness
// notifications (spec §4.2's reactor); this runtime drives synchronously
// on buffer arrival, which is observably equivalent for a single-threaded
// servant and keeps the demo/test surface small.
func (r *Runtime) drive(portIdx int, isEmpty bool) error {
	r.mu.Lock()
	proc := r.processors[portIdx]
	r.mu.Unlock()
	if proc == nil {
		return nil
	}

	if err := proc.Process(context.Background(), r.kernel); err != nil {
		r.fireEvent(EventError, int32(omxerr.Of(err)), int32(portIdx), err)
		return fmt.Errorf("processor on port %d: %w", portIdx, err)
	}

	h, err := r.kernel.ClaimBuffer(portIdx)
	if err != nil {
		// Nothing produced yet this round — not an error, just idle.
		return nil
	}
	r.takePendingMark(portIdx, h)
	if h.Mark != nil {
		r.fireEvent(EventMark, int32(portIdx), 0, h.Mark)
	}
	if h.IsEOSTerminal() {
		r.fireEvent(EventBufferFlag, int32(portIdx), int32(h.Flags), nil)
	}

	r.mu.Lock()
	cb := r.callbacks
	appData := r.appData
	r.mu.Unlock()

	h.Claim(buffer.OwnerApplication)
	if isEmpty {
		if cb.EmptyBufferDone != nil {
			cb.EmptyBufferDone(appData, h)
		}
	} else if cb.FillBufferDone != nil {
		cb.FillBufferDone(appData, h)
	}
	return nil
}

// ComponentDeInit tears the component down: stops the event loop and
// depopulates every port (spec §3 "On FreeHandle the servants tear down
// in reverse order"). Callers must have torn down any active tunnels on
// this component's ports first (spec §8 boundary behaviour).
func (r *Runtime) ComponentDeInit() error {
	var err error
	r.post(func() {
		for _, p := range r.kernel.Ports() {
			if p.BufferLen == 0 {
				continue
			}
			if e := r.kernel.Depopulate(p.Index); e != nil && err == nil {
				err = e
			}
		}
	})
	r.Stop()
	return err
}
