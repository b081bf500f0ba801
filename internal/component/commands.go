package component

import (
	"omxcore/internal/buffer"
	"omxcore/internal/fsm"
	"omxcore/internal/omxerr"
	"omxcore/internal/port"
)

// SendCommand dispatches one application command (spec §4.2 "FSM
// servant"). It runs on the event-loop goroutine and blocks the caller
// until the command's terminal event has been delivered to the
// EventHandler callback —
// matching spec §8 invariant 1 (exactly one CmdComplete or Error per
// triggering command).
func (r *Runtime) SendCommand(cmd fsm.Command, param int, data any) error {
	var err error
	r.post(func() {
		switch cmd {
		case fsm.CmdStateSet:
			err = r.doStateSet(fsm.State(param))
		case fsm.CmdFlush:
			err = r.doFlush(param)
		case fsm.CmdPortEnable:
			err = r.doPortEnable(param)
		case fsm.CmdPortDisable:
			err = r.doPortDisable(param)
		case fsm.CmdMarkBuffer:
			mark, ok := data.(*buffer.Mark)
			if !ok {
				err = omxerr.New(omxerr.BadParameter)
				return
			}
			err = r.doMarkBuffer(param, mark)
		default:
			err = omxerr.New(omxerr.Undefined)
		}
	})
	return err
}

func (r *Runtime) doStateSet(to fsm.State) error {
	if err := r.fsm.BeginStateSet(to); err != nil {
		r.fireEvent(EventError, int32(omxerr.Of(err)), int32(fsm.CmdStateSet), err)
		return err
	}

	if err := r.applyStateTransition(to); err != nil {
		r.fsm.CancelStateSet()
		r.fireEvent(EventError, int32(omxerr.Of(err)), int32(fsm.CmdStateSet), err)
		return err
	}

	committed, err := r.fsm.CompleteStateSet()
	if err != nil {
		r.fireEvent(EventError, int32(omxerr.Of(err)), int32(fsm.CmdStateSet), err)
		return err
	}
	r.fireEvent(EventCmdComplete, int32(fsm.CmdStateSet), int32(committed), nil)
	return nil
}

// applyStateTransition performs the servant-level work a StateSet implies
// (spec §3 "Lifecycles"): populate ports on the way into Idle, depopulate
// on the way back to Loaded. Ports with no registered supplier allocator
// are assumed already populated by the application via UseBuffer — this
// runtime does not track a separate "awaiting app buffers" sub-state.
func (r *Runtime) applyStateTransition(to fsm.State) error {
	switch to {
	case fsm.StateIdle:
		for _, p := range r.kernel.Ports() {
			if !p.Flags.Has(port.Enabled) || p.IsPopulated() {
				continue
			}
			if !r.kernel.HasAllocator(p.Index) {
				continue
			}
			if err := r.kernel.AllocateAndPopulate(p.Index); err != nil {
				return err
			}
		}
	case fsm.StateLoaded:
		for _, p := range r.kernel.Ports() {
			if p.BufferLen == 0 {
				continue
			}
			if err := r.kernel.Depopulate(p.Index); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runtime) doFlush(portIdx int) error {
	if err := r.fsm.CheckFlushAllowed(); err != nil {
		r.fireEvent(EventError, int32(omxerr.Of(err)), int32(fsm.CmdFlush), err)
		return err
	}
	if _, err := r.kernel.Flush(portIdx); err != nil {
		r.fireEvent(EventError, int32(omxerr.Of(err)), int32(fsm.CmdFlush), err)
		return err
	}
	r.fireEvent(EventCmdComplete, int32(fsm.CmdFlush), int32(portIdx), nil)
	return nil
}

func (r *Runtime) doPortEnable(portIdx int) error {
	if err := r.fsm.CheckPortCommandAllowed(); err != nil {
		r.fireEvent(EventError, int32(omxerr.Of(err)), int32(fsm.CmdPortEnable), err)
		return err
	}
	if err := r.kernel.EnablePort(portIdx); err != nil {
		r.fireEvent(EventError, int32(omxerr.Of(err)), int32(fsm.CmdPortEnable), err)
		return err
	}
	// Enabling a port while Executing must also (re)populate it before the
	// command is considered complete (spec §4.2's FSM-coordinates-with-
	// kernel note).
	if r.fsm.State() == fsm.StateExecuting && r.kernel.HasAllocator(portIdx) {
		if err := r.kernel.AllocateAndPopulate(portIdx); err != nil {
			r.fireEvent(EventError, int32(omxerr.Of(err)), int32(fsm.CmdPortEnable), err)
			return err
		}
	}
	r.fireEvent(EventCmdComplete, int32(fsm.CmdPortEnable), int32(portIdx), nil)
	return nil
}

func (r *Runtime) doPortDisable(portIdx int) error {
	if err := r.fsm.CheckPortCommandAllowed(); err != nil {
		r.fireEvent(EventError, int32(omxerr.Of(err)), int32(fsm.CmdPortDisable), err)
		return err
	}
	if err := r.kernel.DisablePort(portIdx); err != nil {
		r.fireEvent(EventError, int32(omxerr.Of(err)), int32(fsm.CmdPortDisable), err)
		return err
	}
	r.fireEvent(EventCmdComplete, int32(fsm.CmdPortDisable), int32(portIdx), nil)
	return nil
}

func (r *Runtime) doMarkBuffer(portIdx int, mark *buffer.Mark) error {
	if err := r.fsm.CheckMarkBufferAllowed(); err != nil {
		r.fireEvent(EventError, int32(omxerr.Of(err)), int32(fsm.CmdMarkBuffer), err)
		return err
	}
	r.mu.Lock()
	r.pendingMark[portIdx] = mark
	r.mu.Unlock()
	r.fireEvent(EventCmdComplete, int32(fsm.CmdMarkBuffer), int32(portIdx), nil)
	return nil
}

// takePendingMark attaches (and clears) any mark pending on portIdx to h,
// and reports whether one was attached — the caller fires EventMark if so
// (spec §4.6 glossary "Mark").
func (r *Runtime) takePendingMark(portIdx int, h *buffer.Header) bool {
	r.mu.Lock()
	mark, ok := r.pendingMark[portIdx]
	if ok {
		delete(r.pendingMark, portIdx)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	h.Mark = mark
	return true
}
