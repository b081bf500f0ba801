// Package component hosts the Runtime: the per-component servant host
// that serves the standard vtable (spec §6) on a single dedicated
// event-loop goroutine, the reactor spec.md §9 calls for in place of the
// source's coroutine-style loops. The FSM, kernel, and processor servants
// all dispatch on this one goroutine; cross-goroutine calls (another
// component's tunnel peer, the registry loader) reach it only by posting
// a task onto its queue, never by touching its state directly.
package component

import (
	"context"
	"sync"

	"omxcore/internal/buffer"
	"omxcore/internal/fsm"
	"omxcore/internal/kernel"
	"omxcore/internal/omxerr"
	"omxcore/internal/port"
	"omxcore/internal/processor"
)

// Version is a component's reported GetComponentVersion triple.
type Version struct {
	Major, Minor, Revision, Step uint32
}

// Runtime is one component instance: its port table, FSM, kernel, and the
// per-port processors that do the actual media work.
type Runtime struct {
	name    string
	roles   []string
	version Version

	kernel *kernel.Kernel
	fsm    *fsm.Machine

	mu          sync.Mutex
	processors  map[int]processor.Processor
	callbacks   Callbacks
	appData     any
	extensions  map[string]int32
	pendingMark map[int]*buffer.Mark // port index -> mark to attach to next outgoing header

	queue  chan func()
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a Runtime for a component advertising roles over ports,
// starting in Loaded with no callbacks installed.
func New(name string, version Version, roles []string, ports []*port.Port) *Runtime {
	return &Runtime{
		name:        name,
		roles:       roles,
		version:     version,
		kernel:      kernel.New(ports),
		fsm:         fsm.New(),
		processors:  make(map[int]processor.Processor),
		extensions:  make(map[string]int32),
		pendingMark: make(map[int]*buffer.Mark),
		queue:       make(chan func()),
	}
}

// Name reports the component's registered name.
func (r *Runtime) Name() string { return r.name }

// Kernel exposes the kernel servant for tunnel negotiation (internal/tunnel
// needs direct port-table access that isn't worth routing through the
// single-goroutine queue, since tunnel setup itself runs with both sides'
// runtimes already Loaded and single-threaded by the core loader).
func (r *Runtime) Kernel() *kernel.Kernel { return r.kernel }

// SetProcessor installs the role-specific worker for a port index. It is
// safe to call before or after Start; the processor map is mutex-guarded.
func (r *Runtime) SetProcessor(portIdx int, p processor.Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[portIdx] = p
}

// RegisterExtensionIndex records a vendor extension name -> index mapping
// (spec §6 GetExtensionIndex).
func (r *Runtime) RegisterExtensionIndex(name string, idx int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extensions[name] = idx
}

// Start launches the event-loop goroutine. Grounded on
// machine/convergence.Loop's Start/Stop goroutine-lifecycle shape: a
// context.CancelFunc plus a done channel closed on exit.
func (r *Runtime) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		r.run(ctx)
	}()
}

// Stop cancels the event loop and waits for it to drain.
func (r *Runtime) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

func (r *Runtime) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-r.queue:
			task()
		}
	}
}

// post runs fn on the event-loop goroutine and blocks until it returns —
// the Go rendering of spec.md §4.1's "post a tagged message, block on a
// semaphore" pattern, reused here per-component instead of only at the
// registry level.
func (r *Runtime) post(fn func()) {
	done := make(chan struct{})
	r.queue <- func() {
		fn()
		close(done)
	}
	<-done
}

func (r *Runtime) fireEvent(event Event, data1, data2 int32, eventData any) {
	r.mu.Lock()
	cb := r.callbacks.EventHandler
	appData := r.appData
	r.mu.Unlock()
	if cb != nil {
		cb(appData, event, data1, data2, eventData)
	}
}

// GetComponentVersion returns the component's reported version triple
// (spec §6).
func (r *Runtime) GetComponentVersion() (Version, error) {
	return r.version, nil
}

// GetState returns the current stable FSM state.
func (r *Runtime) GetState() fsm.State {
	return r.fsm.State()
}

// SetCallbacks installs the application's callback vtable (spec §6).
func (r *Runtime) SetCallbacks(cb Callbacks, appData any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = cb
	r.appData = appData
	return nil
}

// ComponentRoleEnum enumerates this component's advertised roles,
// returning NoMore once index reaches len(roles) (spec §4.1 probing and
// §8 scenario S2).
func (r *Runtime) ComponentRoleEnum(index int) (string, error) {
	if index < 0 || index >= len(r.roles) {
		return "", omxerr.New(omxerr.NoMore)
	}
	return r.roles[index], nil
}

// GetExtensionIndex resolves a vendor extension name to its index (spec §6).
func (r *Runtime) GetExtensionIndex(name string) (int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.extensions[name]
	if !ok {
		return 0, omxerr.New(omxerr.UnsupportedIndex)
	}
	return idx, nil
}

// GetParameter routes to the target port's (or the configuration
// pseudo-port's, index kernel.ConfigPortIndex) registered Behaviour (spec
// §4.3).
func (r *Runtime) GetParameter(portIdx int, idx int32) (any, error) {
	var v any
	var err error
	r.post(func() {
		p, e := r.kernel.Port(portIdx)
		if e != nil {
			err = e
			return
		}
		v, err = p.Behaviour.AnswerParameter(idx)
	})
	return v, err
}

// SetParameter is GetParameter's write-side counterpart.
func (r *Runtime) SetParameter(portIdx int, idx int32, value any) error {
	var err error
	r.post(func() {
		p, e := r.kernel.Port(portIdx)
		if e != nil {
			err = e
			return
		}
		err = p.Behaviour.SetParameter(idx, value)
		if err == nil {
			r.applySlaving(p, idx, value)
		}
	})
	return err
}

// applySlaving propagates a changed master-port field to any port
// declaring portIdx as its master (spec §4.3 "Master/slave relation").
// Must be called with work already running on the event-loop goroutine.
func (r *Runtime) applySlaving(master *port.Port, idx int32, value any) {
	for _, p := range r.kernel.Ports() {
		if !p.Def.HasMaster || p.Def.MasterIndex != master.Index {
			continue
		}
		p.Behaviour.ApplySlaving(idx, value)
	}
}

// GetConfig and SetConfig address the same per-port registered-index
// space as GetParameter/SetParameter (spec §6 keeps Config and Parameter
// as parallel calls into the same index namespace; core does not need a
// second registration table to honour that).
func (r *Runtime) GetConfig(portIdx int, idx int32) (any, error) {
	return r.GetParameter(portIdx, idx)
}

func (r *Runtime) SetConfig(portIdx int, idx int32, value any) error {
	return r.SetParameter(portIdx, idx, value)
}

// UseEGLImage is stubbed: no GPU concern in this core (spec §7.7).
func (r *Runtime) UseEGLImage(portIdx int, appPrivate any, eglImage any) (*buffer.Header, error) {
	return nil, omxerr.New(omxerr.UnsupportedSetting).WithPort(portIdx)
}
