package tunnel_test

import (
	"context"
	"sync"
	"testing"

	"omxcore/internal/buffer"
	"omxcore/internal/component"
	"omxcore/internal/fsm"
	"omxcore/internal/port"
	"omxcore/internal/port/pcm"
	"omxcore/internal/processor"
	"omxcore/internal/tunnel"
)

type constAllocator struct{}

func (constAllocator) Allocate(size int) ([]byte, error) { return make([]byte, size), nil }

func newPassthroughRuntime(name string) *component.Runtime {
	def := port.Definition{
		Domain: port.DomainAudio, Direction: port.DirInput,
		MinBufferCount: 1, ActualBufferCount: 1, MinBufferSize: 64,
	}
	p := port.New(0, def, pcm.New())
	r := component.New(name, component.Version{Major: 1}, nil, []*port.Port{p})
	r.Start(context.Background())
	return r
}

// TestScenarioS3LinearGraphRun mirrors spec.md's worked example S3: three
// components tunnelled linearly (source -> decoder -> renderer). The
// decoder is a single component with two ports (0 input, 1 output), each
// side's *BufferDone callback driving the next hop's Fill/EmptyThisBuffer
// — there is no central coordinator (spec §4.6), exactly as these
// callbacks are wired below. After all three transition
// Loaded->Idle->Executing and the source emits its one EOS-bearing
// buffer, the final event observed at the application is exactly one
// BufferFlag at the renderer's input port.
func TestScenarioS3LinearGraphRun(t *testing.T) {
	source := newPassthroughRuntime("source")
	// source's one port is actually an output; rebuild with the right
	// direction (newPassthroughRuntime always builds a single input port).
	source.Stop()
	source = buildRuntime("source", []port.Definition{
		{Domain: port.DomainAudio, Direction: port.DirOutput, MinBufferCount: 1, ActualBufferCount: 1, MinBufferSize: 64},
	})
	decoder := buildRuntime("decoder", []port.Definition{
		{Domain: port.DomainAudio, Direction: port.DirInput, MinBufferCount: 1, ActualBufferCount: 1, MinBufferSize: 64},
		{Domain: port.DomainAudio, Direction: port.DirOutput, MinBufferCount: 1, ActualBufferCount: 1, MinBufferSize: 64},
	})
	renderer := buildRuntime("renderer", []port.Definition{
		{Domain: port.DomainAudio, Direction: port.DirInput, MinBufferCount: 1, ActualBufferCount: 1, MinBufferSize: 64},
	})
	defer source.Stop()
	defer decoder.Stop()
	defer renderer.Stop()

	if err := source.Kernel().SetAllocator(0, constAllocator{}); err != nil {
		t.Fatalf("SetAllocator(source): %v", err)
	}
	if err := decoder.Kernel().SetAllocator(1, constAllocator{}); err != nil {
		t.Fatalf("SetAllocator(decoder,1): %v", err)
	}

	emitted := false
	source.SetProcessor(0, processor.Func(func(ctx context.Context, ports processor.Ports) error {
		h, err := ports.ClaimBuffer(0)
		if err != nil {
			return err
		}
		if !emitted {
			n := copy(h.Payload, []byte("payload"))
			h.Filled = n
			h.Flags = buffer.EOS
			emitted = true
		}
		ports.ReleaseBuffer(0, h)
		return nil
	}))

	var stagedMu sync.Mutex
	var staged *buffer.Header
	decoder.SetProcessor(0, processor.Func(func(ctx context.Context, ports processor.Ports) error {
		h, err := ports.ClaimBuffer(0)
		if err != nil {
			return err
		}
		stagedMu.Lock()
		staged = h
		stagedMu.Unlock()
		return nil
	}))
	decoder.SetProcessor(1, processor.Func(func(ctx context.Context, ports processor.Ports) error {
		empty, err := ports.ClaimBuffer(1)
		if err != nil {
			return err
		}
		stagedMu.Lock()
		h := staged
		staged = nil
		stagedMu.Unlock()
		if h != nil {
			n := copy(empty.Payload, h.Payload[:h.Filled])
			empty.Filled = n
			empty.Flags = h.Flags
		}
		ports.ReleaseBuffer(1, empty)
		return nil
	}))
	renderer.SetProcessor(0, processor.Func(func(ctx context.Context, ports processor.Ports) error {
		h, err := ports.ClaimBuffer(0)
		if err != nil {
			return err
		}
		ports.ReleaseBuffer(0, h)
		return nil
	}))

	var flagCount int
	var flagMu sync.Mutex
	if err := renderer.SetCallbacks(component.Callbacks{
		EventHandler: func(appData any, event component.Event, data1, data2 int32, eventData any) {
			if event == component.EventBufferFlag {
				flagMu.Lock()
				flagCount++
				flagMu.Unlock()
			}
		},
	}, nil); err != nil {
		t.Fatalf("SetCallbacks(renderer): %v", err)
	}
	if err := decoder.SetCallbacks(component.Callbacks{
		FillBufferDone: func(appData any, h *buffer.Header) {
			_ = renderer.EmptyThisBuffer(0, h)
		},
	}, nil); err != nil {
		t.Fatalf("SetCallbacks(decoder): %v", err)
	}
	if err := source.SetCallbacks(component.Callbacks{
		FillBufferDone: func(appData any, h *buffer.Header) {
			_ = decoder.EmptyThisBuffer(0, h)
		},
	}, nil); err != nil {
		t.Fatalf("SetCallbacks(source): %v", err)
	}

	tn1, err := tunnel.Setup(context.Background(), source, 0, decoder, 0)
	if err != nil {
		t.Fatalf("Setup(source, decoder): %v", err)
	}
	tn2, err := tunnel.Setup(context.Background(), decoder, 1, renderer, 0)
	if err != nil {
		t.Fatalf("Setup(decoder, renderer): %v", err)
	}
	defer tunnel.Teardown(context.Background(), tn1)
	defer tunnel.Teardown(context.Background(), tn2)

	for _, step := range []struct {
		r   *component.Runtime
		idx int
	}{{source, 0}, {decoder, 0}, {decoder, 1}, {renderer, 0}} {
		if err := step.r.SendCommand(fsm.CmdPortEnable, step.idx, nil); err != nil {
			t.Fatalf("PortEnable(%s,%d): %v", step.r.Name(), step.idx, err)
		}
	}
	for _, r := range []*component.Runtime{source, decoder, renderer} {
		if err := r.SendCommand(fsm.CmdStateSet, int(fsm.StateIdle), nil); err != nil {
			t.Fatalf("StateSet Idle(%s): %v", r.Name(), err)
		}
		if err := r.SendCommand(fsm.CmdStateSet, int(fsm.StateExecuting), nil); err != nil {
			t.Fatalf("StateSet Executing(%s): %v", r.Name(), err)
		}
	}

	// decoder auto-populated one empty output buffer on port 1 during its
	// Idle transition (registered allocator); claim it to prime the
	// fill cycle, mirroring the supplier's usual "push an empty buffer in"
	// step that in this synchronous test harness has no automatic trigger
	// otherwise (component/buffers.go documents the same simplification).
	empty1, err := decoder.Kernel().ClaimBuffer(1)
	if err != nil {
		t.Fatalf("ClaimBuffer(decoder,1): %v", err)
	}

	h, err := source.Kernel().ClaimBuffer(0)
	if err != nil {
		t.Fatalf("ClaimBuffer(source,0): %v", err)
	}
	if err := source.FillThisBuffer(0, h); err != nil {
		t.Fatalf("FillThisBuffer(source): %v", err)
	}
	if err := decoder.FillThisBuffer(1, empty1); err != nil {
		t.Fatalf("FillThisBuffer(decoder,1): %v", err)
	}

	flagMu.Lock()
	got := flagCount
	flagMu.Unlock()
	if got != 1 {
		t.Fatalf("BufferFlag fired %d times at renderer, want exactly 1", got)
	}
}

func buildRuntime(name string, defs []port.Definition) *component.Runtime {
	ports := make([]*port.Port, len(defs))
	for i, d := range defs {
		ports[i] = port.New(i, d, pcm.New())
	}
	r := component.New(name, component.Version{Major: 1}, nil, ports)
	r.Start(context.Background())
	return r
}
