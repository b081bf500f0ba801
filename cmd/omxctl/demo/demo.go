// Package demo implements "omxctl demo": an in-process, three-component
// linear graph (source -> decoder -> renderer) driven through
// Loaded->Idle->Executing and a single source-to-sink buffer, the
// Go-native shape of spec.md §8 scenario S3 — without needing real codec
// plugins on disk, since the demo components are small PCM-domain
// passthroughs built directly against internal/component, internal/port,
// and internal/tunnel (the same construction scenario_s3_test.go exercises
// as a test; this command prints the same wiring's terminal event instead
// of asserting on it).
package demo

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"omxcore/cmd/omxctl/ui"
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

func buildRuntime(name string, defs []port.Definition) *component.Runtime {
	ports := make([]*port.Port, len(defs))
	for i, d := range defs {
		ports[i] = port.New(i, d, pcm.New())
	}
	r := component.New(name, component.Version{Major: 1}, nil, ports)
	r.Start(context.Background())
	return r
}

// Cmd builds and runs the demo graph, printing each step as it happens.
func Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a three-component source->decoder->renderer graph in-process",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout())
		},
	}
}

func run(out interface{ Write([]byte) (int, error) }) error {
	fmt.Fprintln(out, ui.Accent("building source -> decoder -> renderer graph"))

	source := buildRuntime("source", []port.Definition{
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
		return err
	}
	if err := decoder.Kernel().SetAllocator(1, constAllocator{}); err != nil {
		return err
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
				fmt.Fprintln(out, ui.SuccessMsg("renderer: %s(port=%d, flags=%#x)", event, data1, data2))
			}
		},
	}, nil); err != nil {
		return err
	}
	if err := decoder.SetCallbacks(component.Callbacks{
		FillBufferDone: func(appData any, h *buffer.Header) { _ = renderer.EmptyThisBuffer(0, h) },
	}, nil); err != nil {
		return err
	}
	if err := source.SetCallbacks(component.Callbacks{
		FillBufferDone: func(appData any, h *buffer.Header) { _ = decoder.EmptyThisBuffer(0, h) },
	}, nil); err != nil {
		return err
	}

	tn1, err := tunnel.Setup(context.Background(), source, 0, decoder, 0)
	if err != nil {
		return fmt.Errorf("tunnel source->decoder: %w", err)
	}
	tn2, err := tunnel.Setup(context.Background(), decoder, 1, renderer, 0)
	if err != nil {
		return fmt.Errorf("tunnel decoder->renderer: %w", err)
	}
	defer tunnel.Teardown(context.Background(), tn1)
	defer tunnel.Teardown(context.Background(), tn2)

	for _, step := range []struct {
		r   *component.Runtime
		idx int
	}{{source, 0}, {decoder, 0}, {decoder, 1}, {renderer, 0}} {
		if err := step.r.SendCommand(fsm.CmdPortEnable, step.idx, nil); err != nil {
			return fmt.Errorf("enable %s port %d: %w", step.r.Name(), step.idx, err)
		}
	}
	for _, r := range []*component.Runtime{source, decoder, renderer} {
		if err := r.SendCommand(fsm.CmdStateSet, int(fsm.StateIdle), nil); err != nil {
			return fmt.Errorf("%s -> Idle: %w", r.Name(), err)
		}
		if err := r.SendCommand(fsm.CmdStateSet, int(fsm.StateExecuting), nil); err != nil {
			return fmt.Errorf("%s -> Executing: %w", r.Name(), err)
		}
		fmt.Fprintln(out, ui.Muted(r.Name()+": Loaded -> Idle -> Executing"))
	}

	empty1, err := decoder.Kernel().ClaimBuffer(1)
	if err != nil {
		return fmt.Errorf("prime decoder output buffer: %w", err)
	}

	h, err := source.Kernel().ClaimBuffer(0)
	if err != nil {
		return fmt.Errorf("prime source output buffer: %w", err)
	}
	if err := source.FillThisBuffer(0, h); err != nil {
		return err
	}
	if err := decoder.FillThisBuffer(1, empty1); err != nil {
		return err
	}

	flagMu.Lock()
	got := flagCount
	flagMu.Unlock()
	if got != 1 {
		return fmt.Errorf("BufferFlag fired %d times at renderer, want exactly 1", got)
	}
	fmt.Fprintln(out, ui.SuccessMsg("demo complete: exactly one terminal EOS flag observed at the renderer"))
	return nil
}
