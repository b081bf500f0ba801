package component_test

import (
	"context"
	"testing"

	"omxcore/internal/buffer"
	"omxcore/internal/component"
	"omxcore/internal/fsm"
	"omxcore/internal/omxerr"
	"omxcore/internal/port"
	"omxcore/internal/port/pcm"
	"omxcore/internal/processor"
)

func newSinglePortRuntime(actual int) *component.Runtime {
	def := port.Definition{
		Domain:            port.DomainAudio,
		Direction:         port.DirOutput,
		MinBufferCount:    1,
		ActualBufferCount: actual,
		MinBufferSize:     64,
	}
	p := port.New(0, def, pcm.New())
	return component.New("test.component", component.Version{Major: 1}, []string{"audio_renderer.pcm"}, []*port.Port{p})
}

func TestGetComponentVersionAndRoles(t *testing.T) {
	r := newSinglePortRuntime(1)
	v, err := r.GetComponentVersion()
	if err != nil || v.Major != 1 {
		t.Fatalf("GetComponentVersion = %+v, %v", v, err)
	}
	role, err := r.ComponentRoleEnum(0)
	if err != nil || role != "audio_renderer.pcm" {
		t.Fatalf("ComponentRoleEnum(0) = %q, %v", role, err)
	}
	if _, err := r.ComponentRoleEnum(1); omxerr.Of(err) != omxerr.NoMore {
		t.Fatalf("ComponentRoleEnum(1) Of(err) = %v, want NoMore", omxerr.Of(err))
	}
}

func TestStateSetLifecycle(t *testing.T) {
	r := newSinglePortRuntime(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	if err := r.SendCommand(fsm.CmdPortEnable, 0, nil); err != nil {
		t.Fatalf("PortEnable: %v", err)
	}
	if err := r.SendCommand(fsm.CmdStateSet, int(fsm.StateIdle), nil); err != nil {
		t.Fatalf("StateSet Idle: %v", err)
	}
	if r.GetState() != fsm.StateIdle {
		t.Fatalf("GetState = %s, want Idle", r.GetState())
	}
	if err := r.SendCommand(fsm.CmdStateSet, int(fsm.StateExecuting), nil); err != nil {
		t.Fatalf("StateSet Executing: %v", err)
	}
	if r.GetState() != fsm.StateExecuting {
		t.Fatalf("GetState = %s, want Executing", r.GetState())
	}
}

func TestSendCommandSameStateIsRejected(t *testing.T) {
	r := newSinglePortRuntime(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	err := r.SendCommand(fsm.CmdStateSet, int(fsm.StateLoaded), nil)
	if omxerr.Of(err) != omxerr.SameState {
		t.Fatalf("Of(err) = %v, want SameState", omxerr.Of(err))
	}
}

func TestFlushRejectedInLoaded(t *testing.T) {
	r := newSinglePortRuntime(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	err := r.SendCommand(fsm.CmdFlush, 0, nil)
	if omxerr.Of(err) != omxerr.IncorrectStateOperation {
		t.Fatalf("Of(err) = %v, want IncorrectStateOperation", omxerr.Of(err))
	}
}

func TestParameterRoundTripThroughRuntime(t *testing.T) {
	r := newSinglePortRuntime(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	val := pcm.PcmParam{SampleRate: 44100, BitsPerSample: 16, Signed: true, Interleaved: true}
	if err := r.SetParameter(0, pcm.IndexParamAudioPcm, val); err != nil {
		t.Fatalf("SetParameter: %v", err)
	}
	got, err := r.GetParameter(0, pcm.IndexParamAudioPcm)
	if err != nil || got != val {
		t.Fatalf("GetParameter = %+v, %v; want %+v", got, err, val)
	}
}

func TestFillThisBufferDrivesProcessorAndFiresCallback(t *testing.T) {
	r := newSinglePortRuntime(1)

	var delivered *buffer.Header
	fill := processor.Func(func(ctx context.Context, ports processor.Ports) error {
		h, err := ports.ClaimBuffer(0)
		if err != nil {
			return err
		}
		n := copy(h.Payload, []byte("hello"))
		h.Filled = n
		ports.ReleaseBuffer(0, h)
		return nil
	})
	r.SetProcessor(0, fill)

	var callbackFired bool
	if err := r.SetCallbacks(component.Callbacks{
		FillBufferDone: func(appData any, h *buffer.Header) {
			callbackFired = true
			delivered = h
		},
	}, nil); err != nil {
		t.Fatalf("SetCallbacks: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	h, err := r.AllocateBuffer(0, "app-private", 64)
	if err != nil {
		t.Fatalf("AllocateBuffer: %v", err)
	}

	if err := r.FillThisBuffer(0, h); err != nil {
		t.Fatalf("FillThisBuffer: %v", err)
	}
	if !callbackFired {
		t.Fatal("expected FillBufferDone to fire")
	}
	if delivered == nil || string(delivered.Payload[:delivered.Filled]) != "hello" {
		t.Fatalf("delivered payload = %v", delivered)
	}
}

func TestUseEGLImageIsUnsupported(t *testing.T) {
	r := newSinglePortRuntime(1)
	_, err := r.UseEGLImage(0, nil, nil)
	if omxerr.Of(err) != omxerr.UnsupportedSetting {
		t.Fatalf("Of(err) = %v, want UnsupportedSetting", omxerr.Of(err))
	}
}
