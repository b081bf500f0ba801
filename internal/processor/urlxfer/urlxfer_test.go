package urlxfer_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"omxcore/internal/buffer"
	"omxcore/internal/processor"
	"omxcore/internal/processor/urlxfer"
)

type memPuller struct {
	data []byte
}

func (m *memPuller) ReadRange(ctx context.Context, offset int64, p []byte) (int, error) {
	if offset >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[offset:])
	var err error
	if offset+int64(n) >= int64(len(m.data)) {
		err = io.EOF
	}
	return n, err
}

func (m *memPuller) Size(ctx context.Context) (int64, error) {
	return int64(len(m.data)), nil
}

type fakePorts struct {
	headers map[int]*buffer.Header
}

func (f *fakePorts) ClaimBuffer(portIdx int) (*buffer.Header, error) {
	return f.headers[portIdx], nil
}

func (f *fakePorts) ReleaseBuffer(portIdx int, h *buffer.Header) {
	f.headers[portIdx] = h
}

func TestWorkerFillsBufferFromPuller(t *testing.T) {
	data := []byte("hello world")
	puller := &memPuller{data: data}
	w := urlxfer.NewWorker(puller, 0)

	h := buffer.NewHeader(make([]byte, len(data)), -1, 0)
	ports := &fakePorts{headers: map[int]*buffer.Header{0: h}}

	var p processor.Processor = w
	if err := p.Process(context.Background(), ports); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if h.Filled != len(data) {
		t.Fatalf("Filled = %d, want %d", h.Filled, len(data))
	}
	if !bytes.Equal(h.Payload[:h.Filled], data) {
		t.Fatalf("payload = %q, want %q", h.Payload[:h.Filled], data)
	}
}

func TestWorkerAdvancesOffsetAcrossCalls(t *testing.T) {
	data := []byte("0123456789abcdef") // 16 bytes
	puller := &memPuller{data: data}
	w := urlxfer.NewWorker(puller, 0)

	chunk := make([]byte, 4)
	ports := &fakePorts{headers: map[int]*buffer.Header{0: buffer.NewHeader(chunk, -1, 0)}}

	for i := 0; i < 4; i++ {
		h := buffer.NewHeader(chunk, -1, 0)
		ports.headers[0] = h
		if err := w.Process(context.Background(), ports); err != nil {
			t.Fatalf("Process iteration %d: %v", i, err)
		}
		if h.Filled != 4 {
			t.Fatalf("iteration %d: Filled = %d, want 4", i, h.Filled)
		}
		if want := data[i*4 : i*4+4]; !bytes.Equal(h.Payload[:h.Filled], want) {
			t.Fatalf("iteration %d: payload = %q, want %q", i, h.Payload[:h.Filled], want)
		}
	}
}
