package demo

import (
	"bytes"
	"strings"
	"testing"
)

// TestRunEmitsExactlyOneTerminalBufferFlag mirrors spec.md §8 scenario S3
// end-to-end at the CLI layer: after the demo graph runs, the renderer
// observes exactly one BufferFlag(EOS), which run reports as an error if
// it ever diverges.
func TestRunEmitsExactlyOneTerminalBufferFlag(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "demo complete") {
		t.Fatalf("output missing completion line: %q", out)
	}
	if strings.Count(out, "BufferFlag") != 1 {
		t.Fatalf("expected exactly one BufferFlag line, got: %q", out)
	}
}

func TestCmdShape(t *testing.T) {
	cmd := Cmd()
	if cmd.Use != "demo" {
		t.Fatalf("unexpected use: %q", cmd.Use)
	}
}
