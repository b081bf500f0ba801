package omx

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"omxcore/internal/omxerr"
	"omxcore/internal/support/ilconfig"
)

func TestOpenListComponentsEmptyThenClose(t *testing.T) {
	ctx := context.Background()
	cfg := &ilconfig.Config{} // no component-paths: scan finds nothing

	cl, err := Open(ctx, cfg, filepath.Join(t.TempDir(), "probe.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := cl.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})

	names, err := cl.ListComponents()
	if err != nil {
		t.Fatalf("ListComponents: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("ListComponents = %v, want empty", names)
	}
}

func TestRolesOfUnknownComponentIsComponentNotFound(t *testing.T) {
	ctx := context.Background()
	cl, err := Open(ctx, &ilconfig.Config{}, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = cl.Close() })

	_, err = cl.RolesOf("ghost")
	if omxerr.Of(err) != omxerr.ComponentNotFound {
		t.Fatalf("Of(err) = %v, want ComponentNotFound", omxerr.Of(err))
	}
	var oerr *omxerr.Error
	if !errors.As(err, &oerr) {
		t.Fatalf("err is not *omxerr.Error: %v", err)
	}
}
