package registry

import (
	"errors"
	"testing"

	"omxcore/internal/omxerr"
)

// TestScenarioS1RegistryBringUp mirrors spec.md's worked example S1: a
// directory with p1.so.0.0.0, p2.so.0.0.0 and a malformed p3.so.0.0.0T
// yields exactly {p1, p2} in load order, p3 filtered by the suffix rule.
// globSharedObjects (the suffix filter itself) is exercised directly since
// a real Init would need genuine dlopen'able .so files on disk, which
// can't exist in this exercise; the post-filter enumeration behaviour is
// exercised against directly seeded entries, matching how the rest of
// this scan pipeline is tested.
func TestScenarioS1RegistryBringUp(t *testing.T) {
	if soSuffix.MatchString("p3.so.0.0.0T") {
		t.Fatal("p3.so.0.0.0T should be rejected by the suffix rule")
	}
	if !soSuffix.MatchString("p1.so.0.0.0") || !soSuffix.MatchString("p2.so.0.0.0") {
		t.Fatal("p1.so.0.0.0 and p2.so.0.0.0 should both match the suffix rule")
	}

	c := newTestCore(t, []entry{fakeEntry("p1"), fakeEntry("p2")})

	n0, err := c.ComponentNameEnum(0)
	if err != nil || n0 != "p1" {
		t.Fatalf("ComponentNameEnum(0) = %q, %v, want p1", n0, err)
	}
	n1, err := c.ComponentNameEnum(1)
	if err != nil || n1 != "p2" {
		t.Fatalf("ComponentNameEnum(1) = %q, %v, want p2", n1, err)
	}
	if _, err := c.ComponentNameEnum(2); !errors.Is(err, omxerr.New(omxerr.NoMore)) {
		t.Fatalf("ComponentNameEnum(2) err = %v, want NoMore (p3 must never appear)", err)
	}
}

// TestScenarioS2RoleQuery mirrors spec.md's worked example S2.
func TestScenarioS2RoleQuery(t *testing.T) {
	c := newTestCore(t, []entry{fakeEntry("renderer", "audio_renderer.pcm")})

	role, err := c.RoleOfComponentEnum("renderer", 0)
	if err != nil || role != "audio_renderer.pcm" {
		t.Fatalf("RoleOfComponentEnum(renderer, 0) = %q, %v, want audio_renderer.pcm", role, err)
	}
	if _, err := c.RoleOfComponentEnum("renderer", 1); omxerr.Of(err) != omxerr.NoMore {
		t.Fatalf("RoleOfComponentEnum(renderer, 1) Of(err) = %v, want NoMore", omxerr.Of(err))
	}

	name, err := c.ComponentOfRoleEnum("audio_renderer.pcm", 0)
	if err != nil || name != "renderer" {
		t.Fatalf("ComponentOfRoleEnum(audio_renderer.pcm, 0) = %q, %v, want renderer", name, err)
	}
}
