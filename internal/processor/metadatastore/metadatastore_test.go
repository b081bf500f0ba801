package metadatastore_test

import (
	"testing"

	"omxcore/internal/processor/metadatastore"
)

func TestSetGetRoundTrip(t *testing.T) {
	s := metadatastore.New()
	s.Set(1, "title")
	v, ok := s.Get(1)
	if !ok || v != "title" {
		t.Fatalf("Get(1) = %v, %v; want \"title\", true", v, ok)
	}
}

func TestGetMissingKey(t *testing.T) {
	s := metadatastore.New()
	if _, ok := s.Get(99); ok {
		t.Fatal("expected ok=false for unset key")
	}
}

func TestDrainReturnsOnlyPendingAndClears(t *testing.T) {
	s := metadatastore.New()
	s.Set(1, "a")
	s.Set(2, "b")

	changed := s.Drain()
	if len(changed) != 2 {
		t.Fatalf("Drain returned %d entries, want 2", len(changed))
	}

	if more := s.Drain(); more != nil {
		t.Fatalf("second Drain = %v, want nil (nothing pending)", more)
	}
}

func TestDrainAfterSetAgainReturnsOnlyChangedKey(t *testing.T) {
	s := metadatastore.New()
	s.Set(1, "a")
	s.Drain()

	s.Set(1, "a-v2")
	changed := s.Drain()
	if len(changed) != 1 || changed[0].Index != 1 || changed[0].Value != "a-v2" {
		t.Fatalf("Drain = %+v, want single entry idx=1 value=a-v2", changed)
	}
}
