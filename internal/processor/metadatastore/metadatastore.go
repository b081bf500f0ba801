// Package metadatastore is an in-memory key/value store for stream
// metadata tags (title, codec, bitrate, ...) surfaced by demuxer/decoder
// role components, flushed as IndexSettingChanged events (spec.md §2's
// "metadata store" role helper).
package metadatastore

import "sync"

// SettingChanged mirrors the OMX_EventIndexSettingChanged callback
// payload: the index whose value changed, ready to hand to the component
// runtime's EventHandler callback.
type SettingChanged struct {
	Index int32
	Value any
}

// Store holds metadata key/value pairs keyed by parameter index, the same
// index namespace the owning port's Behaviour registers (internal/port).
// It tracks which keys changed since the last Drain so the component
// runtime can emit exactly one event per change, not one per Set call.
type Store struct {
	mu      sync.Mutex
	values  map[int32]any
	pending map[int32]struct{}
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		values:  make(map[int32]any),
		pending: make(map[int32]struct{}),
	}
}

// Set records a new value for idx and marks it pending for the next Drain.
func (s *Store) Set(idx int32, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[idx] = value
	s.pending[idx] = struct{}{}
}

// Get returns the current value for idx and whether it has ever been set.
func (s *Store) Get(idx int32) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[idx]
	return v, ok
}

// Drain returns every index that changed since the last Drain, clearing
// the pending set. Order is unspecified — callers that need a stable
// order should sort the result themselves.
func (s *Store) Drain() []SettingChanged {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	out := make([]SettingChanged, 0, len(s.pending))
	for idx := range s.pending {
		out = append(out, SettingChanged{Index: idx, Value: s.values[idx]})
	}
	s.pending = make(map[int32]struct{})
	return out
}
