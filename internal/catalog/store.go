package catalog

import "sync/atomic"

// Store holds the current catalog snapshot. Readers always see a fully
// built catalog; reloads publish a replacement rather than mutating.
type Store struct {
	current atomic.Pointer[Catalog]
	version atomic.Uint64
}

// NewStore returns a store publishing initial (which may be nil).
func NewStore(initial *Catalog) *Store {
	s := &Store{}
	if initial != nil {
		s.Publish(initial)
	}
	return s
}

// Load returns the current snapshot, or nil if none has been published.
func (s *Store) Load() *Catalog {
	return s.current.Load()
}

// Publish atomically replaces the current snapshot.
func (s *Store) Publish(c *Catalog) {
	s.current.Store(c)
	s.version.Add(1)
}

// Version counts publications.
func (s *Store) Version() uint64 {
	return s.version.Load()
}
