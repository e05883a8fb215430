package dashboard

import (
	"sync/atomic"

	"civisense/internal/model"
)

// Store holds the latest accepted snapshot. Readers never see a partially
// replaced snapshot.
type Store struct {
	current atomic.Pointer[model.Snapshot]
}

func NewStore() *Store {
	return &Store{}
}

// Latest returns the current snapshot, or false before the first refresh
func (s *Store) Latest() (*model.Snapshot, bool) {
	snap := s.current.Load()
	return snap, snap != nil
}

// Replace swaps in a new snapshot wholesale
func (s *Store) Replace(snap *model.Snapshot) {
	s.current.Store(snap)
}
