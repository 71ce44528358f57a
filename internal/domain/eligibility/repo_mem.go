package eligibility

import (
	"context"
	"sync"
)

// snapshotStoreMem is an in-memory SnapshotStore for tests and databaseless
// deployments.
type snapshotStoreMem struct {
	mu    sync.RWMutex
	items map[string]*Snapshot
}

// NewSnapshotStoreMem returns an in-memory SnapshotStore.
func NewSnapshotStoreMem() SnapshotStore {
	return &snapshotStoreMem{items: make(map[string]*Snapshot)}
}

func (s *snapshotStoreMem) Get(_ context.Context, patientID string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.items[patientID]
	if !ok {
		return nil, nil
	}
	cp := *snap
	return &cp, nil
}

func (s *snapshotStoreMem) Save(_ context.Context, patientID string, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *snap
	s.items[patientID] = &cp
	return nil
}
