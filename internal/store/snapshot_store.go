package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ceremony/internal/domain"
)

const snapshotsDir = "snapshots"

// SnapshotFileStore persists one validation snapshot per epoch as JSON.
type SnapshotFileStore struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewSnapshotFileStore returns a SnapshotFileStore rooted at dir.
func NewSnapshotFileStore(dir string) *SnapshotFileStore {
	return &SnapshotFileStore{dir: filepath.Join(dir, snapshotsDir), now: time.Now}
}

func (s *SnapshotFileStore) path(epoch domain.Epoch) string {
	return filepath.Join(s.dir, fmt.Sprintf("epoch-%d.json", epoch))
}

// SaveSnapshot replaces the snapshot for snap.Epoch.
func (s *SnapshotFileStore) SaveSnapshot(snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	snap.SavedAt = s.now().UTC()
	return writeJSON(s.path(snap.Epoch), snap, 0o600)
}

// LoadSnapshot returns the stored snapshot for epoch, if any.
func (s *SnapshotFileStore) LoadSnapshot(epoch domain.Epoch) (domain.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.path(epoch))
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	if b == nil {
		return domain.Snapshot{}, false, nil
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return domain.Snapshot{}, false, err
	}
	return snap, true, nil
}

// DeleteSnapshot removes the snapshot for epoch. A missing file is not an error.
func (s *SnapshotFileStore) DeleteSnapshot(epoch domain.Epoch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(epoch))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Compile-time assertion that SnapshotFileStore implements domain.SnapshotStore.
var _ domain.SnapshotStore = (*SnapshotFileStore)(nil)
