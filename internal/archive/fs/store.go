package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cadencehq/cadence/internal/archive"
)

// Store is a filesystem-based implementation of archive.Store. Each
// snapshot lives at <baseDir>/<userID>/<snapshotID>.json.
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// NewStore creates a new filesystem store.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

func (s *Store) userDir(userID string) string {
	return filepath.Join(s.baseDir, userID)
}

func (s *Store) snapshotPath(userID, id string) string {
	return filepath.Join(s.userDir(userID), fmt.Sprintf("%s.json", id))
}

// PutSnapshot writes a snapshot as a JSON file.
func (s *Store) PutSnapshot(ctx context.Context, snap *archive.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.userDir(snap.UserID), 0755); err != nil {
		return fmt.Errorf("failed to create user directory: %w", err)
	}

	path := s.snapshotPath(snap.UserID, snap.ID)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("snapshot %s already exists", snap.ID)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// GetSnapshot reads one snapshot file.
func (s *Store) GetSnapshot(ctx context.Context, userID, id string) (*archive.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.snapshotPath(userID, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, archive.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var snap archive.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// ListSnapshots scans the user's directory and loads snapshots in parallel.
func (s *Store) ListSnapshots(ctx context.Context, userID string) ([]*archive.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.userDir(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var mu sync.Mutex
	var snaps []*archive.Snapshot
	var wg sync.WaitGroup

	// Limit concurrency to avoid "too many open files" on large directories.
	const maxConcurrency = 20
	semaphore := make(chan struct{}, maxConcurrency)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		wg.Add(1)
		semaphore <- struct{}{}

		go func(filename string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			data, err := os.ReadFile(filepath.Join(s.userDir(userID), filename))
			if err != nil {
				// Skip unreadable files rather than failing the whole listing.
				return
			}

			var snap archive.Snapshot
			if err := json.Unmarshal(data, &snap); err == nil {
				mu.Lock()
				snaps = append(snaps, &snap)
				mu.Unlock()
			}
		}(entry.Name())
	}

	wg.Wait()
	return snaps, nil
}
