package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/cadencehq/cadence/internal/archive"
)

// Store is a GCS-based implementation of archive.Store. Snapshots are
// stored as <userID>/<snapshotID>.json objects so per-user listings are
// a prefix scan.
type Store struct {
	client *storage.Client
	bucket string
}

// NewStore creates a new GCS store.
// It assumes the client is authenticated (e.g. via GOOGLE_APPLICATION_CREDENTIALS).
func NewStore(ctx context.Context, bucketName string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &Store{client: client, bucket: bucketName}, nil
}

func objectName(userID, id string) string {
	return fmt.Sprintf("%s/%s.json", userID, id)
}

// PutSnapshot writes a snapshot as a JSON object in GCS.
func (s *Store) PutSnapshot(ctx context.Context, snap *archive.Snapshot) error {
	obj := s.client.Bucket(s.bucket).Object(objectName(snap.UserID, snap.ID))

	_, err := obj.Attrs(ctx)
	if err == nil {
		return fmt.Errorf("snapshot %s already exists", snap.ID)
	}
	if !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to check object existence: %w", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	w := obj.NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	return w.Close()
}

// GetSnapshot retrieves one snapshot from GCS.
func (s *Store) GetSnapshot(ctx context.Context, userID, id string) (*archive.Snapshot, error) {
	obj := s.client.Bucket(s.bucket).Object(objectName(userID, id))

	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, archive.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	defer r.Close()

	var snap archive.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// ListSnapshots scans the user's prefix and loads snapshots in parallel.
func (s *Store) ListSnapshots(ctx context.Context, userID string) ([]*archive.Snapshot, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: userID + "/"})

	var objectNames []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		if strings.HasSuffix(attrs.Name, ".json") {
			objectNames = append(objectNames, attrs.Name)
		}
	}

	var mu sync.Mutex
	var snaps []*archive.Snapshot
	var wg sync.WaitGroup

	// GCS handles 20+ concurrent requests well, but we stay conservative.
	const maxConcurrency = 20
	semaphore := make(chan struct{}, maxConcurrency)

	for _, name := range objectNames {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(name string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
			if err != nil {
				// Skip unreadable objects
				return
			}
			defer r.Close()

			data, err := io.ReadAll(r)
			if err != nil {
				return
			}

			var snap archive.Snapshot
			if err := json.Unmarshal(data, &snap); err == nil {
				mu.Lock()
				snaps = append(snaps, &snap)
				mu.Unlock()
			}
		}(name)
	}

	wg.Wait()
	return snaps, nil
}
