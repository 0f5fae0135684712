package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/archive"
)

// RunArchiveComplianceTest runs a standard set of tests against a Store
// implementation. setup returns a fresh (clean) Store instance plus a
// cleanup function called after each subtest.
func RunArchiveComplianceTest(t *testing.T, setup func() (archive.Store, func())) {
	newSnapshot := func(userID string) *archive.Snapshot {
		return &archive.Snapshot{
			ID:      uuid.New().String(),
			UserID:  userID,
			TakenAt: time.Now().UTC().Truncate(time.Second),
			Habits: []archive.HabitRecord{
				{
					ID:                 uuid.New().String(),
					Title:              "Morning run",
					Frequency:          "daily",
					HabitType:          "positive",
					CompletionDateKeys: []string{"2024-06-09", "2024-06-10"},
					SkippedDateKeys:    []string{},
					CreatedAt:          time.Now().UTC().Truncate(time.Second),
				},
			},
			Todos: []archive.TodoRecord{
				{
					ID:        uuid.New().String(),
					Title:     "Buy milk",
					Status:    "pending",
					Priority:  "medium",
					CreatedAt: time.Now().UTC().Truncate(time.Second),
				},
			},
		}
	}

	t.Run("PutAndGetSnapshot", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		snap := newSnapshot("u1")
		require.NoError(t, store.PutSnapshot(ctx, snap))

		fetched, err := store.GetSnapshot(ctx, "u1", snap.ID)
		require.NoError(t, err)
		assert.Equal(t, snap.ID, fetched.ID)
		assert.Equal(t, snap.UserID, fetched.UserID)
		require.Len(t, fetched.Habits, 1)
		assert.Equal(t, []string{"2024-06-09", "2024-06-10"}, fetched.Habits[0].CompletionDateKeys)
		require.Len(t, fetched.Todos, 1)
		assert.Equal(t, "Buy milk", fetched.Todos[0].Title)
	})

	t.Run("PutDuplicateFails", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		snap := newSnapshot("u1")
		require.NoError(t, store.PutSnapshot(ctx, snap))
		assert.Error(t, store.PutSnapshot(ctx, snap))
	})

	t.Run("ListSnapshotsScopedToUser", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		mine := newSnapshot("u1")
		other := newSnapshot("u2")
		require.NoError(t, store.PutSnapshot(ctx, mine))
		require.NoError(t, store.PutSnapshot(ctx, other))

		snaps, err := store.ListSnapshots(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, snaps, 1)
		assert.Equal(t, mine.ID, snaps[0].ID)
	})

	t.Run("ListSnapshotsEmptyUser", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()

		snaps, err := store.ListSnapshots(context.Background(), "nobody")
		require.NoError(t, err)
		assert.Empty(t, snaps)
	})

	t.Run("GetNonExistentSnapshot", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()

		_, err := store.GetSnapshot(context.Background(), "u1", "non-existent-id")
		require.Error(t, err)
		assert.True(t, errors.Is(err, archive.ErrSnapshotNotFound))
	})
}
