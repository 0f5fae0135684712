package export

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/archive"
	"github.com/cadencehq/cadence/internal/domain"
)

type fakeSources struct {
	habits []*domain.Habit
	todos  []*domain.Todo
}

func (f *fakeSources) FindHabitsByUser(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error) {
	return f.habits, nil
}

func (f *fakeSources) FindTodosByUser(ctx context.Context, userID string) ([]*domain.Todo, error) {
	return f.todos, nil
}

type memStore struct {
	snaps map[string]*archive.Snapshot
}

func newMemStore() *memStore {
	return &memStore{snaps: make(map[string]*archive.Snapshot)}
}

func (m *memStore) PutSnapshot(ctx context.Context, snap *archive.Snapshot) error {
	m.snaps[snap.ID] = snap
	return nil
}

func (m *memStore) GetSnapshot(ctx context.Context, userID, id string) (*archive.Snapshot, error) {
	snap, ok := m.snaps[id]
	if !ok || snap.UserID != userID {
		return nil, archive.ErrSnapshotNotFound
	}
	return snap, nil
}

func (m *memStore) ListSnapshots(ctx context.Context, userID string) ([]*archive.Snapshot, error) {
	var out []*archive.Snapshot
	for _, snap := range m.snaps {
		if snap.UserID == userID {
			out = append(out, snap)
		}
	}
	return out, nil
}

func TestTakeSnapshot(t *testing.T) {
	habit := &domain.Habit{
		ID:                 "h1",
		UserID:             "u1",
		Title:              "Run",
		Frequency:          domain.FrequencyDaily,
		CompletionDateKeys: domain.NewDateKeySet("2024-06-10", "2024-06-09"),
		SkippedDateKeys:    domain.NewDateKeySet(),
		HabitType:          domain.HabitTypePositive,
	}
	todo := &domain.Todo{
		ID:       "t1",
		UserID:   "u1",
		Title:    "Buy milk",
		Status:   domain.TodoStatusPending,
		Priority: domain.PriorityMedium,
	}
	sources := &fakeSources{habits: []*domain.Habit{habit}, todos: []*domain.Todo{todo}}
	store := newMemStore()
	svc := NewService(sources, sources, store)

	snap, err := svc.TakeSnapshot(context.Background(), "u1")
	require.NoError(t, err)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "u1", snap.UserID)
	require.Len(t, snap.Habits, 1)
	assert.Equal(t, []string{"2024-06-09", "2024-06-10"}, snap.Habits[0].CompletionDateKeys)
	require.Len(t, snap.Todos, 1)
	assert.Equal(t, "pending", snap.Todos[0].Status)

	stored, err := svc.GetSnapshot(context.Background(), "u1", snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, stored.ID)
}

func TestListSnapshots_NewestFirst(t *testing.T) {
	sources := &fakeSources{}
	store := newMemStore()
	svc := NewService(sources, sources, store)

	old := &archive.Snapshot{ID: "a", UserID: "u1", TakenAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	recent := &archive.Snapshot{ID: "b", UserID: "u1", TakenAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, store.PutSnapshot(context.Background(), old))
	require.NoError(t, store.PutSnapshot(context.Background(), recent))

	snaps, err := svc.ListSnapshots(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "b", snaps[0].ID)
	assert.Equal(t, "a", snaps[1].ID)
}
