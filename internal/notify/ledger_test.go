package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	ledger, err := OpenLedger(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })
	return ledger
}

func TestLedger_MarkDeliveredOnce(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()

	first, err := ledger.MarkDelivered(ctx, "sub-1", "2024-06-10", KindTodoDue)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := ledger.MarkDelivered(ctx, "sub-1", "2024-06-10", KindTodoDue)
	require.NoError(t, err)
	assert.False(t, second, "duplicate delivery must be suppressed")
}

func TestLedger_KeySeparatesKindAndDay(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()

	_, err := ledger.MarkDelivered(ctx, "sub-1", "2024-06-10", KindTodoDue)
	require.NoError(t, err)

	habit, err := ledger.MarkDelivered(ctx, "sub-1", "2024-06-10", KindHabitDue)
	require.NoError(t, err)
	assert.True(t, habit, "different kind is a different delivery")

	nextDay, err := ledger.MarkDelivered(ctx, "sub-1", "2024-06-11", KindTodoDue)
	require.NoError(t, err)
	assert.True(t, nextDay, "different day is a different delivery")
}

func TestLedger_Delivered(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()

	delivered, err := ledger.Delivered(ctx, "sub-1", "2024-06-10", KindTodoDue)
	require.NoError(t, err)
	assert.False(t, delivered)

	_, err = ledger.MarkDelivered(ctx, "sub-1", "2024-06-10", KindTodoDue)
	require.NoError(t, err)

	delivered, err = ledger.Delivered(ctx, "sub-1", "2024-06-10", KindTodoDue)
	require.NoError(t, err)
	assert.True(t, delivered)
}

func TestLedger_PruneBefore(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()

	for _, key := range []string{"2024-06-08", "2024-06-09", "2024-06-10"} {
		_, err := ledger.MarkDelivered(ctx, "sub-1", key, KindTodoDue)
		require.NoError(t, err)
	}

	pruned, err := ledger.PruneBefore(ctx, "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, int64(2), pruned)

	delivered, err := ledger.Delivered(ctx, "sub-1", "2024-06-10", KindTodoDue)
	require.NoError(t, err)
	assert.True(t, delivered)
}
