package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // local delivery ledger driver
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS deliveries (
	subscription_id TEXT NOT NULL,
	date_key        TEXT NOT NULL,
	kind            TEXT NOT NULL,
	delivered_at    TIMESTAMP NOT NULL,
	PRIMARY KEY (subscription_id, date_key, kind)
);
`

// Ledger records which (subscription, day, kind) notifications were
// already delivered, in a local SQLite file. It exists so a notifier
// restart inside the same day does not re-send everything.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (and if needed initializes) the ledger at path.
// ":memory:" gives an ephemeral ledger for tests.
func OpenLedger(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	// SQLite handles one writer at a time; a larger pool just queues.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// MarkDelivered records a delivery. Returns false when the same
// delivery was already recorded.
func (l *Ledger) MarkDelivered(ctx context.Context, subscriptionID, dateKey string, kind Kind) (bool, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO deliveries (subscription_id, date_key, kind, delivered_at) VALUES (?, ?, ?, ?)`,
		subscriptionID, dateKey, string(kind), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to record delivery: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// Delivered reports whether a delivery was already recorded.
func (l *Ledger) Delivered(ctx context.Context, subscriptionID, dateKey string, kind Kind) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx,
		`SELECT 1 FROM deliveries WHERE subscription_id = ? AND date_key = ? AND kind = ?`,
		subscriptionID, dateKey, string(kind)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query ledger: %w", err)
	}
	return true, nil
}

// PruneBefore drops entries older than the given date key. Keys sort
// lexicographically in date order, so string comparison is enough.
func (l *Ledger) PruneBefore(ctx context.Context, dateKey string) (int64, error) {
	res, err := l.db.ExecContext(ctx, `DELETE FROM deliveries WHERE date_key < ?`, dateKey)
	if err != nil {
		return 0, fmt.Errorf("failed to prune ledger: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}
