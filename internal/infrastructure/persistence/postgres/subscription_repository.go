package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cadencehq/cadence/internal/domain"
	"github.com/cadencehq/cadence/internal/notify"
)

const subscriptionColumns = `id, user_id, endpoint, created_at`

// CreateSubscription registers a push delivery target.
func (s *Store) CreateSubscription(ctx context.Context, sub *notify.Subscription) (*notify.Subscription, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO push_subscriptions (id, user_id, endpoint, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, endpoint) DO UPDATE SET endpoint = EXCLUDED.endpoint
		RETURNING `+subscriptionColumns,
		sub.ID, sub.UserID, sub.Endpoint, sub.CreatedAt)

	created, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert subscription: %w", err)
	}
	return created, nil
}

// DeleteSubscription removes a delivery target.
func (s *Store) DeleteSubscription(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM push_subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListSubscriptions returns every registered subscription.
func (s *Store) ListSubscriptions(ctx context.Context) ([]*notify.Subscription, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+subscriptionColumns+` FROM push_subscriptions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()
	return collectSubscriptions(rows)
}

// ListSubscriptionsByUser returns one user's subscriptions.
func (s *Store) ListSubscriptionsByUser(ctx context.Context, userID string) ([]*notify.Subscription, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+subscriptionColumns+` FROM push_subscriptions WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()
	return collectSubscriptions(rows)
}

func collectSubscriptions(rows pgx.Rows) ([]*notify.Subscription, error) {
	var subs []*notify.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subscriptions: %w", err)
	}
	return subs, nil
}

func scanSubscription(row pgx.Row) (*notify.Subscription, error) {
	var sub notify.Subscription
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.CreatedAt); err != nil {
		return nil, err
	}
	sub.CreatedAt = sub.CreatedAt.UTC()
	return &sub, nil
}
