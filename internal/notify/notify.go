package notify

import (
	"context"
	"time"
)

// Kind labels what a notification is about. Together with the
// subscription and date key it identifies one logical delivery.
type Kind string

const (
	KindTodoDue  Kind = "todo_due"
	KindHabitDue Kind = "habit_due"
)

// Message is one notification to deliver.
type Message struct {
	UserID  string `json:"user_id"`
	Kind    Kind   `json:"kind"`
	DateKey string `json:"date_key"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}

// Sender delivers a message to one subscription endpoint.
type Sender interface {
	Send(ctx context.Context, sub *Subscription, msg Message) error
}

// Subscription is a registered delivery target for one user.
type Subscription struct {
	ID        string
	UserID    string
	Endpoint  string
	CreatedAt time.Time
}

// SubscriptionRepository defines storage operations for subscriptions.
type SubscriptionRepository interface {
	// CreateSubscription registers a delivery target.
	// Returns the subscription as persisted.
	CreateSubscription(ctx context.Context, sub *Subscription) (*Subscription, error)

	// DeleteSubscription removes a delivery target.
	// Returns domain.ErrNotFound if it doesn't exist.
	DeleteSubscription(ctx context.Context, id string) error

	// ListSubscriptions returns every registered subscription. The
	// notifier fans out over this set each tick.
	ListSubscriptions(ctx context.Context) ([]*Subscription, error)

	// ListSubscriptionsByUser returns one user's subscriptions.
	ListSubscriptionsByUser(ctx context.Context, userID string) ([]*Subscription, error)
}
