// Package notifier runs the reminder loop: each tick it fans out over
// the registered push subscriptions and delivers at most one reminder
// per subscription, day, and kind, using the delivery ledger for dedup.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cadencehq/cadence/internal/civil"
	"github.com/cadencehq/cadence/internal/domain"
	"github.com/cadencehq/cadence/internal/notify"
	"github.com/cadencehq/cadence/internal/recurrence"
)

// HabitSource supplies the habits checked for due reminders.
type HabitSource interface {
	FindHabitsByUser(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error)
}

// TodoSource supplies the todos due inside the current civil day.
type TodoSource interface {
	DueToday(ctx context.Context, userID string, now time.Time, frameZone string) ([]*domain.Todo, error)
}

// Notifier periodically checks for due habits and todos and pushes
// reminders to every subscription the owning user registered.
type Notifier struct {
	subs             notify.SubscriptionRepository
	habits           HabitSource
	todos            TodoSource
	sender           notify.Sender
	ledger           *notify.Ledger
	interval         time.Duration
	operationTimeout time.Duration
	retentionDays    int
	wg               sync.WaitGroup
}

// Option is a functional option for configuring Notifier.
type Option func(*Notifier)

// WithInterval sets how often the notifier checks for due work.
func WithInterval(d time.Duration) Option {
	return func(n *Notifier) {
		n.interval = d
	}
}

// WithOperationTimeout sets the timeout for one full check cycle.
func WithOperationTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		n.operationTimeout = d
	}
}

// WithLedgerRetentionDays sets how many days of delivery records are
// kept before pruning.
func WithLedgerRetentionDays(days int) Option {
	return func(n *Notifier) {
		n.retentionDays = days
	}
}

// New creates a Notifier with the given collaborators and options.
func New(subs notify.SubscriptionRepository, habits HabitSource, todos TodoSource, sender notify.Sender, ledger *notify.Ledger, opts ...Option) *Notifier {
	n := &Notifier{
		subs:             subs,
		habits:           habits,
		todos:            todos,
		sender:           sender,
		ledger:           ledger,
		interval:         15 * time.Minute,
		operationTimeout: 60 * time.Second,
		retentionDays:    30,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Start runs the notifier with a ticker loop. Runs until the context is
// cancelled, then waits for in-flight cycles before returning.
func (n *Notifier) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "Notifier started", "interval", n.interval)

	// Check immediately on startup
	startupCtx, startupCancel := context.WithTimeout(context.Background(), n.operationTimeout)
	if err := n.RunOnce(startupCtx, time.Now()); err != nil {
		slog.ErrorContext(startupCtx, "Error running reminder cycle on startup", "error", err)
	}
	startupCancel()

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n.wg.Go(func() {
				opCtx, cancel := context.WithTimeout(context.Background(), n.operationTimeout)
				defer cancel()
				if err := n.RunOnce(opCtx, time.Now()); err != nil {
					slog.ErrorContext(opCtx, "Error running reminder cycle", "error", err)
				}
			})
		case <-ctx.Done():
			slog.InfoContext(ctx, "Shutdown requested, waiting for in-flight cycles...")
			n.wg.Wait()
			slog.InfoContext(ctx, "Notifier stopped gracefully")
			return nil
		}
	}
}

// RunOnce executes a single reminder cycle as of the given instant.
func (n *Notifier) RunOnce(ctx context.Context, now time.Time) error {
	subs, err := n.subs.ListSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	byUser := make(map[string][]*notify.Subscription)
	for _, sub := range subs {
		byUser[sub.UserID] = append(byUser[sub.UserID], sub)
	}

	for userID, userSubs := range byUser {
		if msg, ok := n.todoReminder(ctx, userID, now); ok {
			n.deliver(ctx, userSubs, msg)
		}
		if msg, ok := n.habitReminder(ctx, userID, now); ok {
			n.deliver(ctx, userSubs, msg)
		}
	}

	n.pruneLedger(ctx, now)
	return nil
}

// todoReminder builds the due-todo message for one user, or reports
// false when nothing is due. Days are framed in UTC; the server has no
// per-user zone to go on for todos.
func (n *Notifier) todoReminder(ctx context.Context, userID string, now time.Time) (notify.Message, bool) {
	due, err := n.todos.DueToday(ctx, userID, now, "UTC")
	if err != nil {
		slog.ErrorContext(ctx, "Failed to compute due todos", "user_id", userID, "error", err)
		return notify.Message{}, false
	}
	if len(due) == 0 {
		return notify.Message{}, false
	}

	body := fmt.Sprintf("%d todos are due today", len(due))
	if len(due) == 1 {
		body = fmt.Sprintf("%q is due today", due[0].Title)
	}

	return notify.Message{
		UserID:  userID,
		Kind:    notify.KindTodoDue,
		DateKey: civil.DateKey(now, time.UTC),
		Title:   "Todos due today",
		Body:    body,
	}, true
}

// habitReminder builds the due-habit message for one user. A habit is
// due when its recurrence rule schedules today, framed in the habit's
// own timezone, and today's key is in neither the completion nor the
// skipped set.
func (n *Notifier) habitReminder(ctx context.Context, userID string, now time.Time) (notify.Message, bool) {
	habits, err := n.habits.FindHabitsByUser(ctx, userID, false)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list habits", "user_id", userID, "error", err)
		return notify.Message{}, false
	}

	var due []*domain.Habit
	for _, h := range habits {
		rule := recurrence.ForHabit(h)
		if rule == nil {
			slog.WarnContext(ctx, "Habit has unknown frequency, skipping", "habit_id", h.ID, "frequency", h.Frequency)
			continue
		}

		loc := time.UTC
		if h.Timezone != nil {
			resolved, err := civil.Zone(*h.Timezone)
			if err != nil {
				slog.WarnContext(ctx, "Habit has unresolvable timezone, skipping", "habit_id", h.ID, "error", err)
				continue
			}
			loc = resolved
		}

		key := civil.DateKey(now, loc)
		if rule.ScheduledOn(now, loc) && !h.CompletionDateKeys.Has(key) && !h.SkippedDateKeys.Has(key) {
			due = append(due, h)
		}
	}
	if len(due) == 0 {
		return notify.Message{}, false
	}

	body := fmt.Sprintf("%d habits are waiting for a check-in", len(due))
	if len(due) == 1 {
		body = fmt.Sprintf("%q is waiting for a check-in", due[0].Title)
	}

	return notify.Message{
		UserID:  userID,
		Kind:    notify.KindHabitDue,
		DateKey: civil.DateKey(now, time.UTC),
		Title:   "Habits due today",
		Body:    body,
	}, true
}

// deliver pushes the message to each subscription, at most once per
// subscription, day, and kind. The ledger row is written before the
// send, so a failed push is not retried until the next day.
func (n *Notifier) deliver(ctx context.Context, subs []*notify.Subscription, msg notify.Message) {
	for _, sub := range subs {
		fresh, err := n.ledger.MarkDelivered(ctx, sub.ID, msg.DateKey, msg.Kind)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to record delivery", "subscription_id", sub.ID, "error", err)
			continue
		}
		if !fresh {
			continue
		}

		if err := n.sender.Send(ctx, sub, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to push reminder",
				"subscription_id", sub.ID,
				"kind", msg.Kind,
				"error", err)
			continue
		}

		slog.InfoContext(ctx, "Reminder delivered",
			"subscription_id", sub.ID,
			"kind", msg.Kind,
			"date_key", msg.DateKey)
	}
}

func (n *Notifier) pruneLedger(ctx context.Context, now time.Time) {
	cutoff := civil.DateKey(now.AddDate(0, 0, -n.retentionDays), time.UTC)
	pruned, err := n.ledger.PruneBefore(ctx, cutoff)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to prune delivery ledger", "error", err)
		return
	}
	if pruned > 0 {
		slog.InfoContext(ctx, "Pruned delivery ledger", "rows", pruned, "before", cutoff)
	}
}
