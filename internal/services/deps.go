// Package services implements the budgeting operations on top of storage:
// accounts, the transaction ledger with its side effects, budgets, savings
// goals, gamification, notifications and reports.
package services

import (
	"context"
	"log/slog"
	"time"

	"pennywise/internal/amqp"
	"pennywise/internal/core"
	"pennywise/internal/storage"
)

// Publisher sends committed events to the message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, e amqp.Event) error
}

// Deps are shared by every service. Publisher may be nil.
type Deps struct {
	Repo      *storage.Repository
	Publisher Publisher
	Clock     func() time.Time
}

func (d Deps) now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock()
}

func (d Deps) today() core.Date {
	if d.Clock == nil {
		return core.Today()
	}
	return core.NewDate(d.Clock())
}

// outbox collects events inside a database transaction; they are published
// only after the commit.
type outbox struct {
	username string
	events   []amqp.Event
}

func (o *outbox) add(e amqp.Event) {
	o.events = append(o.events, e)
}

// flush publishes collected events. Failures are logged and never returned:
// the database already holds the truth.
func (d Deps) flush(ctx context.Context, o *outbox) {
	if len(o.events) == 0 {
		return
	}
	if d.Publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping events",
			"component", "services", "count", len(o.events))
		return
	}
	for _, e := range o.events {
		if err := d.Publisher.PublishEvent(ctx, e); err != nil {
			slog.ErrorContext(ctx, "Failed to publish event",
				"component", "services", "type", e.Type, "message_id", e.MessageID, "error", err)
		}
	}
}

// notify stores a notification and queues its event.
func notify(ctx context.Context, q *storage.Queries, o *outbox, userID int64, typ core.NotificationType, message string) error {
	n, err := q.InsertNotification(ctx, userID, typ, message)
	if err != nil {
		return err
	}
	o.add(amqp.NewNotificationEvent(o.username, n))
	return nil
}
