package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"pennywise/internal/core"
)

type EventType string

const (
	TransactionCreated  EventType = "transaction.created"
	TransactionDeleted  EventType = "transaction.deleted"
	NotificationCreated EventType = "notification.created"
)

// TransactionPayload is the wire form of a ledger entry. Amounts travel as
// decimal strings.
type TransactionPayload struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"transaction_date"`
	Category    string `json:"category"`
	GoalID      *int64 `json:"goal_id,omitempty"`
	BudgetID    *int64 `json:"budget_id,omitempty"`
}

type NotificationPayload struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is the envelope published after a ledger change commits.
type Event struct {
	MessageID    string               `json:"message_id"`
	Type         EventType            `json:"type"`
	OccurredAt   time.Time            `json:"occurred_at"`
	Username     string               `json:"username"`
	Transaction  *TransactionPayload  `json:"transaction,omitempty"`
	Notification *NotificationPayload `json:"notification,omitempty"`
}

func newEvent(typ EventType, username string) Event {
	return Event{
		MessageID:  uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Username:   username,
	}
}

func NewTransactionEvent(typ EventType, username string, t core.Transaction) Event {
	e := newEvent(typ, username)
	e.Transaction = &TransactionPayload{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount.String(),
		Description: t.Description,
		Date:        t.Date.String(),
		Category:    t.Category,
		GoalID:      t.GoalID,
		BudgetID:    t.BudgetID,
	}
	return e
}

func NewNotificationEvent(username string, n core.Notification) Event {
	e := newEvent(NotificationCreated, username)
	e.Notification = &NotificationPayload{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	}
	return e
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
