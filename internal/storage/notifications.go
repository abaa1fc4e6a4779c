package storage

import (
	"context"
	"fmt"
	"time"

	"pennywise/internal/core"
)

// InsertNotification appends a notification and returns it as stored.
func (q *Queries) InsertNotification(ctx context.Context, userID int64, typ core.NotificationType, message string) (core.Notification, error) {
	n := core.Notification{
		UserID:    userID,
		Message:   message,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
	}
	err := q.queryRow(ctx, `
		INSERT INTO notifications (user_id, message, type, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		userID, message, string(typ), formatTime(n.CreatedAt),
	).Scan(&n.ID)
	if err != nil {
		return core.Notification{}, dbErr("insert notification", err)
	}
	return n, nil
}

// ListNotifications returns the user's notifications, newest first.
func (q *Queries) ListNotifications(ctx context.Context, userID int64) ([]core.Notification, error) {
	rows, err := q.query(ctx, `
		SELECT id, user_id, message, type, created_at, is_read
		FROM notifications WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, dbErr("list notifications", err)
	}
	defer rows.Close()

	out := []core.Notification{}
	for rows.Next() {
		var (
			n       core.Notification
			typ     string
			created dbTime
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &typ, &created, &n.IsRead); err != nil {
			return nil, dbErr("scan notification", err)
		}
		n.Type = core.NotificationType(typ)
		n.CreatedAt = created.Time
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("list notifications", err)
	}
	return out, nil
}

func (q *Queries) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	res, err := q.exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return dbErr("mark notification read", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: notification %d", core.ErrNotFound, id)
	}
	return nil
}
