package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pennywise/internal/core"
)

// CreateUser inserts a user and returns its id. A username or email clash is
// reported as core.ErrDuplicateIdentity.
func (q *Queries) CreateUser(ctx context.Context, u core.User) (int64, error) {
	var exists int
	err := q.queryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`,
		u.Username, u.Email).Scan(&exists)
	if err != nil {
		return 0, dbErr("check identity", err)
	}
	if exists > 0 {
		return 0, core.ErrDuplicateIdentity
	}

	var id int64
	err = q.queryRow(ctx, `
		INSERT INTO users (username, email, password_hash, full_name, currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.FullName, u.Currency, formatTime(time.Now()),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, core.ErrDuplicateIdentity
		}
		return 0, dbErr("insert user", err)
	}
	return id, nil
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var (
		u       core.User
		created dbTime
	)
	err := q.queryRow(ctx, `
		SELECT id, username, email, password_hash, full_name, currency, created_at
		FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Currency, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("%w: user %q", core.ErrNotFound, username)
	}
	if err != nil {
		return core.User{}, dbErr("get user", err)
	}
	u.CreatedAt = created.Time
	return u, nil
}
