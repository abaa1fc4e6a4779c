package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"pennywise/internal/core"
	"pennywise/internal/storage"
)

// AccountService is the account directory and credential store.
type AccountService struct {
	deps Deps
	cost int
}

// NewAccountService hashes passwords with the given bcrypt cost; zero means
// bcrypt.DefaultCost.
func NewAccountService(deps Deps, cost int) *AccountService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AccountService{deps: deps, cost: cost}
}

// Register validates and stores a new user.
func (s *AccountService) Register(ctx context.Context, reg core.Registration) (int64, error) {
	reg, err := reg.Validate()
	if err != nil {
		return 0, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.deps.Repo.CreateUser(ctx, core.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hash),
		FullName:     reg.FullName,
		Currency:     reg.Currency,
	})
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "User registered", "component", "accounts", "user_id", id, "username", reg.Username)
	return id, nil
}

// Login verifies credentials and advances the login streak.
func (s *AccountService) Login(ctx context.Context, username, password string) (core.User, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return core.User{}, fmt.Errorf("%w: username", core.ErrMissingField)
	case password == "":
		return core.User{}, fmt.Errorf("%w: password", core.ErrMissingField)
	}

	u, err := s.deps.Repo.GetUserByUsername(ctx, username)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return core.User{}, core.ErrInvalidCredentials
	}

	var streak int
	err = s.deps.Repo.InTx(ctx, func(q *storage.Queries) error {
		streak, err = recordLogin(ctx, q, u.ID, s.deps.today())
		return err
	})
	if err != nil {
		return core.User{}, err
	}
	slog.InfoContext(ctx, "User logged in", "component", "accounts", "user_id", u.ID, "login_streak", streak)
	return u, nil
}

// ResolveUser maps the X-Username identity to a user.
func (s *AccountService) ResolveUser(ctx context.Context, username string) (core.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return core.User{}, fmt.Errorf("%w: X-Username header", core.ErrMissingField)
	}
	return s.deps.Repo.GetUserByUsername(ctx, username)
}
