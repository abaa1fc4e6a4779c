package services

import (
	"context"
	"fmt"
	"log/slog"

	"pennywise/internal/core"
	"pennywise/internal/storage"
)

// BudgetService manages spending limits. Spend is derived at read time.
type BudgetService struct {
	deps Deps
}

func NewBudgetService(deps Deps) *BudgetService {
	return &BudgetService{deps: deps}
}

func (s *BudgetService) List(ctx context.Context, user core.User) ([]core.Budget, error) {
	return s.deps.Repo.ListBudgets(ctx, user.ID)
}

func (s *BudgetService) Create(ctx context.Context, user core.User, draft core.BudgetDraft) (core.Budget, error) {
	b, err := draft.Validate()
	if err != nil {
		return core.Budget{}, err
	}
	b.UserID = user.ID
	b.CreatedAt = s.deps.now().UTC()

	box := &outbox{username: user.Username}
	err = s.deps.Repo.InTx(ctx, func(q *storage.Queries) error {
		if b.ID, err = q.CreateBudget(ctx, b); err != nil {
			return err
		}
		msg := fmt.Sprintf("New %s budget created for %s with a limit of %s.", b.Period, b.Category, b.Limit)
		return notify(ctx, q, box, user.ID, core.NotifyBudget, msg)
	})
	if err != nil {
		return core.Budget{}, err
	}
	slog.InfoContext(ctx, "Budget created", "component", "budgets", "user_id", user.ID, "budget_id", b.ID)
	s.deps.flush(ctx, box)
	return b, nil
}

// GoalService manages savings goals.
type GoalService struct {
	deps Deps
}

func NewGoalService(deps Deps) *GoalService {
	return &GoalService{deps: deps}
}

func (s *GoalService) List(ctx context.Context, user core.User) ([]core.SavingsGoal, error) {
	return s.deps.Repo.ListGoals(ctx, user.ID)
}

func (s *GoalService) Create(ctx context.Context, user core.User, draft core.GoalDraft) (core.SavingsGoal, error) {
	g, err := draft.Validate()
	if err != nil {
		return core.SavingsGoal{}, err
	}
	g.UserID = user.ID

	box := &outbox{username: user.Username}
	err = s.deps.Repo.InTx(ctx, func(q *storage.Queries) error {
		if g.ID, err = q.CreateGoal(ctx, g); err != nil {
			return err
		}
		msg := fmt.Sprintf("New savings goal '%s' created with a target of %s.", g.Name, g.Target)
		return notify(ctx, q, box, user.ID, core.NotifySavings, msg)
	})
	if err != nil {
		return core.SavingsGoal{}, err
	}
	slog.InfoContext(ctx, "Savings goal created", "component", "goals", "user_id", user.ID, "goal_id", g.ID)
	s.deps.flush(ctx, box)
	return g, nil
}

// FeedService reads notifications and achievements.
type FeedService struct {
	deps Deps
}

func NewFeedService(deps Deps) *FeedService {
	return &FeedService{deps: deps}
}

func (s *FeedService) Notifications(ctx context.Context, user core.User) ([]core.Notification, error) {
	return s.deps.Repo.ListNotifications(ctx, user.ID)
}

func (s *FeedService) MarkRead(ctx context.Context, user core.User, id int64) error {
	return s.deps.Repo.MarkNotificationRead(ctx, user.ID, id)
}

func (s *FeedService) Achievements(ctx context.Context, user core.User) ([]core.Achievement, error) {
	return s.deps.Repo.ListAchievements(ctx, user.ID)
}
