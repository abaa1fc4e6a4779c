package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pennywise/internal/amqp"
	"pennywise/internal/core"
	"pennywise/internal/insight"
	"pennywise/internal/storage"
)

// Categorizer labels a transaction description. It never fails.
type Categorizer interface {
	Categorize(ctx context.Context, description string) (string, insight.Source)
}

// LedgerService records transactions and applies their side effects on
// budgets, goals and achievements.
type LedgerService struct {
	deps        Deps
	categorizer Categorizer
}

func NewLedgerService(deps Deps, categorizer Categorizer) *LedgerService {
	return &LedgerService{deps: deps, categorizer: categorizer}
}

func (s *LedgerService) List(ctx context.Context, user core.User) ([]core.Transaction, error) {
	return s.deps.Repo.ListTransactions(ctx, user.ID)
}

// Create validates and stores a transaction, returning it with its derived
// category. Budget alerts, goal milestones and achievements are written in
// the same database transaction as the row itself.
func (s *LedgerService) Create(ctx context.Context, user core.User, draft core.TransactionDraft) (core.Transaction, error) {
	t, err := draft.Validate()
	if err != nil {
		return core.Transaction{}, err
	}
	t.UserID = user.ID

	// Reject foreign references before paying for a model call.
	if err := checkReferences(ctx, s.deps.Repo.Queries, t); err != nil {
		return core.Transaction{}, err
	}

	category, source := s.categorizer.Categorize(ctx, t.Description)
	t.Category = category

	box := &outbox{username: user.Username}
	err = s.deps.Repo.InTx(ctx, func(q *storage.Queries) error {
		if err := checkReferences(ctx, q, t); err != nil {
			return err
		}

		var budget core.Budget
		var spentBefore core.Money
		if t.BudgetID != nil && t.Amount.IsExpense() {
			if budget, err = q.GetBudget(ctx, user.ID, *t.BudgetID); err != nil {
				return err
			}
			if spentBefore, err = q.BudgetSpent(ctx, budget.ID); err != nil {
				return err
			}
		}

		if t.ID, err = q.InsertTransaction(ctx, t); err != nil {
			return err
		}

		if t.BudgetID != nil && t.Amount.IsExpense() {
			spentAfter := spentBefore.Add(t.Amount.Abs())
			if alert := core.BudgetCrossing(spentBefore, spentAfter, budget.Limit); alert != core.BudgetOK {
				msg := core.BudgetAlertMessage(alert, budget.Category, spentAfter, budget.Limit)
				if err := notify(ctx, q, box, user.ID, core.NotifyBudget, msg); err != nil {
					return err
				}
			}
		}

		if t.GoalID != nil && t.Amount.IsIncome() {
			if err := s.applyGoalProgress(ctx, q, box, user.ID, *t.GoalID, t.Amount); err != nil {
				return err
			}
		}

		count, err := q.CountTransactions(ctx, user.ID)
		if err != nil {
			return err
		}
		if count == 1 {
			return award(ctx, q, user.ID, core.FirstStep)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction created",
		"component", "ledger",
		"user_id", user.ID,
		"transaction_id", t.ID,
		"amount", t.Amount.String(),
		"category", t.Category,
		"category_source", source)

	box.events = append([]amqp.Event{amqp.NewTransactionEvent(amqp.TransactionCreated, user.Username, t)}, box.events...)
	s.deps.flush(ctx, box)
	return t, nil
}

func (s *LedgerService) applyGoalProgress(ctx context.Context, q *storage.Queries, box *outbox, userID, goalID int64, amount core.Money) error {
	p, err := q.AddGoalProgress(ctx, userID, goalID, amount)
	if err != nil {
		return err
	}
	for _, m := range core.CrossedMilestones(p.Before, p.After, p.Target) {
		if err := notify(ctx, q, box, userID, core.NotifySavings, core.MilestoneMessage(p.Name, m)); err != nil {
			return err
		}
	}
	if p.After.Cents >= p.Target.Cents {
		return award(ctx, q, userID, core.SavingsStar)
	}
	return nil
}

// Delete removes a transaction and reverses its goal contribution.
// Notifications and achievements already granted are kept.
func (s *LedgerService) Delete(ctx context.Context, user core.User, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: transaction id", core.ErrMissingField)
	}
	var removed core.Transaction
	err := s.deps.Repo.InTx(ctx, func(q *storage.Queries) error {
		t, err := q.GetTransaction(ctx, user.ID, id)
		if err != nil {
			return err
		}
		if t.GoalID != nil && t.Amount.IsIncome() {
			if err := q.SubtractGoalProgress(ctx, user.ID, *t.GoalID, t.Amount); err != nil {
				return err
			}
		}
		removed = t
		return q.DeleteTransaction(ctx, user.ID, id)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted", "component", "ledger", "user_id", user.ID, "transaction_id", id)
	box := &outbox{username: user.Username}
	box.add(amqp.NewTransactionEvent(amqp.TransactionDeleted, user.Username, removed))
	s.deps.flush(ctx, box)
	return nil
}

// checkReferences maps a missing or foreign goal or budget to
// ErrInvalidReference.
func checkReferences(ctx context.Context, q *storage.Queries, t core.Transaction) error {
	if t.GoalID != nil {
		if _, err := q.GetGoal(ctx, t.UserID, *t.GoalID); err != nil {
			return asInvalidReference(err, "goal_id", *t.GoalID)
		}
	}
	if t.BudgetID != nil {
		if _, err := q.GetBudget(ctx, t.UserID, *t.BudgetID); err != nil {
			return asInvalidReference(err, "budget_id", *t.BudgetID)
		}
	}
	return nil
}

func asInvalidReference(err error, field string, id int64) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w: %s %d", core.ErrInvalidReference, field, id)
	}
	return err
}
