package services

import (
	"context"
	"log/slog"

	"pennywise/internal/core"
	"pennywise/internal/storage"
)

// award grants a badge once. Repeated awards are no-ops.
func award(ctx context.Context, q *storage.Queries, userID int64, badge core.Badge) error {
	granted, err := q.AwardAchievement(ctx, userID, badge)
	if err != nil {
		return err
	}
	if granted {
		slog.InfoContext(ctx, "Achievement awarded",
			"component", "gamification", "user_id", userID, "achievement", badge.Name)
	}
	return nil
}

// recordLogin advances the login streak and awards Consistent Planner.
func recordLogin(ctx context.Context, q *storage.Queries, userID int64, today core.Date) (int, error) {
	streak, err := q.RecordLogin(ctx, userID, today)
	if err != nil {
		return 0, err
	}
	if streak >= core.ConsistentPlannerDays {
		if err := award(ctx, q, userID, core.ConsistentPlanner); err != nil {
			return 0, err
		}
	}
	return streak, nil
}

// evaluateBudgetStreak applies the monthly budget-adherence rule, judged on
// the calendar month before today against the budgets that existed by its
// end. Users with no such budget are skipped.
func evaluateBudgetStreak(ctx context.Context, q *storage.Queries, userID int64, today core.Date) error {
	usage, err := q.BudgetUsageExisting(ctx, userID, core.PreviousMonth(today))
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		return nil
	}
	streak, updated, err := q.RecordBudgetCheck(ctx, userID, today, core.WithinLimits(usage))
	if err != nil || !updated {
		return err
	}
	slog.InfoContext(ctx, "Budget streak evaluated",
		"component", "gamification", "user_id", userID, "streak", streak)
	if streak >= core.BudgetMasterMonths {
		return award(ctx, q, userID, core.BudgetMaster)
	}
	return nil
}
