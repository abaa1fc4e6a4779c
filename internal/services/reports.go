package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"pennywise/internal/core"
	"pennywise/internal/insight"
	"pennywise/internal/storage"
)

// ReportService aggregates the ledger over a date range and asks the model
// for a narrative. Producing a report also evaluates the budget streak.
type ReportService struct {
	deps   Deps
	writer *insight.Writer
}

func NewReportService(deps Deps, writer *insight.Writer) *ReportService {
	return &ReportService{deps: deps, writer: writer}
}

// Generate builds the report for [start, end]. Empty bounds default to the
// current month up to today.
func (s *ReportService) Generate(ctx context.Context, user core.User, start, end string) (core.Report, error) {
	today := s.deps.today()
	r, err := core.NewReportRange(start, end, today)
	if err != nil {
		return core.Report{}, err
	}

	err = s.deps.Repo.InTx(ctx, func(q *storage.Queries) error {
		return evaluateBudgetStreak(ctx, q, user.ID, today)
	})
	if err != nil {
		return core.Report{}, err
	}

	report, err := s.aggregate(ctx, user.ID, r)
	if err != nil {
		return core.Report{}, err
	}

	if dom, ok := report.DominantExpense(); ok {
		msg := fmt.Sprintf("Insight: %s accounts for %d%% of your expenses from %s.",
			dom.Name, core.Percent(dom.Amount, report.Summary.TotalExpenses), r)
		box := &outbox{username: user.Username}
		err := s.deps.Repo.InTx(ctx, func(q *storage.Queries) error {
			return notify(ctx, q, box, user.ID, core.NotifyInsight, msg)
		})
		if err != nil {
			return core.Report{}, err
		}
		s.deps.flush(ctx, box)
	}

	report.Insights = s.writer.Narrate(ctx, report, user.Currency)
	slog.InfoContext(ctx, "Report generated",
		"component", "reports",
		"user_id", user.ID,
		"period", r.String(),
		"categories", len(report.Categories))
	return report, nil
}

// ExpenseCategories returns the period's expense totals, largest first,
// without any side effects.
func (s *ReportService) ExpenseCategories(ctx context.Context, user core.User, start, end string) ([]core.CategoryTotal, error) {
	r, err := core.NewReportRange(start, end, s.deps.today())
	if err != nil {
		return nil, err
	}
	cats, err := s.deps.Repo.CategoryTotals(ctx, user.ID, r)
	if err != nil {
		return nil, err
	}
	return core.Report{Categories: cats}.ExpenseCategories(), nil
}

// Chat answers a free-text question about caller-supplied financial data.
func (s *ReportService) Chat(ctx context.Context, user core.User, query string, data core.Report) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("%w: query", core.ErrMissingField)
	}
	return s.writer.Answer(ctx, query, data, user.Currency), nil
}

// aggregate runs the independent read queries concurrently.
func (s *ReportService) aggregate(ctx context.Context, userID int64, r core.ReportRange) (core.Report, error) {
	var (
		report core.Report
		repo   = s.deps.Repo
	)
	report.Summary.Range = r

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		income, expenses, err := repo.Totals(gctx, userID, r)
		if err != nil {
			return err
		}
		report.Summary.TotalIncome = income
		report.Summary.TotalExpenses = expenses
		report.Summary.NetBalance = income.Sub(expenses)
		return nil
	})
	g.Go(func() (err error) {
		report.Categories, err = repo.CategoryTotals(gctx, userID, r)
		return err
	})
	g.Go(func() (err error) {
		report.Goals, err = repo.GoalContributions(gctx, userID, r)
		return err
	})
	g.Go(func() (err error) {
		report.Budgets, err = repo.BudgetUsageBetween(gctx, userID, r)
		return err
	})
	g.Go(func() (err error) {
		report.Streaks, err = repo.GetStreaks(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Report{}, err
	}
	return report, nil
}
