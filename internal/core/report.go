package core

import (
	"fmt"
	"sort"
)

const (
	KindIncome  = "Income"
	KindExpense = "Expense"
)

// ReportRange is an inclusive date range.
type ReportRange struct {
	Start Date
	End   Date
}

func (r ReportRange) String() string {
	return r.Start.String() + " to " + r.End.String()
}

// CategoryTotal is the absolute sum of one category and direction.
type CategoryTotal struct {
	Name   string
	Amount Money
	Kind   string
}

type GoalContribution struct {
	ID          int64
	Name        string
	Current     Money
	Target      Money
	Contributed Money
}

type BudgetUsage struct {
	ID       int64
	Category string
	Period   Period
	Spent    Money
	Limit    Money
}

type ReportSummary struct {
	Range         ReportRange
	TotalIncome   Money
	TotalExpenses Money
	NetBalance    Money
}

type Report struct {
	Summary    ReportSummary
	Categories []CategoryTotal
	Goals      []GoalContribution
	Budgets    []BudgetUsage
	Insights   string
	Streaks    Streaks
}

// ExpenseCategories returns the expense totals, largest first.
func (r Report) ExpenseCategories() []CategoryTotal {
	var out []CategoryTotal
	for _, c := range r.Categories {
		if c.Kind == KindExpense {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.Cents > out[j].Amount.Cents })
	return out
}

// DominantExpense returns the expense category holding more than half of the
// period's total expenses, if any.
func (r Report) DominantExpense() (CategoryTotal, bool) {
	total := r.Summary.TotalExpenses.Cents
	if total <= 0 {
		return CategoryTotal{}, false
	}
	for _, c := range r.ExpenseCategories() {
		if c.Amount.Cents*2 > total {
			return c, true
		}
	}
	return CategoryTotal{}, false
}

// WithinLimits reports whether no budget spent more than its limit.
func WithinLimits(budgets []BudgetUsage) bool {
	for _, b := range budgets {
		if b.Spent.Cents > b.Limit.Cents {
			return false
		}
	}
	return true
}

// NewReportRange resolves optional YYYY-MM-DD bounds. A missing start is the
// first day of today's month and a missing end is today.
func NewReportRange(start, end string, today Date) (ReportRange, error) {
	r := ReportRange{Start: today.FirstOfMonth(), End: today}
	var err error
	if start != "" {
		if r.Start, err = ParseDate(start); err != nil {
			return ReportRange{}, err
		}
	}
	if end != "" {
		if r.End, err = ParseDate(end); err != nil {
			return ReportRange{}, err
		}
	}
	if r.Start.After(r.End.Time) {
		return ReportRange{}, fmt.Errorf("%w: start_date %s is after end_date %s", ErrInvalidDate, r.Start, r.End)
	}
	return r, nil
}

// PreviousMonth is the full calendar month before d's month.
func PreviousMonth(d Date) ReportRange {
	first := d.FirstOfMonth()
	return ReportRange{
		Start: Date{Time: first.AddDate(0, -1, 0)},
		End:   first.AddDays(-1),
	}
}
