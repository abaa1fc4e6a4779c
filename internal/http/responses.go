package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"pennywise/internal/core"
	applog "pennywise/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	UserID   int64  `json:"user_id"`
}

type createdResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type transactionCreatedResponse struct {
	Message    string `json:"message"`
	ID         int64  `json:"id"`
	AICategory string `json:"ai_category"`
}

type transactionJSON struct {
	ID              int64      `json:"id"`
	Amount          core.Money `json:"amount"`
	Description     string     `json:"description"`
	TransactionDate core.Date  `json:"transaction_date"`
	GoalID          *int64     `json:"goal_id"`
	BudgetID        *int64     `json:"budget_id"`
	AICategory      string     `json:"ai_category"`
	GoalName        *string    `json:"goal_name"`
	BudgetCategory  *string    `json:"budget_category"`
	CreatedAt       time.Time  `json:"created_at"`
}

func newTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:              t.ID,
		Amount:          t.Amount,
		Description:     t.Description,
		TransactionDate: t.Date,
		GoalID:          t.GoalID,
		BudgetID:        t.BudgetID,
		AICategory:      t.Category,
		GoalName:        optionalString(t.GoalName),
		BudgetCategory:  optionalString(t.BudgetCategory),
		CreatedAt:       t.CreatedAt,
	}
}

type goalJSON struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	TargetAmount  core.Money `json:"target_amount"`
	CurrentAmount core.Money `json:"current_amount"`
	Progress      int64      `json:"progress"`
	Deadline      *core.Date `json:"deadline"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newGoalJSON(g core.SavingsGoal) goalJSON {
	return goalJSON{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.Target,
		CurrentAmount: g.Current,
		Progress:      core.Percent(g.Current, g.Target),
		Deadline:      g.Deadline,
		CreatedAt:     g.CreatedAt,
	}
}

type budgetJSON struct {
	ID          int64       `json:"id"`
	Category    string      `json:"category"`
	Amount      core.Money  `json:"amount"`
	Period      core.Period `json:"period"`
	SpentAmount core.Money  `json:"spent_amount"`
	CreatedAt   time.Time   `json:"created_at"`
}

func newBudgetJSON(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:          b.ID,
		Category:    b.Category,
		Amount:      b.Limit,
		Period:      b.Period,
		SpentAmount: b.Spent,
		CreatedAt:   b.CreatedAt,
	}
}

type achievementJSON struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earned_at"`
}

type notificationJSON struct {
	ID        int64                 `json:"id"`
	Message   string                `json:"message"`
	Type      core.NotificationType `json:"type"`
	CreatedAt time.Time             `json:"created_at"`
	IsRead    bool                  `json:"is_read"`
}

type reportJSON struct {
	Summary    summaryJSON        `json:"summary"`
	Categories []categoryJSON     `json:"categories"`
	Goals      []contributionJSON `json:"goals"`
	Budgets    []budgetUsageJSON  `json:"budgets"`
	Insights   string             `json:"insights"`
	Streaks    streaksJSON        `json:"streaks"`
}

type summaryJSON struct {
	Period        string     `json:"period"`
	StartDate     core.Date  `json:"start_date"`
	EndDate       core.Date  `json:"end_date"`
	TotalIncome   core.Money `json:"total_income"`
	TotalExpenses core.Money `json:"total_expenses"`
	NetBalance    core.Money `json:"net_balance"`
}

type categoryJSON struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"amount"`
	Type   string     `json:"type"`
}

type contributionJSON struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Current     core.Money `json:"current"`
	Target      core.Money `json:"target"`
	Contributed core.Money `json:"contributed"`
}

type budgetUsageJSON struct {
	ID       int64       `json:"id"`
	Category string      `json:"category"`
	Period   core.Period `json:"period"`
	Spent    core.Money  `json:"spent"`
	Limit    core.Money  `json:"limit"`
}

type streaksJSON struct {
	Login  int `json:"login"`
	Budget int `json:"budget"`
}

func newReportJSON(r core.Report) reportJSON {
	out := reportJSON{
		Summary: summaryJSON{
			Period:        r.Summary.Range.String(),
			StartDate:     r.Summary.Range.Start,
			EndDate:       r.Summary.Range.End,
			TotalIncome:   r.Summary.TotalIncome,
			TotalExpenses: r.Summary.TotalExpenses,
			NetBalance:    r.Summary.NetBalance,
		},
		Categories: make([]categoryJSON, 0, len(r.Categories)),
		Goals:      make([]contributionJSON, 0, len(r.Goals)),
		Budgets:    make([]budgetUsageJSON, 0, len(r.Budgets)),
		Insights:   r.Insights,
		Streaks:    streaksJSON{Login: r.Streaks.Login, Budget: r.Streaks.Budget},
	}
	for _, c := range r.Categories {
		out.Categories = append(out.Categories, categoryJSON{Name: c.Name, Amount: c.Amount, Type: c.Kind})
	}
	for _, g := range r.Goals {
		out.Goals = append(out.Goals, contributionJSON(g))
	}
	for _, b := range r.Budgets {
		out.Budgets = append(out.Budgets, budgetUsageJSON(b))
	}
	return out
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", applog.FieldComponent, applog.ComponentHTTP, applog.FieldError, err)
	}
}

// writeError maps an error kind to its status code. Every failure body is
// {"error": message}.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, errorType := http.StatusInternalServerError, applog.ErrorTypeInternal
	switch {
	case errors.Is(err, core.ErrInvalidCredentials):
		status, errorType = http.StatusUnauthorized, applog.ErrorTypeAuth
	case errors.Is(err, core.ErrNotFound):
		status, errorType = http.StatusNotFound, applog.ErrorTypeNotFound
	case errors.Is(err, core.ErrDuplicateIdentity):
		status, errorType = http.StatusBadRequest, applog.ErrorTypeConflict
	case core.IsValidation(err):
		status, errorType = http.StatusBadRequest, applog.ErrorTypeValidation
	case errors.Is(err, core.ErrDatabase):
		errorType = applog.ErrorTypeDatabase
	}

	fields := applog.NewFields().
		WithComponent(applog.ComponentHTTP).
		WithError(err, errorType).
		WithHTTPRequest(r.Method, r.URL.Path, "", "")
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
	} else {
		slog.DebugContext(r.Context(), "Request rejected", fields.ToSlice()...)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
