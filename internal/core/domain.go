package core

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

const (
	Monthly Period = "monthly"
	Weekly  Period = "weekly"
)

const (
	NotifyBudget  NotificationType = "budget"
	NotifySavings NotificationType = "savings"
	NotifyInsight NotificationType = "insight"
)

const DefaultCurrency = "USD"

type (
	Period           string
	NotificationType string

	// Date is a calendar day in UTC.
	Date struct {
		time.Time
	}

	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
		FullName     string
		Currency     string
		CreatedAt    time.Time
	}

	Transaction struct {
		ID          int64
		UserID      int64
		Amount      Money
		Description string
		Date        Date
		GoalID      *int64
		BudgetID    *int64
		Category    string
		CreatedAt   time.Time

		// Filled by list queries.
		GoalName       string
		BudgetCategory string
	}

	SavingsGoal struct {
		ID        int64
		UserID    int64
		Name      string
		Target    Money
		Current   Money
		Deadline  *Date
		CreatedAt time.Time
	}

	// Budget carries Spent only when loaded through an aggregate query.
	Budget struct {
		ID        int64
		UserID    int64
		Category  string
		Limit     Money
		Period    Period
		Spent     Money
		CreatedAt time.Time
	}

	Achievement struct {
		ID          int64
		UserID      int64
		Name        string
		Description string
		Icon        string
		EarnedAt    time.Time
	}

	Notification struct {
		ID        int64
		UserID    int64
		Message   string
		Type      NotificationType
		CreatedAt time.Time
		IsRead    bool
	}

	Streaks struct {
		Login  int
		Budget int
	}
)

// NewDate truncates t to its UTC calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Today is the current UTC calendar day.
func Today() Date { return NewDate(time.Now()) }

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q must be YYYY-MM-DD", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey identifies the calendar month, e.g. "2024-03".
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date {
	return Date{Time: time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)}
}

func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// ParsePeriod maps an optional period string to a Period. Empty means monthly.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Monthly, nil
	case Monthly, Weekly:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q must be monthly or weekly", ErrInvalidPeriod, s)
	}
}
