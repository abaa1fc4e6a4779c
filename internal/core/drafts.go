package core

import (
	"fmt"
	"strings"
)

// Drafts are the unvalidated inputs of the create operations. Pointer
// fields distinguish "absent" from a zero value. Each Validate returns the
// normalized entity or the first validation error, before anything is
// written.

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

type Registration struct {
	Username string
	Email    string
	Password string
	FullName string
	Currency string
}

func (r Registration) Validate() (Registration, error) {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))

	switch {
	case r.Username == "":
		return r, fmt.Errorf("%w: username", ErrMissingField)
	case r.Email == "":
		return r, fmt.Errorf("%w: email", ErrMissingField)
	case r.Password == "":
		return r, fmt.Errorf("%w: password", ErrMissingField)
	case len(r.Password) > MaxPasswordBytes:
		return r, fmt.Errorf("%w: password exceeds %d bytes", ErrInvalidPassword, MaxPasswordBytes)
	}
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
	return r, nil
}

type TransactionDraft struct {
	Amount      *Money
	Description string
	Date        string
	GoalID      *int64
	BudgetID    *int64
}

func (d TransactionDraft) Validate() (Transaction, error) {
	desc := strings.TrimSpace(d.Description)
	switch {
	case d.Amount == nil:
		return Transaction{}, fmt.Errorf("%w: amount", ErrMissingField)
	case desc == "":
		return Transaction{}, fmt.Errorf("%w: description", ErrMissingField)
	case strings.TrimSpace(d.Date) == "":
		return Transaction{}, fmt.Errorf("%w: transaction_date", ErrMissingField)
	}
	if d.Amount.Cents == 0 {
		return Transaction{}, fmt.Errorf("%w: amount must not be zero", ErrInvalidAmount)
	}
	date, err := ParseDate(d.Date)
	if err != nil {
		return Transaction{}, err
	}
	if d.GoalID != nil && *d.GoalID <= 0 {
		return Transaction{}, fmt.Errorf("%w: goal_id %d", ErrInvalidReference, *d.GoalID)
	}
	if d.BudgetID != nil && *d.BudgetID <= 0 {
		return Transaction{}, fmt.Errorf("%w: budget_id %d", ErrInvalidReference, *d.BudgetID)
	}
	return Transaction{
		Amount:      *d.Amount,
		Description: desc,
		Date:        date,
		GoalID:      d.GoalID,
		BudgetID:    d.BudgetID,
	}, nil
}

type GoalDraft struct {
	Name     string
	Target   *Money
	Deadline string
}

func (d GoalDraft) Validate() (SavingsGoal, error) {
	name := strings.TrimSpace(d.Name)
	switch {
	case name == "":
		return SavingsGoal{}, fmt.Errorf("%w: name", ErrMissingField)
	case d.Target == nil:
		return SavingsGoal{}, fmt.Errorf("%w: target_amount", ErrMissingField)
	case d.Target.Cents <= 0:
		return SavingsGoal{}, fmt.Errorf("%w: target_amount must be greater than zero", ErrInvalidAmount)
	}
	g := SavingsGoal{Name: name, Target: *d.Target}
	if strings.TrimSpace(d.Deadline) != "" {
		deadline, err := ParseDate(d.Deadline)
		if err != nil {
			return SavingsGoal{}, err
		}
		g.Deadline = &deadline
	}
	return g, nil
}

type BudgetDraft struct {
	Category string
	Limit    *Money
	Period   string
}

func (d BudgetDraft) Validate() (Budget, error) {
	category := strings.TrimSpace(d.Category)
	switch {
	case category == "":
		return Budget{}, fmt.Errorf("%w: category", ErrMissingField)
	case d.Limit == nil:
		return Budget{}, fmt.Errorf("%w: amount", ErrMissingField)
	case d.Limit.Cents <= 0:
		return Budget{}, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	period, err := ParsePeriod(d.Period)
	if err != nil {
		return Budget{}, err
	}
	return Budget{Category: category, Limit: *d.Limit, Period: period}, nil
}
