// Package http exposes the budgeting services as a JSON API.
//
// This file holds the typed request bodies. Amount and id fields accept a
// JSON number or a numeric string so form-driven clients can post values
// as typed.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"pennywise/internal/core"
)

const maxBodyBytes = 1 << 20

// amountField is an optional decimal amount. null, "" and an absent key all
// leave it unset.
type amountField struct {
	set   bool
	value core.Money
}

func (a *amountField) UnmarshalJSON(b []byte) error {
	raw, isNull := unquote(b)
	if isNull {
		return nil
	}
	m, err := core.ParseMoney(raw)
	if err != nil {
		return err
	}
	a.set, a.value = true, m
	return nil
}

func (a amountField) money() *core.Money {
	if !a.set {
		return nil
	}
	m := a.value
	return &m
}

// idField is an optional positive row id.
type idField struct {
	set   bool
	value int64
}

func (f *idField) UnmarshalJSON(b []byte) error {
	raw, isNull := unquote(b)
	if isNull {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not an id", core.ErrInvalidReference, raw)
	}
	f.set, f.value = true, n
	return nil
}

func (f idField) ptr() *int64 {
	if !f.set {
		return nil
	}
	n := f.value
	return &n
}

// unquote strips string quotes and reports JSON null or an empty string.
func unquote(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return "", true
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return "", true
		}
	}
	s = strings.TrimSpace(s)
	return s, s == ""
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Currency string `json:"currency"`
}

func (r registerRequest) registration() core.Registration {
	return core.Registration{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		FullName: r.FullName,
		Currency: r.Currency,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type transactionRequest struct {
	Amount          amountField `json:"amount"`
	Description     string      `json:"description"`
	TransactionDate string      `json:"transaction_date"`
	GoalID          idField     `json:"goal_id"`
	BudgetID        idField     `json:"budget_id"`
}

func (r transactionRequest) draft() core.TransactionDraft {
	return core.TransactionDraft{
		Amount:      r.Amount.money(),
		Description: r.Description,
		Date:        r.TransactionDate,
		GoalID:      r.GoalID.ptr(),
		BudgetID:    r.BudgetID.ptr(),
	}
}

type deleteTransactionRequest struct {
	ID idField `json:"id"`
}

type goalRequest struct {
	Name         string      `json:"name"`
	TargetAmount amountField `json:"target_amount"`
	Deadline     string      `json:"deadline"`
}

func (r goalRequest) draft() core.GoalDraft {
	return core.GoalDraft{Name: r.Name, Target: r.TargetAmount.money(), Deadline: r.Deadline}
}

type budgetRequest struct {
	Category string      `json:"category"`
	Amount   amountField `json:"amount"`
	Period   string      `json:"period"`
}

func (r budgetRequest) draft() core.BudgetDraft {
	return core.BudgetDraft{Category: r.Category, Limit: r.Amount.money(), Period: r.Period}
}

type chatRequest struct {
	Query         string        `json:"query"`
	FinancialData reportPayload `json:"financialData"`
}

// reportPayload is the report shape sent back by the client for chat. Only
// the fields the prompt uses are read.
type reportPayload struct {
	Summary struct {
		Period        string      `json:"period"`
		StartDate     string      `json:"start_date"`
		EndDate       string      `json:"end_date"`
		TotalIncome   amountField `json:"total_income"`
		TotalExpenses amountField `json:"total_expenses"`
		NetBalance    amountField `json:"net_balance"`
	} `json:"summary"`
	Categories []struct {
		Name   string      `json:"name"`
		Amount amountField `json:"amount"`
		Type   string      `json:"type"`
	} `json:"categories"`
	Budgets []struct {
		Category string      `json:"category"`
		Period   string      `json:"period"`
		Spent    amountField `json:"spent"`
		Limit    amountField `json:"limit"`
	} `json:"budgets"`
	Goals []struct {
		Name        string      `json:"name"`
		Current     amountField `json:"current"`
		Target      amountField `json:"target"`
		Contributed amountField `json:"contributed"`
	} `json:"goals"`
}

func (p reportPayload) report() core.Report {
	var r core.Report
	r.Summary.Range.Start, _ = core.ParseDate(p.Summary.StartDate)
	r.Summary.Range.End, _ = core.ParseDate(p.Summary.EndDate)
	r.Summary.TotalIncome = p.Summary.TotalIncome.value
	r.Summary.TotalExpenses = p.Summary.TotalExpenses.value.Abs()
	r.Summary.NetBalance = p.Summary.NetBalance.value
	for _, c := range p.Categories {
		kind := core.KindExpense
		if strings.EqualFold(c.Type, core.KindIncome) {
			kind = core.KindIncome
		}
		r.Categories = append(r.Categories, core.CategoryTotal{Name: c.Name, Amount: c.Amount.value.Abs(), Kind: kind})
	}
	for _, b := range p.Budgets {
		r.Budgets = append(r.Budgets, core.BudgetUsage{
			Category: b.Category,
			Period:   core.Period(b.Period),
			Spent:    b.Spent.value.Abs(),
			Limit:    b.Limit.value,
		})
	}
	for _, g := range p.Goals {
		r.Goals = append(r.Goals, core.GoalContribution{
			Name:        g.Name,
			Current:     g.Current.value,
			Target:      g.Target.value,
			Contributed: g.Contributed.value,
		})
	}
	return r
}

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads one JSON object into dst. Field type errors keep the
// domain error kind of the offending field.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: unreadable body", core.ErrMissingField)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: %v", core.ErrMissingField, errEmptyBody)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		if core.IsValidation(err) {
			return err
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("%w: field %s has the wrong type", core.ErrMissingField, typeErr.Field)
		}
		return fmt.Errorf("%w: malformed JSON body", core.ErrMissingField)
	}
	return nil
}
