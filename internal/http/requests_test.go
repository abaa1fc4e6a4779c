package http

import (
	"encoding/json"
	"errors"
	"testing"

	"pennywise/internal/core"
)

func TestAmountField(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		set     bool
		cents   int64
		wantErr error
	}{
		{"number", `12.5`, true, 1250, nil},
		{"negative number", `-50`, true, -5000, nil},
		{"numeric string", `"19.99"`, true, 1999, nil},
		{"comma decimal separator", `"19,99"`, true, 1999, nil},
		{"rounds half up", `"0.005"`, true, 1, nil},
		{"null", `null`, false, 0, nil},
		{"empty string", `""`, false, 0, nil},
		{"garbage", `"ten"`, false, 0, core.ErrInvalidAmount},
		{"bool", `true`, false, 0, core.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a amountField
			err := json.Unmarshal([]byte(tt.input), &a)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err=%v want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if a.set != tt.set || a.value.Cents != tt.cents {
				t.Fatalf("got set=%v cents=%d", a.set, a.value.Cents)
			}
			if !tt.set && a.money() != nil {
				t.Fatal("unset amount must map to nil")
			}
		})
	}
}

func TestIDField(t *testing.T) {
	tests := []struct {
		input string
		want  *int64
		err   bool
	}{
		{`7`, ptr(7), false},
		{`"7"`, ptr(7), false},
		{`null`, nil, false},
		{`""`, nil, false},
		{`"x"`, nil, true},
		{`1.5`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var f idField
			err := json.Unmarshal([]byte(tt.input), &f)
			if tt.err {
				if !errors.Is(err, core.ErrInvalidReference) {
					t.Fatalf("err=%v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			got := f.ptr()
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestReportPayload(t *testing.T) {
	var req chatRequest
	body := `{"query":"q","financialData":{
		"summary":{"start_date":"2024-05-01","end_date":"2024-05-31","total_income":"1000","total_expenses":-250,"net_balance":750},
		"categories":[{"name":"Food","amount":-200,"type":"Expense"},{"name":"Income","amount":1000,"type":"income"}],
		"budgets":[{"category":"Food","period":"monthly","spent":200,"limit":150}],
		"goals":[{"name":"Trip","current":40,"target":100,"contributed":"40"}]}}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}
	r := req.FinancialData.report()
	if r.Summary.Range.Start.String() != "2024-05-01" || r.Summary.TotalExpenses.Cents != 25000 {
		t.Fatalf("unexpected summary %+v", r.Summary)
	}
	if len(r.Categories) != 2 || r.Categories[0].Amount.Cents != 20000 || r.Categories[1].Kind != core.KindIncome {
		t.Fatalf("unexpected categories %+v", r.Categories)
	}
	if core.WithinLimits(r.Budgets) {
		t.Fatal("budget over its limit must not be within limits")
	}
	if r.Goals[0].Contributed.Cents != 4000 {
		t.Fatalf("unexpected goals %+v", r.Goals)
	}
}

func ptr(n int64) *int64 { return &n }
