package insight

import (
	"fmt"
	"strings"

	"pennywise/internal/core"
)

// ReportPrompt asks for a short narrative over the aggregated period.
func ReportPrompt(r core.Report, currency string) string {
	var b strings.Builder
	b.WriteString("You are a friendly personal finance assistant. ")
	b.WriteString("Write a short report (at most 150 words) for the user based on the data below. ")
	b.WriteString("Highlight notable spending, budget pressure and savings progress, and end with one concrete tip.\n\n")
	writeFinancialData(&b, r, currency)
	return b.String()
}

// ChatPrompt embeds the caller's financial data and question.
func ChatPrompt(query string, r core.Report, currency string) string {
	var b strings.Builder
	b.WriteString("You are a friendly personal finance assistant. ")
	b.WriteString("Answer the user's question using only the financial data below. ")
	b.WriteString("Keep the answer under 120 words.\n\n")
	writeFinancialData(&b, r, currency)
	fmt.Fprintf(&b, "\nQuestion: %s\n", strings.TrimSpace(query))
	return b.String()
}

func writeFinancialData(b *strings.Builder, r core.Report, currency string) {
	s := r.Summary
	if !s.Range.Start.IsZero() {
		fmt.Fprintf(b, "Period: %s\n", s.Range)
	}
	fmt.Fprintf(b, "Total income: %s %s\n", s.TotalIncome, currency)
	fmt.Fprintf(b, "Total expenses: %s %s\n", s.TotalExpenses, currency)
	fmt.Fprintf(b, "Net balance: %s %s\n", s.NetBalance, currency)

	if len(r.Categories) > 0 {
		b.WriteString("\nCategories:\n")
		for _, c := range r.Categories {
			fmt.Fprintf(b, "- %s (%s): %s\n", c.Name, c.Kind, c.Amount)
		}
	}
	if len(r.Budgets) > 0 {
		b.WriteString("\nBudgets:\n")
		for _, bu := range r.Budgets {
			fmt.Fprintf(b, "- %s: spent %s of %s (%d%%)\n", bu.Category, bu.Spent, bu.Limit, core.Percent(bu.Spent, bu.Limit))
		}
	}
	if len(r.Goals) > 0 {
		b.WriteString("\nSavings goals:\n")
		for _, g := range r.Goals {
			fmt.Fprintf(b, "- %s: %s of %s saved, %s contributed this period\n", g.Name, g.Current, g.Target, g.Contributed)
		}
	}
}
