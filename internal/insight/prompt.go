package insight

import (
	"fmt"
	"strings"
)

// Profile carries the bits of user context the chat prompt needs. The engine
// has no opinion on how the profile is stored or authenticated.
type Profile struct {
	Name        string
	PartnerName string
	Currency    string
}

const promptPreamble = `You are a friendly personal-finance assistant for couples. ` +
	`Answer questions using only the financial context below. Be concrete, cite ` +
	`the numbers you are given, and never invent transactions or balances. If ` +
	`the context does not contain the answer, say so.`

// BuildPrompt serializes an aggregated financial picture into the system
// context string for the language-model call. Output is deterministic for
// identical inputs so prompt construction can be tested without a model.
func BuildPrompt(p Profile, s Snapshot, goals []GoalProgress, insights []Insight) string {
	var b strings.Builder

	b.WriteString(promptPreamble)
	b.WriteString("\n\n")

	cur := p.Currency
	if cur == "" {
		cur = "EUR"
	}

	b.WriteString("## User\n")
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	if p.PartnerName != "" {
		fmt.Fprintf(&b, "Partner: %s\n", p.PartnerName)
	}
	fmt.Fprintf(&b, "Currency: %s\n\n", cur)

	b.WriteString("## Current period\n")
	fmt.Fprintf(&b, "Income: %s\n", formatUnits(s.TotalIncome.Cents))
	fmt.Fprintf(&b, "Expenses: %s\n", formatUnits(s.TotalExpenses.Cents))
	fmt.Fprintf(&b, "Balance: %s\n", formatUnits(s.Balance.Cents))
	fmt.Fprintf(&b, "Transactions: %d\n", s.TransactionCount)

	if len(s.Categories) > 0 {
		b.WriteString("\n## Spending by category\n")
		for _, c := range s.Categories {
			name := c.Name
			if name == "" {
				name = fmt.Sprintf("category %d", c.CategoryID)
			}
			fmt.Fprintf(&b, "- %s: %s (%.1f%%, %d transactions)\n",
				name, formatUnits(c.Amount.Cents), c.Percentage, c.Count)
		}
	}

	if len(goals) > 0 {
		b.WriteString("\n## Savings goals\n")
		for _, g := range goals {
			line := fmt.Sprintf("- %s: %.1f%% complete, %s remaining",
				g.Name, g.PercentComplete, formatUnits(g.AmountRemaining.Cents))
			if g.Completed {
				line += " (completed)"
			} else if g.MonthsToComplete != nil {
				line += fmt.Sprintf(", about %d month(s) to go at the current savings rate", *g.MonthsToComplete)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if len(insights) > 0 {
		b.WriteString("\n## Observations\n")
		for _, in := range insights {
			fmt.Fprintf(&b, "- [%s] %s\n", in.Severity, in.Message)
		}
	}

	return b.String()
}
