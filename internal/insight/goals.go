package insight

import (
	"sort"
	"time"

	"bilancio/internal/core"
)

// GoalProgress is the derived completion state of one savings goal.
type GoalProgress struct {
	GoalID          int64         `json:"goalId"`
	Name            string        `json:"name"`
	Priority        core.Priority `json:"priority"`
	PercentComplete float64       `json:"percentComplete"`
	AmountRemaining core.Money    `json:"amountRemaining"`
	// MonthsToComplete is nil when the monthly net savings rate is zero or
	// negative: completion time is not computable then, and reporting 0 or
	// an "infinite" sentinel would both be wrong.
	MonthsToComplete *int      `json:"monthsToComplete,omitempty"`
	Completed        bool      `json:"completed"`
	TargetDate       time.Time `json:"targetDate"`
}

// Progress derives completion figures for a goal given the couple's current
// monthly net savings (income minus expenses for the running month).
func Progress(g core.SavingsGoal, monthlyNetSavings core.Money) GoalProgress {
	p := GoalProgress{
		GoalID:     g.ID,
		Name:       g.Name,
		Priority:   g.Priority,
		Completed:  g.IsCompleted(),
		TargetDate: g.TargetDate,
	}

	if g.TargetAmount.Cents > 0 {
		p.PercentComplete = float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents) * 100
	}
	// Overfunded goals read as 100%, never more.
	if p.PercentComplete > 100 {
		p.PercentComplete = 100
	}
	if p.PercentComplete < 0 {
		p.PercentComplete = 0
	}

	remaining := g.TargetAmount.Cents - g.CurrentAmount.Cents
	if remaining < 0 {
		remaining = 0
	}
	p.AmountRemaining = core.Money{Cents: remaining}

	if monthlyNetSavings.Cents > 0 {
		months := int((remaining + monthlyNetSavings.Cents - 1) / monthlyNetSavings.Cents)
		p.MonthsToComplete = &months
	}

	return p
}

// ProgressAll derives progress for each goal, preserving input order.
func ProgressAll(goals []core.SavingsGoal, monthlyNetSavings core.Money) []GoalProgress {
	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, Progress(g, monthlyNetSavings))
	}
	return out
}

// SortProgress orders goals closest-to-completion first. Ties fall back to
// the earlier deadline (goals without a deadline sort after dated ones),
// then to name, so the highlighted goal is deterministic.
func SortProgress(goals []GoalProgress) {
	sort.SliceStable(goals, func(i, j int) bool {
		a, b := goals[i], goals[j]
		if a.PercentComplete != b.PercentComplete {
			return a.PercentComplete > b.PercentComplete
		}
		switch {
		case a.TargetDate.IsZero() && !b.TargetDate.IsZero():
			return false
		case !a.TargetDate.IsZero() && b.TargetDate.IsZero():
			return true
		case !a.TargetDate.Equal(b.TargetDate):
			return a.TargetDate.Before(b.TargetDate)
		}
		return a.Name < b.Name
	})
}
