package insight

import "fmt"

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"

	SeverityPositive Severity = "positive"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
)

// Trend classifies expense movement between two consecutive periods.
type Trend string

// Severity tags an insight for display; nothing downstream parses the text.
type Severity string

// Insight is a human-readable observation about the couple's finances.
type Insight struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
}

// Thresholds for the insight rules. Shares and rates are percentages.
const (
	goodSavingsRate     = 20.0
	lowSavingsRate      = 10.0
	topCategoryMaxShare = 35.0
)

// ClassifyTrend compares expense totals across two equal-length periods.
// Movement within ±5% counts as stable; the deadband keeps normal month-to-
// month noise from being reported as a trend. The comparison is done in
// integer cents so a boundary case like 105 vs 100 classifies exactly.
func ClassifyTrend(current, prior Snapshot) Trend {
	cur := current.TotalExpenses.Cents
	prev := prior.TotalExpenses.Cents

	switch {
	case cur*100 > prev*105:
		return TrendIncreasing
	case cur*100 < prev*95:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// GenerateInsights evaluates every insight rule independently against the
// current snapshot and goal progress; all applicable insights are emitted.
// It never fails: with no data at all it returns a single encouragement to
// keep logging transactions.
func GenerateInsights(s Snapshot, goals []GoalProgress) []Insight {
	var out []Insight

	if s.TotalIncome.Cents > 0 {
		rate := float64(s.Balance.Cents) / float64(s.TotalIncome.Cents) * 100
		if rate > goodSavingsRate {
			out = append(out, Insight{
				Severity: SeverityPositive,
				Category: "savings_rate",
				Message:  fmt.Sprintf("Great work: you are saving %.1f%% of your income this period.", rate),
			})
		} else if rate < lowSavingsRate {
			out = append(out, Insight{
				Severity: SeverityWarning,
				Category: "savings_rate",
				Message:  fmt.Sprintf("Your savings rate is %.1f%%, below the recommended 10%%. Consider trimming non-essential spending.", rate),
			})
		}
	}

	if top, ok := s.TopCategory(); ok && top.Percentage > topCategoryMaxShare {
		out = append(out, Insight{
			Severity: SeverityInfo,
			Category: "concentration",
			Message:  fmt.Sprintf("%s accounts for %.1f%% of your expenses. Spreading spending across categories may leave more room for surprises.", top.Name, top.Percentage),
		})
	}

	if s.Balance.Cents < 0 {
		out = append(out, Insight{
			Severity: SeverityWarning,
			Category: "overspending",
			Message:  fmt.Sprintf("You spent %s more than you earned this period.", formatUnits(-s.Balance.Cents)),
		})
	}

	completed := 0
	for _, g := range goals {
		if g.Completed {
			completed++
		}
	}
	if completed == 1 {
		out = append(out, Insight{
			Severity: SeverityPositive,
			Category: "goals",
			Message:  "Congratulations, you completed a savings goal!",
		})
	} else if completed > 1 {
		out = append(out, Insight{
			Severity: SeverityPositive,
			Category: "goals",
			Message:  fmt.Sprintf("Congratulations, you completed %d savings goals!", completed),
		})
	}

	if len(out) == 0 {
		out = append(out, Insight{
			Severity: SeverityInfo,
			Category: "getting_started",
			Message:  "Not enough activity to analyze yet. Keep logging transactions to unlock insights.",
		})
	}

	return out
}

// formatUnits renders cents as a plain decimal string, no currency symbol.
// Presentation (symbols, locale) belongs to the caller.
func formatUnits(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}
