package insight

import (
	"log/slog"
	"sort"

	"bilancio/internal/core"
)

// CategoryBreakdown is one expense category's slice of the period total.
type CategoryBreakdown struct {
	CategoryID int64      `json:"categoryId"`
	Name       string     `json:"name"`
	Icon       string     `json:"icon"`
	Color      string     `json:"color"`
	Amount     core.Money `json:"amount"`
	Count      int        `json:"count"`
	// Percentage is this category's share of total expenses. Shares across a
	// non-empty breakdown sum to 100 modulo float rounding.
	Percentage float64 `json:"percentage"`
}

// Snapshot is the aggregate view of a set of transactions. It is recomputed
// on every call and never persisted as-is.
type Snapshot struct {
	TotalIncome      core.Money          `json:"totalIncome"`
	TotalExpenses    core.Money          `json:"totalExpenses"`
	Balance          core.Money          `json:"balance"`
	TransactionCount int                 `json:"transactionCount"`
	Categories       []CategoryBreakdown `json:"categoryBreakdown"`
}

// CategoryIndex resolves category ids to their display attributes.
type CategoryIndex map[int64]core.Category

// NewCategoryIndex builds an index from a category list.
func NewCategoryIndex(categories []core.Category) CategoryIndex {
	idx := make(CategoryIndex, len(categories))
	for _, c := range categories {
		idx[c.ID] = c
	}
	return idx
}

// Aggregate sums a period's transactions into a Snapshot. The input is
// expected to be pre-filtered to one couple and one date range. Records with
// a non-positive amount or an unknown type are skipped and logged rather
// than corrupting the sums. An empty input yields an all-zero snapshot.
func Aggregate(transactions []core.Transaction, categories CategoryIndex) Snapshot {
	var snap Snapshot

	type group struct {
		amount int64
		count  int
	}
	groups := make(map[int64]*group)

	for _, tx := range transactions {
		if tx.Amount.Cents <= 0 {
			slog.Warn("Skipping transaction with invalid amount",
				"id", tx.ID, "amount_cents", tx.Amount.Cents)
			continue
		}
		switch tx.Type {
		case core.Income:
			snap.TotalIncome.Cents += tx.Amount.Cents
		case core.Expense:
			snap.TotalExpenses.Cents += tx.Amount.Cents
			g := groups[tx.CategoryID]
			if g == nil {
				g = &group{}
				groups[tx.CategoryID] = g
			}
			g.amount += tx.Amount.Cents
			g.count++
		default:
			slog.Warn("Skipping transaction with unknown type",
				"id", tx.ID, "type", string(tx.Type))
			continue
		}
		snap.TransactionCount++
	}

	snap.Balance = snap.TotalIncome.Sub(snap.TotalExpenses)

	for id, g := range groups {
		cb := CategoryBreakdown{
			CategoryID: id,
			Amount:     core.Money{Cents: g.amount},
			Count:      g.count,
		}
		if cat, ok := categories[id]; ok {
			cb.Name = cat.Name
			cb.Icon = cat.Icon
			cb.Color = cat.Color
		}
		if snap.TotalExpenses.Cents > 0 {
			cb.Percentage = float64(g.amount) / float64(snap.TotalExpenses.Cents) * 100
		}
		snap.Categories = append(snap.Categories, cb)
	}

	// Largest first; ties broken by name so snapshots are stable.
	sort.Slice(snap.Categories, func(i, j int) bool {
		a, b := snap.Categories[i], snap.Categories[j]
		if a.Amount.Cents != b.Amount.Cents {
			return a.Amount.Cents > b.Amount.Cents
		}
		return a.Name < b.Name
	})

	return snap
}

// MonthlyNetSavings is the income-minus-expenses figure a snapshot implies.
func (s Snapshot) MonthlyNetSavings() core.Money {
	return s.Balance
}

// TopCategory returns the largest expense category, if any.
func (s Snapshot) TopCategory() (CategoryBreakdown, bool) {
	if len(s.Categories) == 0 {
		return CategoryBreakdown{}, false
	}
	return s.Categories[0], true
}
