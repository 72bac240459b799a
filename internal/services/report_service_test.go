package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/insight"
	"bilancio/internal/store/memory"
)

func seedCouple(t *testing.T, s *memory.Store, coupleID string, now time.Time) {
	t.Helper()
	ctx := context.Background()

	txs := []core.Transaction{
		{CoupleID: coupleID, CategoryID: 1, Type: core.Income, Amount: core.Money{Cents: 100000}, Date: now.AddDate(0, 0, -1), Description: "salary"},
		{CoupleID: coupleID, CategoryID: 4, Type: core.Expense, Amount: core.Money{Cents: 40000}, Date: now.AddDate(0, 0, -2), Description: "weekly shop"},
		{CoupleID: coupleID, CategoryID: 4, Type: core.Expense, Amount: core.Money{Cents: 10000}, Date: now.AddDate(0, 0, -3), Description: "top-up shop"},
		{CoupleID: coupleID, CategoryID: 5, Type: core.Expense, Amount: core.Money{Cents: 20000}, Date: now.AddDate(0, 0, -4), Description: "metro pass"},
		// Prior month, for the trend comparison.
		{CoupleID: coupleID, CategoryID: 5, Type: core.Expense, Amount: core.Money{Cents: 30000}, Date: now.AddDate(0, -1, 0), Description: "old expense"},
	}
	for _, tx := range txs {
		if _, err := s.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}

	goal := core.SavingsGoal{
		CoupleID:      coupleID,
		Name:          "Holiday",
		TargetAmount:  core.Money{Cents: 500000},
		CurrentAmount: core.Money{Cents: 100000},
		Priority:      core.PriorityMedium,
	}
	if _, err := s.CreateGoal(ctx, goal); err != nil {
		t.Fatalf("seed goal: %v", err)
	}
}

func TestReportService_Generate(t *testing.T) {
	mem := memory.New()
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	seedCouple(t, mem, "couple-1", now)

	svc := NewReportService(mem, mem, mem)

	report, err := svc.Generate(context.Background(), "couple-1", "month", now)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if report.Period != insight.Month {
		t.Errorf("Period = %q, want %q", report.Period, insight.Month)
	}
	if got := report.Snapshot.TotalIncome.Cents; got != 100000 {
		t.Errorf("TotalIncome = %d, want 100000", got)
	}
	if got := report.Snapshot.TotalExpenses.Cents; got != 70000 {
		t.Errorf("TotalExpenses = %d, want 70000", got)
	}
	if got := report.Snapshot.Balance.Cents; got != 30000 {
		t.Errorf("Balance = %d, want 30000", got)
	}
	if got := report.Snapshot.TransactionCount; got != 4 {
		t.Errorf("TransactionCount = %d, want 4", got)
	}

	top, ok := report.Snapshot.TopCategory()
	if !ok {
		t.Fatal("expected a top category")
	}
	if top.Name != "Groceries" || top.Amount.Cents != 50000 {
		t.Errorf("top category = %s/%d, want Groceries/50000", top.Name, top.Amount.Cents)
	}

	// 70000 this month against 30000 last month is well past the deadband.
	if report.Trend != insight.TrendIncreasing {
		t.Errorf("Trend = %q, want %q", report.Trend, insight.TrendIncreasing)
	}

	if len(report.Goals) != 1 {
		t.Fatalf("Goals len = %d, want 1", len(report.Goals))
	}
	g := report.Goals[0]
	if g.PercentComplete != 20 {
		t.Errorf("PercentComplete = %v, want 20", g.PercentComplete)
	}
	// remaining 400000 at 30000/month net savings rounds up to 14 months.
	if g.MonthsToComplete == nil || *g.MonthsToComplete != 14 {
		t.Errorf("MonthsToComplete = %v, want 14", g.MonthsToComplete)
	}

	wantCategories := map[string]bool{"savings_rate": false, "concentration": false}
	for _, ins := range report.Insights {
		if _, ok := wantCategories[ins.Category]; ok {
			wantCategories[ins.Category] = true
		}
	}
	for cat, seen := range wantCategories {
		if !seen {
			t.Errorf("expected a %s insight, got %+v", cat, report.Insights)
		}
	}
}

func TestReportService_GenerateEmptyCouple(t *testing.T) {
	mem := memory.New()
	svc := NewReportService(mem, mem, mem)
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

	report, err := svc.Generate(context.Background(), "nobody", "month", now)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if report.Snapshot.TransactionCount != 0 || report.Snapshot.Balance.Cents != 0 {
		t.Errorf("expected empty snapshot, got %+v", report.Snapshot)
	}
	if report.Trend != insight.TrendStable {
		t.Errorf("Trend = %q, want stable for two empty periods", report.Trend)
	}
	if len(report.Insights) != 1 || report.Insights[0].Category != "getting_started" {
		t.Errorf("expected only the getting_started insight, got %+v", report.Insights)
	}
}

func TestReportService_UnknownPeriodDefaultsToMonth(t *testing.T) {
	mem := memory.New()
	svc := NewReportService(mem, mem, mem)
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

	report, err := svc.Generate(context.Background(), "couple-1", "decade", now)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report.Period != insight.Month {
		t.Errorf("Period = %q, want %q", report.Period, insight.Month)
	}
	wantStart := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !report.StartDate.Equal(wantStart) {
		t.Errorf("StartDate = %v, want %v", report.StartDate, wantStart)
	}
}

type failingLister struct{}

func (failingLister) ListTransactions(context.Context, string, time.Time, time.Time) ([]core.Transaction, error) {
	return nil, errors.New("disk on fire")
}

func TestReportService_StoreErrorFailsReport(t *testing.T) {
	mem := memory.New()
	svc := NewReportService(failingLister{}, mem, mem)

	_, err := svc.Generate(context.Background(), "couple-1", "month", time.Now())
	if err == nil {
		t.Fatal("expected error when the store fails")
	}
}
