package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/core"
	"bilancio/internal/insight"
	"bilancio/internal/store"
)

// Report is the full derived view for one couple and one period. It is what
// the dashboard endpoint returns and what the refresh worker caches.
type Report struct {
	Period        insight.Period         `json:"period"`
	StartDate     time.Time              `json:"startDate"`
	EndDate       time.Time              `json:"endDate"`
	Snapshot      insight.Snapshot       `json:"snapshot"`
	PriorSnapshot insight.Snapshot       `json:"priorSnapshot"`
	Trend         insight.Trend          `json:"expenseTrend"`
	Goals         []insight.GoalProgress `json:"goals"`
	Insights      []insight.Insight      `json:"insights"`
	GeneratedAt   time.Time              `json:"generatedAt"`
}

// ReportService assembles reports from the store and the insight engine.
// It reads through narrow ports so SQLite and the in-memory store are
// interchangeable.
type ReportService struct {
	transactions store.TransactionLister
	categories   store.CategoryReader
	goals        store.GoalLister
}

func NewReportService(
	transactions store.TransactionLister,
	categories store.CategoryReader,
	goals store.GoalLister,
) *ReportService {
	return &ReportService{
		transactions: transactions,
		categories:   categories,
		goals:        goals,
	}
}

// Generate resolves the period against now, fetches the couple's data, and
// runs the full pipeline: aggregate, trend against the prior period, goal
// progress, insights. The four store reads run concurrently; one failure
// fails the report.
func (s *ReportService) Generate(ctx context.Context, coupleID, period string, now time.Time) (*Report, error) {
	p := insight.ParsePeriod(period)
	current := insight.Resolve(p, now)
	prior := insight.Previous(p, current)

	var (
		currentTxs []core.Transaction
		priorTxs   []core.Transaction
		categories []core.Category
		goals      []core.SavingsGoal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		currentTxs, err = s.transactions.ListTransactions(gctx, coupleID, current.Start, current.End)
		if err != nil {
			return fmt.Errorf("list current transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		priorTxs, err = s.transactions.ListTransactions(gctx, coupleID, prior.Start, prior.End)
		if err != nil {
			return fmt.Errorf("list prior transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = s.categories.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		goals, err = s.goals.ListGoals(gctx, coupleID)
		if err != nil {
			return fmt.Errorf("list goals: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	index := insight.NewCategoryIndex(categories)
	snapshot := insight.Aggregate(currentTxs, index)
	priorSnapshot := insight.Aggregate(priorTxs, index)

	progress := insight.ProgressAll(goals, snapshot.MonthlyNetSavings())
	insight.SortProgress(progress)

	report := &Report{
		Period:        p,
		StartDate:     current.Start,
		EndDate:       current.End,
		Snapshot:      snapshot,
		PriorSnapshot: priorSnapshot,
		Trend:         insight.ClassifyTrend(snapshot, priorSnapshot),
		Goals:         progress,
		Insights:      insight.GenerateInsights(snapshot, progress),
		GeneratedAt:   now,
	}

	slog.DebugContext(ctx, "Generated report",
		"couple_id", coupleID,
		"period", p,
		"transactions", snapshot.TransactionCount,
		"goals", len(progress),
		"insights", len(report.Insights))

	return report, nil
}

// GoalProgress recomputes goal progress on its own, for the endpoint that
// does not need the full report.
func (s *ReportService) GoalProgress(ctx context.Context, coupleID string, now time.Time) ([]insight.GoalProgress, error) {
	report, err := s.Generate(ctx, coupleID, string(insight.Month), now)
	if err != nil {
		return nil, err
	}
	return report.Goals, nil
}
