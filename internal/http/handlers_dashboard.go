package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"bilancio/internal/insight"
	"bilancio/internal/services"
	"bilancio/internal/store"
)

func (s *Server) reportCacheKey(coupleID string, p insight.Period) string {
	return coupleID + "|" + string(p)
}

// invalidateReports drops every cached report variant for a couple, in the
// in-process LRU and in the durable cache when the backend keeps one. The
// refresh worker rewarms the durable cache after the change event lands.
func (s *Server) invalidateReports(ctx context.Context, coupleID string) {
	s.reportCache.DeletePrefix(coupleID + "|")

	if invalidator, ok := s.backend.(store.ReportCacheInvalidator); ok {
		if err := invalidator.DeleteReportCache(ctx, coupleID); err != nil {
			slog.ErrorContext(ctx, "Failed to invalidate durable report cache",
				"couple_id", coupleID, "error", err)
		}
	}
}

// getReport serves reports cheapest-first: the in-process LRU, then the
// durable cache the refresh worker keeps warm, then a full regeneration.
func (s *Server) getReport(ctx context.Context, coupleID, period string) (*services.Report, error) {
	p := insight.ParsePeriod(period)
	key := s.reportCacheKey(coupleID, p)

	if report, found := s.reportCache.Get(key); found {
		slog.DebugContext(ctx, "Report cache hit", "couple_id", coupleID, "period", p)
		return report, nil
	}

	now := time.Now()

	if report, ok := s.warmReport(ctx, coupleID, p, now); ok {
		s.reportCache.Set(key, report)
		return report, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	report, err := s.reports.Generate(cctx, coupleID, string(p), now)
	if err != nil {
		return nil, err
	}

	s.reportCache.Set(key, report)
	return report, nil
}

// warmReport tries the durable cache the refresh worker maintains. Any miss
// or decode problem just means regenerating; it is never an error.
func (s *Server) warmReport(ctx context.Context, coupleID string, p insight.Period, now time.Time) (*services.Report, bool) {
	reader, ok := s.backend.(store.ReportCacheReader)
	if !ok {
		return nil, false
	}

	rng := insight.Resolve(p, now)
	payload, refreshedAt, err := reader.GetReportCache(ctx, coupleID, string(p), rng.Start)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "Durable report cache read failed",
				"couple_id", coupleID, "period", p, "error", err)
		}
		return nil, false
	}

	var report services.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		slog.WarnContext(ctx, "Discarding undecodable cached report",
			"couple_id", coupleID, "period", p, "error", err)
		return nil, false
	}

	slog.DebugContext(ctx, "Serving worker-warmed report",
		"couple_id", coupleID, "period", p, "refreshed_at", refreshedAt)
	return &report, true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	couple, err := coupleID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	report, err := s.getReport(r.Context(), couple, r.URL.Query().Get("period"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	couple, err := coupleID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	report, err := s.getReport(r.Context(), couple, r.URL.Query().Get("period"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"period":   report.Period,
		"trend":    report.Trend,
		"insights": report.Insights,
	})
}
