package http

import (
	"context"
	"net/http"
	"time"
)

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}

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

	// Sheets round trips are slow; give the export its own generous timeout.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	ref, err := s.exporter.ExportReport(ctx, couple, report)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"exported": true,
		"range":    ref,
		"period":   report.Period,
	})
}
