// Package export defines the outbound port for pushing finished reports to
// external destinations.
package export

import (
	"context"

	"bilancio/internal/services"
)

// ReportExporter writes a report somewhere outside the system and returns a
// human-readable reference to where it landed.
type ReportExporter interface {
	ExportReport(ctx context.Context, coupleID string, report *services.Report) (string, error)
}
