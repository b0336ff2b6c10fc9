package export

import (
	"context"
	"time"

	"finsight/internal/core"
)

// ReportExporter is the outbound port for publishing generated reports
// to an external destination.
type ReportExporter interface {
	// ExportReport writes one report and returns a destination reference.
	ExportReport(ctx context.Context, id string, generatedAt time.Time, report core.Report) (rowRef string, err error)
}
