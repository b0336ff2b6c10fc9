package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finsight/internal/amqp"
	"finsight/internal/export"
	"finsight/internal/storage"
)

// ExportWorker handles export of generated reports from SQLite to Google Sheets
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	exporter  export.ReportExporter
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, exporter export.ReportExporter, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single report export message from AMQP
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ReportExportMessage) error {
	slog.InfoContext(ctx, "Processing export message",
		"id", msg.ID,
		"version", msg.Version)

	report, err := w.storage.GetReport(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Drop messages for deleted reports instead of requeueing forever
		slog.WarnContext(ctx, "Report for export message not found, dropping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get report from storage: %w", err)
	}

	if report.ExportStatus == storage.ExportStatusExported {
		slog.InfoContext(ctx, "Report already exported, skipping", "id", msg.ID)
		return nil
	}

	if err := w.exportReport(ctx, report); err != nil {
		return fmt.Errorf("export report to sheets: %w", err)
	}

	return nil
}

// ProcessPendingReports processes any reports that haven't been exported yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPendingReports(ctx context.Context) error {
	pending, err := w.storage.GetPendingExportReports(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending reports: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending reports", "count", len(pending))

	for _, p := range pending {
		report, err := w.storage.GetReport(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get report", "id", p.ID, "error", err)
			if err := w.storage.MarkExportError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark export error", "id", p.ID, "error", err)
			}
			continue
		}

		if err := w.exportReport(ctx, report); err != nil {
			slog.ErrorContext(ctx, "Failed to export report", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupExportCheck verifies and exports any pending reports at worker startup.
// This is useful to recover from missed AMQP messages or worker downtime.
func (w *ExportWorker) StartupExportCheck(ctx context.Context) error {
	// Get a larger batch for startup check
	pending, err := w.storage.GetPendingExportReports(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending reports for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending reports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending reports on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		report, err := w.storage.GetReport(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get report for startup export",
				"id", p.ID, "error", err)
			if err := w.storage.MarkExportError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark export error", "id", p.ID, "error", err)
			}
			errorCount++
			continue
		}

		if err := w.exportReport(ctx, report); err != nil {
			slog.ErrorContext(ctx, "Failed to export report during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}

		successCount++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

func (w *ExportWorker) exportReport(ctx context.Context, report *storage.StoredReport) error {
	ref, err := w.exporter.ExportReport(ctx, report.ID, report.GeneratedAt, report.Report)
	if err != nil {
		// Mark as export error
		if markErr := w.storage.MarkExportError(ctx, report.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", report.ID, "error", markErr)
		}
		return fmt.Errorf("export to destination: %w", err)
	}

	// Mark as successfully exported
	if err := w.storage.MarkExported(ctx, report.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", report.ID, "error", err)
		// Don't return error here - the export actually worked
	}

	slog.InfoContext(ctx, "Successfully exported report",
		"id", report.ID,
		"sheets_ref", ref,
		"statement_id", report.StatementID)

	return nil
}
