// Package worker consumes export jobs from the queue and writes the rendered
// reports to disk.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"familybudget/internal/amqp"
	"familybudget/internal/core"
	"familybudget/internal/export"
	applog "familybudget/internal/log"
	"familybudget/internal/report"
	"familybudget/internal/services"
)

// Renderer produces a document for an export request.
type Renderer interface {
	Render(ctx context.Context, req services.ExportRequest, now time.Time) (services.Document, error)
}

// ExportWorker handles export jobs delivered over AMQP.
type ExportWorker struct {
	renderer  Renderer
	exportDir string
	logger    *applog.Logger
}

func NewExportWorker(renderer Renderer, exportDir string, logger *applog.Logger) *ExportWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ExportWorker{
		renderer:  renderer,
		exportDir: exportDir,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleExportMessage renders the job's report as of the job's RequestedAt
// and writes it under the export directory. Invalid job parameters fail
// permanently; any other error requeues the job.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ExportRequestMessage) error {
	format, err := export.ParseFormat(msg.Format)
	if err != nil {
		return amqp.Permanent(err)
	}
	req := services.ExportRequest{
		Owner:  msg.Owner,
		Kind:   report.Kind(msg.Kind),
		Month:  core.MonthKey(msg.Month),
		Period: msg.Period,
		Format: format,
		Sheets: export.SheetSet(msg.Sheets),
	}

	doc, err := w.renderer.Render(ctx, req, msg.RequestedAt)
	if err != nil {
		err = fmt.Errorf("render job %s: %w", msg.JobID, err)
		if invalidJob(err) {
			return amqp.Permanent(err)
		}
		return err
	}

	path, err := export.WriteFile(w.exportDir, doc.Base+"_"+shortID(msg.JobID), format, doc.Data)
	if err != nil {
		return fmt.Errorf("write job %s: %w", msg.JobID, err)
	}

	w.logger.InfoContext(ctx, "Export written",
		applog.FieldJobID, msg.JobID,
		applog.FieldOwner, msg.Owner,
		applog.FieldFormat, msg.Format,
		applog.FieldBytes, len(doc.Data),
		"path", path)
	return nil
}

// Run consumes jobs until ctx is cancelled.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client) error {
	w.logger.InfoContext(ctx, "Export worker started", "export_dir", w.exportDir)
	return client.ConsumeExportRequests(ctx, w.HandleExportMessage)
}

func invalidJob(err error) bool {
	return errors.Is(err, core.ErrInvalidMonthKey) ||
		errors.Is(err, report.ErrInvalidPeriod) ||
		errors.Is(err, export.ErrUnknownFormat) ||
		errors.Is(err, export.ErrUnknownSheets)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
