package services

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
)

// ErrAsyncUnavailable is returned when no job queue is configured.
var ErrAsyncUnavailable = errors.New("asynchronous exports are not configured")

// ExportPublisher enqueues export jobs.
type ExportPublisher interface {
	PublishExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error
}

// ExportRequest names one report to render. Sheets narrows a workbook to
// one record sheet; it is ignored for PDF.
type ExportRequest struct {
	Owner  string
	Kind   report.Kind
	Month  core.MonthKey
	Period int
	Format export.Format
	Sheets export.SheetSet
}

// Document is a rendered report.
type Document struct {
	Base        string
	Name        string
	ContentType string
	Data        []byte
}

// ExportService renders reports to documents, either inline or through the
// job queue.
type ExportService struct {
	reports   *ReportService
	publisher ExportPublisher
	logger    *applog.Logger
}

// NewExportService wires the export service; publisher may be nil.
func NewExportService(reports *ReportService, publisher ExportPublisher, logger *applog.Logger) *ExportService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ExportService{
		reports:   reports,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentExport),
	}
}

// Async reports whether export jobs can be queued.
func (s *ExportService) Async() bool {
	return s.publisher != nil
}

// Build fetches the requested report as of now.
func (s *ExportService) Build(ctx context.Context, req ExportRequest, now time.Time) (*report.Report, error) {
	switch req.Kind {
	case report.KindMonthly:
		return s.reports.Monthly(ctx, req.Owner, req.Month, now)
	case report.KindAnalysis:
		return s.reports.Analysis(ctx, req.Owner, req.Period, now)
	case report.KindLedger:
		return s.reports.Ledger(ctx, req.Owner, now)
	default:
		return nil, fmt.Errorf("unknown report kind %q", req.Kind)
	}
}

// Render builds the report and renders it in the requested format.
func (s *ExportService) Render(ctx context.Context, req ExportRequest, now time.Time) (Document, error) {
	renderer, err := export.NewRenderer(req.Format, req.Sheets)
	if err != nil {
		return Document{}, err
	}
	r, err := s.Build(ctx, req, now)
	if err != nil {
		return Document{}, err
	}
	data, err := renderer.Render(r)
	if err != nil {
		s.logger.ErrorContext(ctx, "Export render failed",
			applog.FieldOperation, applog.OpRender,
			applog.FieldOwner, req.Owner,
			applog.FieldFormat, string(req.Format),
			applog.FieldError, err)
		return Document{}, err
	}
	s.logger.InfoContext(ctx, "Export rendered",
		applog.FieldOperation, applog.OpRender,
		applog.FieldOwner, req.Owner,
		applog.FieldReportKind, string(r.Kind),
		applog.FieldFormat, string(req.Format),
		applog.FieldBytes, len(data))
	base := export.BaseName(r)
	return Document{
		Base:        base,
		Name:        export.FileName(base, req.Format, now),
		ContentType: req.Format.ContentType(),
		Data:        data,
	}, nil
}

// Enqueue validates req and publishes it as an export job. It returns the
// job id.
func (s *ExportService) Enqueue(ctx context.Context, req ExportRequest, now time.Time) (string, error) {
	if s.publisher == nil {
		return "", ErrAsyncUnavailable
	}
	if _, err := export.NewRenderer(req.Format, req.Sheets); err != nil {
		return "", err
	}
	switch req.Kind {
	case report.KindMonthly:
		if req.Month == "" {
			req.Month = core.MonthKeyOf(core.DateOf(now))
		}
		if err := req.Month.Validate(); err != nil {
			return "", err
		}
	case report.KindAnalysis:
		if req.Period == 0 {
			req.Period = report.DefaultPeriodMonths
		}
		if req.Period < 1 || req.Period > report.MaxPeriodMonths {
			return "", fmt.Errorf("%w: %d", report.ErrInvalidPeriod, req.Period)
		}
	case report.KindLedger:
	default:
		return "", fmt.Errorf("unknown report kind %q", req.Kind)
	}

	msg := amqp.NewExportRequestMessage(req.Owner, string(req.Kind), req.Month.String(), req.Period, string(req.Format), now)
	if req.Format == export.FormatXLSX && req.Sheets != "" && req.Sheets != export.SheetsAll {
		msg.Sheets = string(req.Sheets)
	}
	if err := s.publisher.PublishExportRequest(ctx, msg); err != nil {
		return "", fmt.Errorf("enqueue export: %w", err)
	}
	s.logger.InfoContext(ctx, "Export job enqueued",
		applog.FieldJobID, msg.JobID,
		applog.FieldOwner, req.Owner,
		applog.FieldFormat, string(req.Format))
	return msg.JobID, nil
}
