package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"familybudget/internal/amqp"
	"familybudget/internal/analysis"
	"familybudget/internal/export"
	"familybudget/internal/report"
)

func TestExportService_Render(t *testing.T) {
	reports := NewReportService(sampleReader(), nil, analysis.DefaultThresholds(), nil)
	svc := NewExportService(reports, nil, nil)

	doc, err := svc.Render(context.Background(), ExportRequest{Owner: "alice", Kind: report.KindMonthly, Month: "2025-03", Format: export.FormatPDF}, now)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if doc.Name != "report_2025-03_20250320_100000.pdf" {
		t.Errorf("Name = %q", doc.Name)
	}
	if doc.ContentType != "application/pdf" || !bytes.HasPrefix(doc.Data, []byte("%PDF-")) {
		t.Errorf("unexpected document %q %q", doc.ContentType, doc.Data[:8])
	}

	if _, err := svc.Render(context.Background(), ExportRequest{Owner: "alice", Kind: report.KindMonthly, Format: "docx"}, now); !errors.Is(err, export.ErrUnknownFormat) {
		t.Errorf("Render(docx) error = %v", err)
	}
}

func TestExportService_RenderLedgerWorkbook(t *testing.T) {
	reports := NewReportService(sampleReader(), nil, analysis.DefaultThresholds(), nil)
	svc := NewExportService(reports, nil, nil)

	doc, err := svc.Render(context.Background(), ExportRequest{Owner: "alice", Kind: report.KindLedger, Format: export.FormatXLSX, Sheets: export.SheetsExpenses}, now)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if doc.Name != "ledger_2025-03-20_20250320_100000.xlsx" {
		t.Errorf("Name = %q", doc.Name)
	}

	_, err = svc.Render(context.Background(), ExportRequest{Owner: "alice", Kind: report.KindLedger, Format: export.FormatXLSX, Sheets: "charts"}, now)
	if !errors.Is(err, export.ErrUnknownSheets) {
		t.Errorf("Render(bad sheets) error = %v", err)
	}
}

func TestExportService_Enqueue(t *testing.T) {
	reports := NewReportService(sampleReader(), nil, analysis.DefaultThresholds(), nil)

	t.Run("without queue", func(t *testing.T) {
		svc := NewExportService(reports, nil, nil)
		_, err := svc.Enqueue(context.Background(), ExportRequest{Owner: "alice", Kind: report.KindMonthly, Format: export.FormatPDF}, now)
		if !errors.Is(err, ErrAsyncUnavailable) {
			t.Errorf("Enqueue() error = %v, want ErrAsyncUnavailable", err)
		}
	})

	t.Run("publishes with defaults filled", func(t *testing.T) {
		pub := &fakePublisher{}
		svc := NewExportService(reports, pub, nil)
		id, err := svc.Enqueue(context.Background(), ExportRequest{Owner: "alice", Kind: report.KindAnalysis, Format: export.FormatXLSX}, now)
		if err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
		if len(pub.msgs) != 1 {
			t.Fatalf("published %d messages", len(pub.msgs))
		}
		msg := pub.msgs[0]
		if msg.JobID != id || msg.Kind != amqp.KindAnalysis || msg.Period != report.DefaultPeriodMonths || !msg.RequestedAt.Equal(now) {
			t.Errorf("message = %+v", msg)
		}
	})

	t.Run("monthly defaults to current month", func(t *testing.T) {
		pub := &fakePublisher{}
		svc := NewExportService(reports, pub, nil)
		if _, err := svc.Enqueue(context.Background(), ExportRequest{Owner: "alice", Kind: report.KindMonthly, Format: export.FormatPDF}, now); err != nil {
			t.Fatal(err)
		}
		if pub.msgs[0].Month != "2025-03" {
			t.Errorf("Month = %q", pub.msgs[0].Month)
		}
	})

	t.Run("ledger carries sheet selection", func(t *testing.T) {
		pub := &fakePublisher{}
		svc := NewExportService(reports, pub, nil)
		if _, err := svc.Enqueue(context.Background(), ExportRequest{Owner: "alice", Kind: report.KindLedger, Format: export.FormatXLSX, Sheets: export.SheetsGoals}, now); err != nil {
			t.Fatal(err)
		}
		msg := pub.msgs[0]
		if msg.Kind != amqp.KindLedger || msg.Sheets != "goals" || msg.Month != "" {
			t.Errorf("message = %+v", msg)
		}
		if err := msg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("invalid period", func(t *testing.T) {
		svc := NewExportService(reports, &fakePublisher{}, nil)
		_, err := svc.Enqueue(context.Background(), ExportRequest{Owner: "alice", Kind: report.KindAnalysis, Period: 99, Format: export.FormatPDF}, now)
		if !errors.Is(err, report.ErrInvalidPeriod) {
			t.Errorf("Enqueue() error = %v", err)
		}
	})

	t.Run("publish failure", func(t *testing.T) {
		brokerErr := errors.New("broker down")
		svc := NewExportService(reports, &fakePublisher{err: brokerErr}, nil)
		_, err := svc.Enqueue(context.Background(), ExportRequest{Owner: "alice", Kind: report.KindMonthly, Format: export.FormatPDF}, now)
		if !errors.Is(err, brokerErr) {
			t.Errorf("Enqueue() error = %v", err)
		}
	})
}
