package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"familybudget/internal/amqp"
	"familybudget/internal/analysis"
	"familybudget/internal/core"
	"familybudget/internal/export"
	"familybudget/internal/gateway/memory"
	"familybudget/internal/report"
	"familybudget/internal/services"
)

type stubRenderer struct {
	got services.ExportRequest
	at  time.Time
	err error
}

func (s *stubRenderer) Render(ctx context.Context, req services.ExportRequest, now time.Time) (services.Document, error) {
	s.got, s.at = req, now
	if s.err != nil {
		return services.Document{}, s.err
	}
	return services.Document{Base: "report_2025-03", Data: []byte("doc")}, nil
}

func TestExportWorker_HandleExportMessage(t *testing.T) {
	dir := t.TempDir()
	stub := &stubRenderer{}
	w := NewExportWorker(stub, dir, nil)

	at := time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC)
	msg := &amqp.ExportRequestMessage{JobID: "0123456789abcdef", Owner: "alice", Kind: amqp.KindMonthly, Month: "2025-03", Format: amqp.FormatXLSX, RequestedAt: at}

	if err := w.HandleExportMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleExportMessage() error = %v", err)
	}
	if stub.got.Owner != "alice" || stub.got.Month != "2025-03" || !stub.at.Equal(at) {
		t.Errorf("renderer got %+v at %v", stub.got, stub.at)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("export dir entries = %v, %v", entries, err)
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "report_2025-03_01234567_") || filepath.Ext(name) != ".xlsx" {
		t.Errorf("file name = %q", name)
	}
}

func TestExportWorker_LedgerSheets(t *testing.T) {
	stub := &stubRenderer{}
	w := NewExportWorker(stub, t.TempDir(), nil)
	msg := amqp.NewExportRequestMessage("alice", amqp.KindLedger, "", 0, amqp.FormatXLSX, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))
	msg.Sheets = "incomes"

	if err := w.HandleExportMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleExportMessage() error = %v", err)
	}
	if stub.got.Kind != report.KindLedger || stub.got.Sheets != export.SheetsIncomes {
		t.Errorf("renderer got %+v", stub.got)
	}
}

func TestExportWorker_Errors(t *testing.T) {
	at := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	storeErr := errors.New("store down")

	tests := []struct {
		name          string
		format        string
		renderErr     error
		wantErr       error
		wantPermanent bool
	}{
		{"bad format", "odt", nil, export.ErrUnknownFormat, true},
		{"bad month", amqp.FormatPDF, fmt.Errorf("monthly: %w", core.ErrInvalidMonthKey), core.ErrInvalidMonthKey, true},
		{"bad period", amqp.FormatPDF, report.ErrInvalidPeriod, report.ErrInvalidPeriod, true},
		{"bad sheets", amqp.FormatXLSX, export.ErrUnknownSheets, export.ErrUnknownSheets, true},
		{"store failure retried", amqp.FormatPDF, storeErr, storeErr, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewExportWorker(&stubRenderer{err: tt.renderErr}, t.TempDir(), nil)
			err := w.HandleExportMessage(context.Background(), &amqp.ExportRequestMessage{JobID: "j", Owner: "a", Kind: amqp.KindMonthly, Format: tt.format, RequestedAt: at})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got := errors.Is(err, amqp.ErrPermanent); got != tt.wantPermanent {
				t.Errorf("permanent = %v, want %v", got, tt.wantPermanent)
			}
		})
	}
}

func TestExportWorker_WithExportService(t *testing.T) {
	store := memory.New()
	d, _ := core.ParseDate("2025-03-03")
	if _, err := store.CreateExpense(context.Background(), core.Expense{Title: "Bread", Amount: core.Money{Cents: 300}, Category: core.Food, Date: d, CreatedBy: "alice"}); err != nil {
		t.Fatal(err)
	}
	reports := services.NewReportService(store, nil, analysis.DefaultThresholds(), nil)
	dir := t.TempDir()
	w := NewExportWorker(services.NewExportService(reports, nil, nil), dir, nil)

	msg := amqp.NewExportRequestMessage("alice", amqp.KindAnalysis, "", 3, amqp.FormatPDF, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	if err := w.HandleExportMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleExportMessage() error = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "analysis_3m_") {
		t.Errorf("entries = %v", entries)
	}
}
