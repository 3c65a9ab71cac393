// Package export renders reports to downloadable documents.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"familybudget/internal/report"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrUnknownSheets = errors.New("unknown sheet selection")
)

// SheetSet selects which sheets a workbook carries.
type SheetSet string

const (
	SheetsAll      SheetSet = "all"
	SheetsExpenses SheetSet = "expenses"
	SheetsIncomes  SheetSet = "incomes"
	SheetsGoals    SheetSet = "goals"
)

// ParseSheets accepts all, expenses, incomes or goals; empty means all.
func ParseSheets(s string) (SheetSet, error) {
	switch set := SheetSet(strings.ToLower(strings.TrimSpace(s))); set {
	case "":
		return SheetsAll, nil
	case SheetsAll, SheetsExpenses, SheetsIncomes, SheetsGoals:
		return set, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSheets, s)
	}
}

// Renderer turns a built report into document bytes.
type Renderer interface {
	Render(r *report.Report) ([]byte, error)
}

// ParseFormat accepts "pdf" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// RendererFor returns the renderer producing f with every sheet.
func RendererFor(f Format) (Renderer, error) {
	return NewRenderer(f, SheetsAll)
}

// NewRenderer returns the renderer producing f. sheets applies to workbooks
// only; a PDF always carries the full report.
func NewRenderer(f Format, sheets SheetSet) (Renderer, error) {
	switch f {
	case FormatPDF:
		return PDFRenderer{}, nil
	case FormatXLSX:
		if sheets == "" {
			sheets = SheetsAll
		}
		if _, err := ParseSheets(string(sheets)); err != nil {
			return nil, err
		}
		return XLSXRenderer{Sheets: sheets}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// FileName builds "<base>_<YYYYMMDD_HHMMSS>.<ext>".
func FileName(base string, f Format, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", base, at.Format("20060102_150405"), f)
}

// BaseName is the file stem used for a report: "report_2024-03" for a
// monthly report, "analysis_6m" for a spending analysis, "ledger_2024-03-31"
// for a full ledger generated on that day.
func BaseName(r *report.Report) string {
	switch r.Kind {
	case report.KindMonthly:
		return "report_" + r.Period.Month.String()
	case report.KindLedger:
		return "ledger_" + r.GeneratedAt.Format(time.DateOnly)
	default:
		return fmt.Sprintf("analysis_%dm", r.Period.Months)
	}
}

// WriteFile writes data under dir, creating it if needed, and returns the
// absolute path of the new file.
func WriteFile(dir, base string, f Format, data []byte) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	path := filepath.Join(dir, FileName(base, f, time.Now()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return filepath.Abs(path)
}
