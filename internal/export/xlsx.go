package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"familybudget/internal/report"
)

const (
	sheetExpenses = "Expenses"
	sheetIncomes  = "Incomes"
	sheetSummary  = "Summary"
	sheetGoals    = "Goals"
)

// XLSXRenderer writes the report's records and figures to a workbook. With
// Sheets set to all (or empty) it carries Expenses, Incomes, Summary and,
// when any exist, Goals; otherwise only the selected sheet.
type XLSXRenderer struct {
	Sheets SheetSet
}

func (x XLSXRenderer) Render(r *report.Report) ([]byte, error) {
	set := x.Sheets
	if set == "" {
		set = SheetsAll
	}
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#21405F"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	w := sheetWriter{f: f, header: header}

	if set == SheetsAll || set == SheetsExpenses {
		w.newSheet(sheetExpenses)
		w.table(sheetExpenses, []string{"Date", "Title", "Category", "Amount", "Recurring", "Notes"},
			[]float64{12, 30, 15, 15, 10, 30}, len(r.Expenses), func(i int) []any {
				e := r.Expenses[i]
				return []any{e.Date.String(), e.Title, CategoryLabel(e.Category), e.Amount.Units(), yesNo(e.IsRecurring), e.Notes}
			})
	}

	if set == SheetsAll || set == SheetsIncomes {
		w.newSheet(sheetIncomes)
		w.table(sheetIncomes, []string{"Date", "Source", "Amount", "Recurring", "Notes"},
			[]float64{12, 30, 15, 10, 30}, len(r.Incomes), func(i int) []any {
				in := r.Incomes[i]
				return []any{in.Date.String(), in.Title, in.Amount.Units(), yesNo(in.IsRecurring), in.Notes}
			})
	}

	if set == SheetsAll {
		w.newSheet(sheetSummary)
		summary := [][]any{
			{"Total incomes", r.Summary.TotalIncomes.Units()},
			{"Total expenses", r.Summary.TotalExpenses.Units()},
			{"Net balance", r.Summary.NetBalance.Units()},
			{"Savings rate (%)", r.Summary.SavingsRate.InexactFloat64()},
			{"Health score", r.Health.Score},
			{"Rating", string(r.Health.Rating)},
			{"", ""},
			{"Spending by category", ""},
		}
		for _, c := range r.Categories {
			summary = append(summary, []any{"  " + CategoryLabel(c.Category), c.Total.Units()})
		}
		w.table(sheetSummary, []string{"Indicator", "Value"}, []float64{30, 20}, len(summary), func(i int) []any {
			return summary[i]
		})
	}

	// A goals-only workbook keeps its Goals sheet even when empty.
	if set == SheetsGoals || (set == SheetsAll && len(r.Goals) > 0) {
		w.newSheet(sheetGoals)
		w.table(sheetGoals, []string{"Category", "Month", "Limit", "Spent", "Remaining", "Percentage", "Status"},
			[]float64{15, 10, 15, 15, 15, 12, 12}, len(r.Goals), func(i int) []any {
				g := r.Goals[i]
				return []any{CategoryLabel(g.Category), g.Month.String(), g.Limit.Units(), g.Spent.Units(), g.Remaining.Units(), g.Percentage.InexactFloat64(), goalStateLabel(g.Status)}
			})
	}

	if w.err != nil {
		return nil, w.err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so the table code stays linear.
type sheetWriter struct {
	f       *excelize.File
	header  int
	started bool
	err     error
}

// newSheet renames the workbook's default sheet the first time and adds a
// sheet afterwards.
func (w *sheetWriter) newSheet(name string) {
	if w.err != nil {
		return
	}
	if !w.started {
		w.started = true
		if err := w.f.SetSheetName("Sheet1", name); err != nil {
			w.err = fmt.Errorf("rename sheet: %w", err)
		}
		return
	}
	if _, err := w.f.NewSheet(name); err != nil {
		w.err = fmt.Errorf("new sheet %s: %w", name, err)
	}
}

func (w *sheetWriter) table(sheet string, headers []string, widths []float64, n int, rowAt func(int) []any) {
	if w.err != nil {
		return
	}
	hdr := make([]any, len(headers))
	for i, h := range headers {
		hdr[i] = h
	}
	if err := w.f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		w.err = fmt.Errorf("%s header: %w", sheet, err)
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := w.f.SetCellStyle(sheet, "A1", last, w.header); err != nil {
		w.err = fmt.Errorf("%s header style: %w", sheet, err)
		return
	}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := w.f.SetColWidth(sheet, col, col, width); err != nil {
			w.err = fmt.Errorf("%s column width: %w", sheet, err)
			return
		}
	}
	for i := 0; i < n; i++ {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := rowAt(i)
		if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
			w.err = fmt.Errorf("%s row %d: %w", sheet, i+2, err)
			return
		}
	}
}
