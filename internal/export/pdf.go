package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"familybudget/internal/analysis"
	"familybudget/internal/report"
)

var (
	headerColor       = [3]int{33, 64, 95}
	headerTextColor   = [3]int{255, 255, 255}
	sectionTitleColor = [3]int{33, 64, 95}
	bodyTextColor     = [3]int{40, 40, 40}
	lineColor         = [3]int{200, 200, 200}
	alertColor        = [3]int{192, 0, 0}
	okColor           = [3]int{0, 128, 0}
)

// PDFRenderer lays a report out on A4 pages: summary, categories, goals,
// insights and recommendations.
type PDFRenderer struct{}

func (PDFRenderer) Render(r *report.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr("Generated "+r.GeneratedAt.Format("2006-01-02 15:04")), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	section := func(title string) {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(3)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	}
	row := func(widths []float64, cells []string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 9)
		for i, c := range cells {
			align := "L"
			if i > 0 {
				align = "R"
			}
			ln := 0
			if i == len(cells)-1 {
				ln = 1
			}
			border := ""
			if bold {
				border = "B"
			}
			pdf.CellFormat(widths[i], 6, tr(c), border, ln, align, false, 0, "")
		}
	}

	// Title band
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  "+reportTitle(r)), "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  %s to %s", r.Period.Start, r.Period.End)), "", 1, "L", true, 0, "")

	section("Summary")
	kv := []float64{70, 50}
	s := r.Summary
	row(kv, []string{"Total incomes", s.TotalIncomes.String()}, false)
	row(kv, []string{"Total expenses", s.TotalExpenses.String()}, false)
	row(kv, []string{"Net balance", s.NetBalance.String()}, false)
	row(kv, []string{"Savings rate", s.SavingsRate.String() + "%"}, false)
	row(kv, []string{"Transactions", fmt.Sprint(s.TransactionCount)}, false)
	if r.Comparison != nil {
		row(kv, []string{"Expenses vs " + r.Comparison.PreviousMonth.String(), signedPct(r.Comparison.ExpenseChange)}, false)
		row(kv, []string{"Incomes vs " + r.Comparison.PreviousMonth.String(), signedPct(r.Comparison.IncomeChange)}, false)
	}
	row(kv, []string{"Health score", fmt.Sprintf("%d/100 (%s)", r.Health.Score, r.Health.Rating)}, false)
	row(kv, []string{"Forecast next month expenses", r.Forecast.NextMonthExpenses.StringFixed(2)}, false)

	if len(r.Categories) > 0 {
		section("Spending by category")
		w := []float64{50, 30, 20, 30, 25}
		row(w, []string{"Category", "Total", "Count", "Average", "Share"}, true)
		for _, c := range r.Categories {
			row(w, []string{CategoryLabel(c.Category), c.Total.String(), fmt.Sprint(c.Count), c.Average.StringFixed(2), c.Share.String() + "%"}, false)
		}
	}

	if len(r.Goals) > 0 {
		section("Budget goals")
		w := []float64{45, 30, 30, 30, 20, 25}
		row(w, []string{"Category", "Limit", "Spent", "Remaining", "Used", "Status"}, true)
		for _, g := range r.Goals {
			if g.Status == analysis.GoalExceeded {
				pdf.SetTextColor(alertColor[0], alertColor[1], alertColor[2])
			}
			row(w, []string{CategoryLabel(g.Category), g.Limit.String(), g.Spent.String(), g.Remaining.String(), g.Percentage.String() + "%", goalStateLabel(g.Status)}, false)
			pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		}
	}

	if len(r.TopExpenses) > 0 {
		section("Largest expenses")
		w := []float64{25, 80, 40, 30}
		for _, e := range r.TopExpenses {
			row(w, []string{e.Date.String(), e.Title, CategoryLabel(e.Category), e.Amount.String()}, false)
		}
	}

	if len(r.Insights) > 0 {
		section("Insights")
		for _, in := range r.Insights {
			switch in.Severity {
			case analysis.SeverityAlert, analysis.SeverityWarning:
				pdf.SetTextColor(alertColor[0], alertColor[1], alertColor[2])
			case analysis.SeveritySuccess:
				pdf.SetTextColor(okColor[0], okColor[1], okColor[2])
			}
			pdf.MultiCell(190, 5, tr(fmt.Sprintf("%s: %s", in.Category, in.Message)), "", "L", false)
			pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		}
	}

	if len(r.Recommendations) > 0 {
		section("Recommendations")
		for _, rec := range r.Recommendations {
			pdf.MultiCell(190, 5, tr("- "+rec), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func reportTitle(r *report.Report) string {
	switch r.Kind {
	case report.KindMonthly:
		return "Monthly report " + r.Period.Month.String()
	case report.KindLedger:
		return fmt.Sprintf("Full ledger, %s to %s", r.Period.Start, r.Period.End)
	default:
		return fmt.Sprintf("Spending analysis, last %d months", r.Period.Months)
	}
}

func signedPct(n report.Number) string {
	if n.IsPositive() {
		return "+" + n.String() + "%"
	}
	return n.String() + "%"
}
