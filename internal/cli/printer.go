package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"familybudget/internal/analysis"
	"familybudget/internal/export"
	"familybudget/internal/report"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	goodColor    = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	badColor     = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
)

// printReport writes a human summary of rep.
func printReport(w io.Writer, rep *report.Report) {
	switch rep.Kind {
	case report.KindMonthly:
		headingColor.Fprintf(w, "Monthly report %s", rep.Period.Month)
	case report.KindLedger:
		headingColor.Fprint(w, "Full ledger")
	default:
		headingColor.Fprintf(w, "Spending analysis, last %d months", rep.Period.Months)
	}
	dimColor.Fprintf(w, " (%s to %s)\n", rep.Period.Start, rep.Period.End)

	s := rep.Summary
	fmt.Fprintf(w, "  %-16s %12s\n", "Expenses", s.TotalExpenses)
	fmt.Fprintf(w, "  %-16s %12s\n", "Incomes", s.TotalIncomes)
	balance := goodColor
	if s.NetBalance.Cents < 0 {
		balance = badColor
	}
	fmt.Fprintf(w, "  %-16s ", "Balance")
	balance.Fprintf(w, "%12s\n", s.NetBalance)
	fmt.Fprintf(w, "  %-16s %11s%%\n", "Savings rate", s.SavingsRate.StringFixed(1))
	fmt.Fprintf(w, "  %-16s %12d\n", "Transactions", s.TransactionCount)
	if c := rep.Comparison; c != nil {
		fmt.Fprintf(w, "  %-16s %11s%% vs %s\n", "Expense change", c.ExpenseChange.StringFixed(1), c.PreviousMonth)
	}
	fmt.Fprintf(w, "  %-16s ", "Health score")
	healthColor(rep.Health.Rating).Fprintf(w, "%12d  %s\n", rep.Health.Score, rep.Health.Rating)

	if len(rep.Categories) > 0 {
		headingColor.Fprintln(w, "\nCategories")
		for _, c := range rep.Categories {
			fmt.Fprintf(w, "  %-16s %12s %7s%%  %d items\n",
				export.CategoryLabel(c.Category), c.Total, c.Share.StringFixed(1), c.Count)
		}
	}

	if len(rep.Goals) > 0 {
		headingColor.Fprintln(w, "\nGoals")
		for _, g := range rep.Goals {
			fmt.Fprintf(w, "  %-16s %12s / %-12s %7s%%  ",
				export.CategoryLabel(g.Category), g.Spent, g.Limit, g.Percentage.StringFixed(1))
			goalColor(g.Status).Fprintln(w, g.Status)
		}
	}

	if len(rep.Insights) > 0 {
		headingColor.Fprintln(w, "\nInsights")
		for _, in := range rep.Insights {
			severityColor(in.Severity).Fprintf(w, "  [%s] ", in.Severity)
			fmt.Fprintf(w, "%s: %s\n", in.Category, in.Message)
		}
	}

	if len(rep.Recommendations) > 0 {
		headingColor.Fprintln(w, "\nRecommendations")
		for _, r := range rep.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}

func healthColor(r analysis.Rating) *color.Color {
	switch r {
	case analysis.RatingExcellent, analysis.RatingGood:
		return goodColor
	case analysis.RatingAverage:
		return warnColor
	default:
		return badColor
	}
}

func goalColor(s analysis.GoalState) *color.Color {
	switch s {
	case analysis.GoalExceeded:
		return badColor
	case analysis.GoalWarning:
		return warnColor
	default:
		return goodColor
	}
}

func severityColor(s analysis.Severity) *color.Color {
	switch s {
	case analysis.SeverityAlert:
		return badColor
	case analysis.SeverityWarning:
		return warnColor
	case analysis.SeveritySuccess:
		return goodColor
	default:
		return dimColor
	}
}
