package google

import (
	"context"
	"errors"
	"strings"
	"testing"

	"familybudget/internal/core"
)

func TestParseExpenses(t *testing.T) {
	values := [][]any{
		{"ID", "Date", "Title", "Amount", "Category", "Recurring", "Notes", "Owner"},
		{"e1", "2025-01-03", "Groceries", "45,20", "Food", "", "weekly", "alice"},
		{"", "2025-01-04", "Mystery", "1,234.50", "", "yes", "", "alice"},
		{"e3", "2025-01-05", "Bob's", "10", "food", "", "", "bob"},
		{},
	}
	got, err := parseExpenses(values, "alice")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 expenses for alice, got %d", len(got))
	}
	if got[0].ID != "e1" || got[0].Amount.Cents != 4520 || got[0].Category != core.Food || got[0].Notes != "weekly" {
		t.Fatalf("unexpected first row %+v", got[0])
	}
	if got[1].ID != "row:3" || got[1].Category != core.Other || !got[1].IsRecurring || got[1].Amount.Cents != 123450 {
		t.Fatalf("unexpected second row %+v", got[1])
	}
}

func TestParseExpensesUnknownCategoryIsError(t *testing.T) {
	values := [][]any{
		{"Date", "Title", "Amount", "Category", "Owner"},
		{"2025-01-03", "Toy", "5", "pets", "alice"},
	}
	_, err := parseExpenses(values, "alice")
	if !errors.Is(err, core.ErrUnknownCategory) || !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("expected row-tagged ErrUnknownCategory, got %v", err)
	}
}

func TestParseMissingHeader(t *testing.T) {
	_, err := parseIncomes([][]any{{"Date", "Title", "Owner"}}, "alice")
	if err == nil || !strings.Contains(err.Error(), "missing Amount") {
		t.Fatalf("expected header error, got %v", err)
	}
	got, err := parseIncomes(nil, "alice")
	if err != nil || len(got) != 0 {
		t.Fatalf("empty tab must yield no records, got %v (err=%v)", got, err)
	}
}

func TestParseGoals(t *testing.T) {
	values := [][]any{
		{"ID", "Category", "Month", "Limit", "AlertThreshold", "Owner"},
		{"g1", "food", "2025-01", "300", "", "alice"},
		{"g2", "rent", "2025-01", "1000", "90", "alice"},
	}
	got, err := parseGoals(values, "alice")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got[0].AlertThreshold != core.DefaultAlertThreshold || got[1].AlertThreshold != 90 || got[1].MonthlyLimit.Cents != 100000 {
		t.Fatalf("unexpected goals %+v", got)
	}

	values[1][2] = "Jan 2025"
	if _, err := parseGoals(values, "alice"); !errors.Is(err, core.ErrInvalidMonthKey) {
		t.Fatalf("expected ErrInvalidMonthKey, got %v", err)
	}
}

func TestClientReadsConfiguredTabs(t *testing.T) {
	var ranges []string
	c := newWithGetter(Config{SpreadsheetID: "sheet", IncomesTab: "Entrate"}, func(_ context.Context, rng string) ([][]any, error) {
		ranges = append(ranges, rng)
		return [][]any{{"Date", "Title", "Amount", "Owner"}, {"2025-02-01", "Pay", "100", "alice"}}, nil
	}, nil)

	incomes, err := c.ListIncomes(context.Background(), "alice")
	if err != nil || len(incomes) != 1 {
		t.Fatalf("unexpected incomes %v (err=%v)", incomes, err)
	}
	if ranges[0] != "Entrate!A:Z" {
		t.Fatalf("unexpected range %q", ranges[0])
	}
}

func TestClientPropagatesFetchErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	c := newWithGetter(Config{SpreadsheetID: "sheet"}, func(context.Context, string) ([][]any, error) {
		return nil, boom
	}, nil)
	if _, err := c.ListGoals(context.Background(), "alice"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error %v", err)
	}
}
