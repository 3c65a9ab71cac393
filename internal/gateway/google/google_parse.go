package google

import (
	"fmt"
	"strconv"
	"strings"

	"familybudget/internal/core"
)

// Header names, matched case-insensitively.
const (
	colID        = "ID"
	colDate      = "Date"
	colTitle     = "Title"
	colAmount    = "Amount"
	colCategory  = "Category"
	colRecurring = "Recurring"
	colNotes     = "Notes"
	colOwner     = "Owner"
	colMonth     = "Month"
	colLimit     = "Limit"
	colThreshold = "AlertThreshold"
)

// table maps header names to column indexes over a values matrix.
type table struct {
	headers []string
	rows    [][]string
}

func newTable(values [][]any, required ...string) (*table, error) {
	if len(values) == 0 {
		return &table{}, nil
	}
	t := &table{headers: toStrings(values[0])}
	var missing []string
	for _, name := range required {
		if indexOf(t.headers, name) == -1 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected header: missing %s; got headers=%v", strings.Join(missing, ","), t.headers)
	}
	for _, row := range values[1:] {
		t.rows = append(t.rows, toStrings(row))
	}
	return t, nil
}

func (t *table) cell(row []string, name string) string {
	return safeGet(row, indexOf(t.headers, name))
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func parseExpenses(values [][]any, owner string) ([]core.Expense, error) {
	t, err := newTable(values, colDate, colTitle, colAmount, colCategory, colOwner)
	if err != nil {
		return nil, err
	}
	out := make([]core.Expense, 0)
	for i, row := range t.rows {
		if blank(row) || t.cell(row, colOwner) != owner {
			continue
		}
		date, amount, err := parseCommon(t, row)
		if err != nil {
			return nil, fmt.Errorf("expenses row %d: %w", i+2, err)
		}
		// Empty category cells are filed under "other".
		category := core.Other
		if raw := t.cell(row, colCategory); raw != "" {
			if category, err = core.ParseCategory(raw); err != nil {
				return nil, fmt.Errorf("expenses row %d: %w", i+2, err)
			}
		}
		out = append(out, core.Expense{
			ID:          rowID(t, row, i),
			Title:       t.cell(row, colTitle),
			Amount:      amount,
			Category:    category,
			Date:        date,
			IsRecurring: parseBool(t.cell(row, colRecurring)),
			Notes:       t.cell(row, colNotes),
			CreatedBy:   owner,
		})
	}
	return out, nil
}

func parseIncomes(values [][]any, owner string) ([]core.Income, error) {
	t, err := newTable(values, colDate, colTitle, colAmount, colOwner)
	if err != nil {
		return nil, err
	}
	out := make([]core.Income, 0)
	for i, row := range t.rows {
		if blank(row) || t.cell(row, colOwner) != owner {
			continue
		}
		date, amount, err := parseCommon(t, row)
		if err != nil {
			return nil, fmt.Errorf("incomes row %d: %w", i+2, err)
		}
		out = append(out, core.Income{
			ID:          rowID(t, row, i),
			Title:       t.cell(row, colTitle),
			Amount:      amount,
			Date:        date,
			IsRecurring: parseBool(t.cell(row, colRecurring)),
			Notes:       t.cell(row, colNotes),
			CreatedBy:   owner,
		})
	}
	return out, nil
}

func parseGoals(values [][]any, owner string) ([]core.BudgetGoal, error) {
	t, err := newTable(values, colCategory, colMonth, colLimit, colOwner)
	if err != nil {
		return nil, err
	}
	out := make([]core.BudgetGoal, 0)
	for i, row := range t.rows {
		if blank(row) || t.cell(row, colOwner) != owner {
			continue
		}
		g := core.BudgetGoal{ID: rowID(t, row, i), CreatedBy: owner, AlertThreshold: core.DefaultAlertThreshold}
		if g.Category, err = core.ParseCategory(t.cell(row, colCategory)); err != nil {
			return nil, fmt.Errorf("goals row %d: %w", i+2, err)
		}
		if g.Month, err = core.ParseMonthKey(t.cell(row, colMonth)); err != nil {
			return nil, fmt.Errorf("goals row %d: %w", i+2, err)
		}
		if g.MonthlyLimit, err = parseAmount(t.cell(row, colLimit)); err != nil {
			return nil, fmt.Errorf("goals row %d: %w", i+2, err)
		}
		if raw := t.cell(row, colThreshold); raw != "" {
			if g.AlertThreshold, err = strconv.Atoi(raw); err != nil {
				return nil, fmt.Errorf("goals row %d: %w", i+2, core.ErrInvalidThreshold)
			}
		}
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("goals row %d: %w", i+2, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func parseCommon(t *table, row []string) (core.Date, core.Money, error) {
	date, err := core.ParseDate(t.cell(row, colDate))
	if err != nil {
		return core.Date{}, core.Money{}, err
	}
	amount, err := parseAmount(t.cell(row, colAmount))
	if err != nil {
		return core.Date{}, core.Money{}, err
	}
	return date, amount, nil
}

// parseAmount accepts "12.34", "12,34" and spreadsheet-formatted numbers.
func parseAmount(s string) (core.Money, error) {
	s = strings.TrimSpace(s)
	if m, err := core.ParseMoney(s); err == nil {
		return m, nil
	}
	// Numbers formatted with a thousands separator, e.g. "1,234.50".
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		return core.ParseMoney(strings.ReplaceAll(s, ",", ""))
	}
	return core.ParseMoney(s)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "x":
		return true
	default:
		return false
	}
}

// rowID prefers the ID column and falls back to the sheet row number.
func rowID(t *table, row []string, i int) string {
	if id := t.cell(row, colID); id != "" {
		return id
	}
	return fmt.Sprintf("row:%d", i+2)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
