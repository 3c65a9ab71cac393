// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for parsing and validating request data.
// Query strings, JSON bodies and form bodies all go through the same small
// getter interface so handlers accept either transport.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"familybudget/internal/core"
	"familybudget/internal/export"
	"familybudget/internal/report"
)

const maxBodyBytes = 1 << 20

var (
	errBadRequest   = errors.New("bad request")
	errBodyTooLarge = errors.New("request body too large")
)

// paramGetter is satisfied by url.Values and RequestBodyParser.
type paramGetter interface {
	Get(key string) string
}

// ParseMonthParam reads a month either as "month=YYYY-MM" or as separate
// "year" and "month" numbers. An empty result means the current month.
func ParseMonthParam(src paramGetter) (core.MonthKey, error) {
	month := strings.TrimSpace(src.Get("month"))
	year := strings.TrimSpace(src.Get("year"))
	if month == "" && year == "" {
		return "", nil
	}
	if strings.Contains(month, "-") {
		return core.ParseMonthKey(month)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", fmt.Errorf("%w: year %q", core.ErrInvalidMonthKey, year)
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return "", fmt.Errorf("%w: month %q", core.ErrInvalidMonthKey, month)
	}
	key := core.NewMonthKey(y, m)
	if err := key.Validate(); err != nil {
		return "", err
	}
	return key, nil
}

// ParsePeriodParam reads the analysis window in months. Zero means the
// default window.
func ParsePeriodParam(src paramGetter) (int, error) {
	v := strings.TrimSpace(src.Get("period"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > report.MaxPeriodMonths {
		return 0, fmt.Errorf("%w: %q", report.ErrInvalidPeriod, v)
	}
	return n, nil
}

// ParseKindParam reads a report kind, defaulting to monthly.
func ParseKindParam(src paramGetter) (report.Kind, error) {
	switch k := report.Kind(strings.ToLower(strings.TrimSpace(src.Get("kind")))); k {
	case "":
		return report.KindMonthly, nil
	case report.KindMonthly, report.KindAnalysis, report.KindLedger:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown report kind %q", errBadRequest, k)
	}
}

// ParseSheetsParam reads the workbook sheet selection; empty means all.
func ParseSheetsParam(src paramGetter) (export.SheetSet, error) {
	return export.ParseSheets(src.Get("sheets"))
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads at most maxBodyBytes of the body once.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = errBodyTooLarge
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: malformed JSON body: %v", errBadRequest, err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = fmt.Errorf("%w: malformed form body: %v", errBadRequest, p.err)
	}
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was present in the body.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	return p.formData != nil && p.formData.Has(key)
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func parseBoolParam(src paramGetter, key string) (bool, error) {
	v := strings.TrimSpace(src.Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", errBadRequest, key)
	}
	return b, nil
}

// parseDateParam reads a YYYY-MM-DD date, defaulting to today.
func parseDateParam(src paramGetter, now time.Time) (core.Date, error) {
	v := strings.TrimSpace(src.Get("date"))
	if v == "" {
		return core.DateOf(now), nil
	}
	return core.ParseDate(v)
}

// ParseExpense builds an expense from request parameters. Ownership is set by
// the ledger.
func ParseExpense(src paramGetter, now time.Time) (core.Expense, error) {
	amount, err := core.ParseMoney(src.Get("amount"))
	if err != nil {
		return core.Expense{}, err
	}
	category, err := core.ParseCategory(src.Get("category"))
	if err != nil {
		return core.Expense{}, err
	}
	date, err := parseDateParam(src, now)
	if err != nil {
		return core.Expense{}, err
	}
	recurring, err := parseBoolParam(src, "is_recurring")
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		Title:       src.Get("title"),
		Amount:      amount,
		Category:    category,
		Date:        date,
		IsRecurring: recurring,
		Notes:       src.Get("notes"),
	}, nil
}

// ParseIncome builds an income from request parameters.
func ParseIncome(src paramGetter, now time.Time) (core.Income, error) {
	amount, err := core.ParseMoney(src.Get("amount"))
	if err != nil {
		return core.Income{}, err
	}
	date, err := parseDateParam(src, now)
	if err != nil {
		return core.Income{}, err
	}
	recurring, err := parseBoolParam(src, "is_recurring")
	if err != nil {
		return core.Income{}, err
	}
	return core.Income{
		Title:       src.Get("title"),
		Amount:      amount,
		Date:        date,
		IsRecurring: recurring,
		Notes:       src.Get("notes"),
	}, nil
}

// ParseGoal builds a budget goal. The month defaults to the current month and
// the alert threshold to core.DefaultAlertThreshold.
func ParseGoal(src paramGetter, now time.Time) (core.BudgetGoal, error) {
	category, err := core.ParseCategory(src.Get("category"))
	if err != nil {
		return core.BudgetGoal{}, err
	}
	limit, err := core.ParseMoney(src.Get("monthly_limit"))
	if err != nil {
		return core.BudgetGoal{}, err
	}
	threshold := core.DefaultAlertThreshold
	if v := strings.TrimSpace(src.Get("alert_threshold")); v != "" {
		threshold, err = strconv.Atoi(v)
		if err != nil {
			return core.BudgetGoal{}, core.ErrInvalidThreshold
		}
	}
	month, err := ParseMonthParam(src)
	if err != nil {
		return core.BudgetGoal{}, err
	}
	if month == "" {
		month = core.MonthKeyOf(core.DateOf(now))
	}
	return core.BudgetGoal{
		ID:             src.Get("id"),
		Category:       category,
		MonthlyLimit:   limit,
		AlertThreshold: threshold,
		Month:          month,
	}, nil
}

// parseExportName splits "monthly.pdf" into its report kind and format.
func parseExportName(name string) (report.Kind, export.Format, error) {
	base, ext, ok := strings.Cut(name, ".")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", export.ErrUnknownFormat, name)
	}
	format, err := export.ParseFormat(ext)
	if err != nil {
		return "", "", err
	}
	switch kind := report.Kind(base); kind {
	case report.KindMonthly, report.KindAnalysis, report.KindLedger:
		return kind, format, nil
	default:
		return "", "", fmt.Errorf("%w: unknown report kind %q", errBadRequest, base)
	}
}
