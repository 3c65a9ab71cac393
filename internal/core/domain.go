package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Food      Category = "food"
	Rent      Category = "rent"
	Transport Category = "transport"
	Education Category = "education"
	Health    Category = "health"
	Leisure   Category = "leisure"
	Utilities Category = "utilities"
	Clothing  Category = "clothing"
	Savings   Category = "savings"
	Other     Category = "other"
)

// DefaultAlertThreshold is the goal alert percentage used when none is given.
const DefaultAlertThreshold = 80

const maxTitleLength = 200

type (
	// Category classifies an expense. The set is closed.
	Category string

	Date struct {
		time.Time
	}

	Expense struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Amount      Money    `json:"amount"`
		Category    Category `json:"category"`
		Date        Date     `json:"date"`
		IsRecurring bool     `json:"is_recurring"`
		Notes       string   `json:"notes,omitempty"`
		CreatedBy   string   `json:"created_by"`
	}

	Income struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Amount      Money  `json:"amount"`
		Date        Date   `json:"date"`
		IsRecurring bool   `json:"is_recurring"`
		Notes       string `json:"notes,omitempty"`
		CreatedBy   string `json:"created_by"`
	}

	// BudgetGoal is a per-category monthly spending ceiling. At most one goal
	// exists per (category, month, owner).
	BudgetGoal struct {
		ID             string   `json:"id"`
		Category       Category `json:"category"`
		MonthlyLimit   Money    `json:"monthly_limit"`
		AlertThreshold int      `json:"alert_threshold"`
		Month          MonthKey `json:"month"`
		CreatedBy      string   `json:"created_by"`
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("amount cannot be negative")
	ErrEmptyTitle       = errors.New("empty title")
	ErrTitleTooLong     = errors.New("title too long (max 200 characters)")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrInvalidThreshold = errors.New("alert threshold must be between 0 and 100")
	ErrEmptyOwner       = errors.New("empty owner")
)

var allCategories = []Category{Food, Rent, Transport, Education, Health, Leisure, Utilities, Clothing, Savings, Other}

// Categories returns the closed category set in its canonical order.
func Categories() []Category {
	return append([]Category(nil), allCategories...)
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	for _, v := range allCategories {
		if c == v {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory normalizes s and checks it against the closed set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Before compares calendar dates only.
func (d Date) Before(o Date) bool {
	return d.String() < o.String()
}

// After compares calendar dates only.
func (d Date) After(o Date) bool {
	return d.String() > o.String()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	// Accept full timestamps from stores that keep a time component.
	if len(s) > len(time.DateOnly) {
		s = s[:len(time.DateOnly)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func validateTitle(title string) error {
	if len(strings.TrimSpace(title)) == 0 {
		return ErrEmptyTitle
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// TransactionDate returns the date the expense was incurred.
func (e Expense) TransactionDate() Date { return e.Date }

// TransactionAmount returns the expense amount.
func (e Expense) TransactionAmount() Money { return e.Amount }

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := validateTitle(e.Title); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, e.Category)
	}
	if strings.TrimSpace(e.CreatedBy) == "" {
		return ErrEmptyOwner
	}
	return nil
}

// TransactionDate returns the date the income was received.
func (i Income) TransactionDate() Date { return i.Date }

// TransactionAmount returns the income amount.
func (i Income) TransactionAmount() Money { return i.Amount }

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if err := validateTitle(i.Title); err != nil {
		return err
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(i.CreatedBy) == "" {
		return ErrEmptyOwner
	}
	return nil
}

func (g BudgetGoal) Validate() error {
	if !g.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, g.Category)
	}
	if err := g.MonthlyLimit.Validate(); err != nil {
		return err
	}
	if g.AlertThreshold < 0 || g.AlertThreshold > 100 {
		return ErrInvalidThreshold
	}
	if err := g.Month.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(g.CreatedBy) == "" {
		return ErrEmptyOwner
	}
	return nil
}
