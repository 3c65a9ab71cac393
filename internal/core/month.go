package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthKey identifies a calendar month as "YYYY-MM". String order equals
// chronological order for four-digit years.
type MonthKey string

var ErrInvalidMonthKey = errors.New("invalid month key (expected YYYY-MM)")

// ParseMonthKey validates s and returns it as a MonthKey.
func ParseMonthKey(s string) (MonthKey, error) {
	m := MonthKey(strings.TrimSpace(s))
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// NewMonthKey builds the key for year and month (1-12).
func NewMonthKey(year, month int) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, month))
}

// MonthKeyOf returns the month containing d.
func MonthKeyOf(d Date) MonthKey {
	return NewMonthKey(d.Year(), d.Month())
}

func (m MonthKey) Validate() error {
	_, _, err := m.parts()
	return err
}

func (m MonthKey) parts() (int, int, error) {
	s := string(m)
	if len(s) != 7 || s[4] != '-' || !allDigits(s[:4]) || !allDigits(s[5:]) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonthKey, s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil || year < 1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonthKey, s)
	}
	month, err := strconv.Atoi(s[5:])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonthKey, s)
	}
	return year, month, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Year and Month return 0 for an invalid key.
func (m MonthKey) Year() int {
	y, _, _ := m.parts()
	return y
}

func (m MonthKey) Month() int {
	_, mo, _ := m.parts()
	return mo
}

// Bounds returns the first and last calendar day of the month.
func (m MonthKey) Bounds() (Date, Date, error) {
	year, month, err := m.parts()
	if err != nil {
		return Date{}, Date{}, err
	}
	first := NewDate(year, month, 1)
	last := Date{Time: first.AddDate(0, 1, -1)}
	return first, last, nil
}

// AddMonths shifts the key by n months (n may be negative).
func (m MonthKey) AddMonths(n int) MonthKey {
	year, month, err := m.parts()
	if err != nil {
		return m
	}
	t := time.Date(year, time.Month(month)+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return NewMonthKey(t.Year(), int(t.Month()))
}

// Prev returns the preceding month.
func (m MonthKey) Prev() MonthKey {
	return m.AddMonths(-1)
}

// Contains reports whether d falls inside the month.
func (m MonthKey) Contains(d Date) bool {
	return MonthKeyOf(d) == m
}

func (m MonthKey) String() string {
	return string(m)
}
