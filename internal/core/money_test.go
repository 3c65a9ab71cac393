package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
	if _, err := ParseDecimalToCents("-3"); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Money `json:"a"`
	}{Money{Cents: -20050}})
	if err != nil || string(b) != `{"a":-200.50}` {
		t.Fatalf("unexpected marshal %s (err=%v)", b, err)
	}

	for _, in := range []string{`12.34`, `"12.34"`, `"12,34"`, `12.335`} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if in == `12.335` {
			if m.Cents != 1234 {
				t.Fatalf("%s: expected half-up to 1234, got %d", in, m.Cents)
			}
			continue
		}
		if m.Cents != 1234 {
			t.Fatalf("%s: expected 1234, got %d", in, m.Cents)
		}
	}
	var m Money
	if err := json.Unmarshal([]byte(`"abc"`), &m); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 10}
	b := Money{Cents: 20}
	if a.Add(b).Cents != 30 || a.Sub(b).Cents != -10 || a.Sub(b).Abs().Cents != 10 {
		t.Fatalf("arithmetic mismatch")
	}
	// 0.1 + 0.2 stays exact
	if !a.Add(b).Decimal().Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("expected exact 0.30, got %s", a.Add(b).Decimal())
	}
	if MoneyFromDecimal(decimal.RequireFromString("1.005")).Cents != 101 {
		t.Fatalf("MoneyFromDecimal must round half-up")
	}
}
