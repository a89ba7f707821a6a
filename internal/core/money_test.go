package core

import (
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
		{"500000", 50000000, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1e3", 0, false},
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
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		m    Money
		want string
	}{
		{Money{Cents: 0}, "0.00"},
		{Money{Cents: 5}, "0.05"},
		{Money{Cents: 1250}, "12.50"},
		{Money{Cents: 50000}, "500.00"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tc.m.Cents, got, tc.want)
		}
	}
	if got := CentsString(-15000); got != "-150.00" {
		t.Errorf("CentsString(-15000) = %q", got)
	}
}

func TestMoneyFromDecimal(t *testing.T) {
	m, err := MoneyFromDecimal(decimal.RequireFromString("19.995"))
	if err != nil || m.Cents != 2000 {
		t.Fatalf("expected 2000 cents, got %d (err=%v)", m.Cents, err)
	}
	if _, err := MoneyFromDecimal(decimal.RequireFromString("-0.01")); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}
