package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Fatalf("unexpected date %v", d)
	}
	for _, bad := range []string{"", "2023-02-29", "29/02/2024", "2024-13-01"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct{ year, month, want int }{
		{2024, 2, 29},
		{2025, 2, 28},
		{2025, 4, 30},
		{2025, 12, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Name:   "Gaji",
		Amount: Money{Cents: 0},
		Date:   NewDate(2025, 1, 1),
		Kind:   Income,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Name: "a", Amount: Money{Cents: 1}, Kind: Expense}, ErrInvalidDate},
		{Transaction{Name: " ", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Kind: Expense}, ErrEmptyName},
		{Transaction{Name: "a", Amount: Money{Cents: -1}, Date: NewDate(2025, 1, 1), Kind: Expense}, ErrInvalidAmount},
		{Transaction{Name: "a", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Kind: "transfer"}, ErrInvalidKind},
	}
	for i, tc := range bads {
		if err := tc.tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestTransactionArchive(t *testing.T) {
	periodID := int64(7)
	created := time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)
	archivedAt := time.Date(2025, 3, 28, 12, 0, 0, 0, time.UTC)
	tx := Transaction{
		ID:        3,
		UserID:    1,
		PeriodID:  &periodID,
		Name:      "Listrik",
		Amount:    Money{Cents: 15000},
		Date:      NewDate(2025, 3, 2),
		Kind:      Expense,
		CreatedAt: created,
	}

	got := tx.Archive(periodID, archivedAt)
	if got.PeriodID != periodID || got.UserID != 1 || got.Name != "Listrik" {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if got.Amount != tx.Amount || !got.Date.Equal(tx.Date.Time) || got.Kind != Expense {
		t.Fatalf("snapshot lost transaction data: %+v", got)
	}
	if !got.OriginalCreatedAt.Equal(created) || !got.ArchivedAt.Equal(archivedAt) {
		t.Fatalf("unexpected timestamps %+v", got)
	}
}

func TestPeriodStats(t *testing.T) {
	s := NewPeriodStats(50000, 15000, 3)
	if s.Net != 35000 {
		t.Fatalf("expected net 35000, got %d", s.Net)
	}
	sum := s.Add(NewPeriodStats(0, 20000, 1))
	if sum.Income.Cents != 50000 || sum.Expense.Cents != 35000 || sum.Net != 15000 || sum.Count != 4 {
		t.Fatalf("unexpected sum %+v", sum)
	}
}

func TestUserSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings UserSettings
		want     error
	}{
		{"defaults", DefaultSettings(1), nil},
		{"payday 31", UserSettings{PaydayDay: 31, NamingFormat: NamingDateRange, Locale: LocaleEN}, nil},
		{"payday 0", UserSettings{PaydayDay: 0, NamingFormat: NamingMonthYear, Locale: LocaleID}, ErrInvalidPayday},
		{"payday 32", UserSettings{PaydayDay: 32, NamingFormat: NamingMonthYear, Locale: LocaleID}, ErrInvalidPayday},
		{"bad format", UserSettings{PaydayDay: 1, NamingFormat: "weekly", Locale: LocaleID}, ErrInvalidNamingFormat},
		{"bad locale", UserSettings{PaydayDay: 1, NamingFormat: NamingMonthYear, Locale: "fr"}, ErrInvalidLocale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.want == nil && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
