package period

import (
	"testing"
	"time"

	"dompet/internal/core"
)

func d(y, m, day int) core.Date { return core.NewDate(y, m, day) }

func TestStartDate(t *testing.T) {
	tests := []struct {
		name   string
		payday int
		ref    core.Date
		want   core.Date
	}{
		{"before payday rolls back", 25, d(2025, 3, 10), d(2025, 2, 25)},
		{"after payday", 25, d(2025, 3, 26), d(2025, 3, 25)},
		{"on payday", 25, d(2025, 3, 25), d(2025, 3, 25)},
		{"payday one", 1, d(2025, 3, 15), d(2025, 3, 1)},
		{"january rolls back a year", 10, d(2025, 1, 5), d(2024, 12, 10)},
		{"payday 31 in february", 31, d(2025, 2, 28), d(2025, 2, 28)},
		{"payday 31 early march", 31, d(2025, 3, 5), d(2025, 2, 28)},
		{"payday 30 leap february", 30, d(2024, 2, 29), d(2024, 2, 29)},
		{"payday 31 in april", 31, d(2025, 4, 30), d(2025, 4, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StartDate(tt.payday, tt.ref); !got.Equal(tt.want.Time) {
				t.Fatalf("StartDate(%d, %s) = %s, want %s", tt.payday, tt.ref, got, tt.want)
			}
		})
	}
}

func TestEndDate(t *testing.T) {
	tests := []struct {
		name   string
		payday int
		start  core.Date
		want   core.Date
	}{
		{"mid month payday", 25, d(2025, 2, 25), d(2025, 3, 24)},
		{"payday one", 1, d(2025, 3, 1), d(2025, 3, 31)},
		{"december crosses year", 25, d(2024, 12, 25), d(2025, 1, 24)},
		{"payday 31 from january", 31, d(2025, 1, 31), d(2025, 2, 27)},
		{"payday 31 from february", 31, d(2025, 2, 28), d(2025, 3, 30)},
		{"payday 30 from january leap", 30, d(2024, 1, 30), d(2024, 2, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EndDate(tt.start, tt.payday); !got.Equal(tt.want.Time) {
				t.Fatalf("EndDate(%s, %d) = %s, want %s", tt.start, tt.payday, got, tt.want)
			}
		})
	}
}

func TestBoundsContainReferenceForEveryPayday(t *testing.T) {
	first := d(2023, 11, 1)
	last := d(2025, 3, 31)
	for payday := 1; payday <= 31; payday++ {
		for ref := first; !ref.After(last); ref = ref.AddDays(1) {
			start, end := Bounds(payday, ref)
			if ref.Before(start) || ref.After(end) {
				t.Fatalf("payday %d ref %s: [%s, %s] does not contain ref", payday, ref, start, end)
			}
			days := int(end.Sub(start.Time)/(24*time.Hour)) + 1
			if days < 28 || days > 31 {
				t.Fatalf("payday %d ref %s: [%s, %s] spans %d days", payday, ref, start, end, days)
			}
			if next := StartDate(payday, end.AddDays(1)); !next.Equal(end.AddDays(1).Time) {
				t.Fatalf("payday %d ref %s: next period starts %s, want %s", payday, ref, next, end.AddDays(1))
			}
		}
	}
}

func TestCustomEndDate(t *testing.T) {
	tests := []struct {
		start core.Date
		want  core.Date
	}{
		{d(2025, 3, 1), d(2025, 3, 31)},
		{d(2025, 3, 15), d(2025, 4, 14)},
		{d(2024, 12, 20), d(2025, 1, 19)},
		{d(2025, 1, 31), d(2025, 3, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.start.String(), func(t *testing.T) {
			if got := CustomEndDate(tt.start); !got.Equal(tt.want.Time) {
				t.Fatalf("CustomEndDate(%s) = %s, want %s", tt.start, got, tt.want)
			}
		})
	}
}

func TestArchivedEndDate(t *testing.T) {
	start := d(2025, 3, 1)
	if got := ArchivedEndDate(start, time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)); !got.Equal(d(2025, 3, 19).Time) {
		t.Fatalf("got %s, want 2025-03-19", got)
	}
	if got := ArchivedEndDate(start, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)); !got.Equal(start.Time) {
		t.Fatalf("archiving on the start day must not end before start, got %s", got)
	}
}

func TestNamer(t *testing.T) {
	tests := []struct {
		name  string
		namer Namer
		start core.Date
		end   core.Date
		want  string
	}{
		{"single month id", Namer{Locale: core.LocaleID}, d(2024, 10, 1), d(2024, 10, 31), "Oktober 2024"},
		{"single month en", Namer{Locale: core.LocaleEN}, d(2024, 10, 1), d(2024, 10, 31), "October 2024"},
		{"range id", Namer{Locale: core.LocaleID}, d(2024, 10, 25), d(2024, 11, 24), "25 Okt – 24 Nov 2024"},
		{"range across years", Namer{Locale: core.LocaleID}, d(2024, 12, 25), d(2025, 1, 24), "25 Des 2024 – 24 Jan 2025"},
		{"forced range", Namer{Locale: core.LocaleEN, Format: core.NamingDateRange}, d(2025, 3, 1), d(2025, 3, 31), "1 Mar – 31 Mar 2025"},
		{"unknown locale falls back", Namer{Locale: "fr"}, d(2025, 8, 1), d(2025, 8, 31), "Agustus 2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.namer.Name(tt.start, tt.end); got != tt.want {
				t.Fatalf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLabelSameMonth(t *testing.T) {
	if !LabelOf(d(2025, 3, 1), d(2025, 3, 31)).SameMonth() {
		t.Fatal("expected same month")
	}
	if LabelOf(d(2024, 3, 1), d(2025, 3, 31)).SameMonth() {
		t.Fatal("same month in different years must not count")
	}
}
