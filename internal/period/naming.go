package period

import (
	"fmt"

	"dompet/internal/core"
)

var (
	monthNames = map[string][12]string{
		core.LocaleID: {"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"},
		core.LocaleEN: {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	}
	shortMonthNames = map[string][12]string{
		core.LocaleID: {"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"},
		core.LocaleEN: {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	}
)

// Label holds the date components a period name is built from.
type Label struct {
	StartDay, StartMonth, StartYear int
	EndDay, EndMonth, EndYear       int
}

func LabelOf(start, end core.Date) Label {
	return Label{
		StartDay: start.Day(), StartMonth: start.Month(), StartYear: start.Year(),
		EndDay: end.Day(), EndMonth: end.Month(), EndYear: end.Year(),
	}
}

// SameMonth reports whether both ends fall in the same month of the same year.
func (l Label) SameMonth() bool {
	return l.StartMonth == l.EndMonth && l.StartYear == l.EndYear
}

// Namer builds human-readable period names.
type Namer struct {
	Locale string
	Format core.NamingFormat
}

// NewNamer returns the namer configured by the user's settings, falling back
// to the Indonesian locale.
func NewNamer(s core.UserSettings) Namer {
	n := Namer{Locale: s.Locale, Format: s.NamingFormat}
	if _, ok := monthNames[n.Locale]; !ok {
		n.Locale = core.LocaleID
	}
	return n
}

// Name renders "Oktober 2024" when the period starts and ends in the same
// calendar month, and a range such as "25 Okt – 24 Nov 2024" otherwise or when the
// date_range format is selected.
func (n Namer) Name(start, end core.Date) string {
	l := LabelOf(start, end)
	if n.Format != core.NamingDateRange && l.SameMonth() {
		return fmt.Sprintf("%s %d", n.month(l.StartMonth), l.StartYear)
	}
	if l.StartYear != l.EndYear {
		return fmt.Sprintf("%d %s %d – %d %s %d",
			l.StartDay, n.shortMonth(l.StartMonth), l.StartYear,
			l.EndDay, n.shortMonth(l.EndMonth), l.EndYear)
	}
	return fmt.Sprintf("%d %s – %d %s %d",
		l.StartDay, n.shortMonth(l.StartMonth),
		l.EndDay, n.shortMonth(l.EndMonth), l.EndYear)
}

func (n Namer) month(m int) string {
	return monthNames[n.locale()][m-1]
}

func (n Namer) shortMonth(m int) string {
	return shortMonthNames[n.locale()][m-1]
}

func (n Namer) locale() string {
	if _, ok := monthNames[n.Locale]; ok {
		return n.Locale
	}
	return core.LocaleID
}
