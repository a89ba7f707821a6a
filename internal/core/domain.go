package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	NamingMonthYear NamingFormat = "month_year"
	NamingDateRange NamingFormat = "date_range"
)

const (
	LocaleID = "id"
	LocaleEN = "en"
)

// DefaultPaydayDay is used when a user has never configured a payday.
const DefaultPaydayDay = 1

type (
	Kind         string
	NamingFormat string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a live income or expense entry. A nil PeriodID means the
	// transaction is unassigned and is excluded from every period statistic.
	Transaction struct {
		ID         int64
		UserID     int64
		PeriodID   *int64
		CategoryID *int64
		Name       string
		Amount     Money
		Date       Date
		Kind       Kind
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	// ArchivedTransaction is the immutable snapshot of a transaction taken when
	// its period was archived.
	ArchivedTransaction struct {
		ID                int64
		PeriodID          int64
		UserID            int64
		CategoryID        *int64
		Name              string
		Amount            Money
		Date              Date
		Kind              Kind
		OriginalCreatedAt time.Time
		ArchivedAt        time.Time
	}

	// PeriodStats are the cached totals of a period. They are always recomputed
	// from the live transactions, never maintained incrementally.
	PeriodStats struct {
		Income  Money
		Expense Money
		// Net is income minus expense in cents and may be negative.
		Net   int64
		Count int
	}

	Period struct {
		ID         int64
		UserID     int64
		StartDate  Date
		EndDate    Date
		Name       string
		IsActive   bool
		Stats      PeriodStats
		ExportedAt *time.Time
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	UserSettings struct {
		UserID       int64
		PaydayDay    int
		AutoArchive  bool
		NamingFormat NamingFormat
		Locale       string
	}

	// Page bounds a listing. A zero Limit means no limit.
	Page struct {
		Limit  int
		Offset int
	}
)

var (
	ErrInvalidDay          = errors.New("invalid day")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrEmptyName           = errors.New("empty transaction name")
	ErrNameTooLong         = errors.New("transaction name too long (max 255 characters)")
	ErrInvalidPayday       = errors.New("payday must be between 1 and 31")
	ErrInvalidNamingFormat = errors.New("invalid period naming format")
	ErrInvalidLocale       = errors.New("invalid locale")

	ErrNotFound           = errors.New("not found")
	ErrNoActivePeriod     = errors.New("no active period")
	ErrEmptyPeriodReset   = errors.New("cannot reset: the current period has no transactions")
	ErrArchiveFailed      = errors.New("reset failed")
	ErrPeriodArchived     = errors.New("period is already archived")
	ErrActivePeriodExists = errors.New("user already has an active period")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
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

// AddDays returns the date n calendar days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// DateLayout is the storage and wire format of calendar dates.
const DateLayout = "2006-01-02"

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date in the timestamp's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DaysInMonth returns the number of days of the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Name)) == 0 {
		return ErrEmptyName
	}
	if len(t.Name) > 255 {
		return ErrNameTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return t.Kind.Validate()
}

// Assigned reports whether the transaction belongs to a period.
func (t Transaction) Assigned() bool {
	return t.PeriodID != nil
}

// Archive builds the immutable snapshot of t for the given period.
func (t Transaction) Archive(periodID int64, archivedAt time.Time) ArchivedTransaction {
	return ArchivedTransaction{
		PeriodID:          periodID,
		UserID:            t.UserID,
		CategoryID:        t.CategoryID,
		Name:              t.Name,
		Amount:            t.Amount,
		Date:              t.Date,
		Kind:              t.Kind,
		OriginalCreatedAt: t.CreatedAt,
		ArchivedAt:        archivedAt,
	}
}

// NewPeriodStats derives net from income and expense totals.
func NewPeriodStats(incomeCents, expenseCents int64, count int) PeriodStats {
	return PeriodStats{
		Income:  Money{Cents: incomeCents},
		Expense: Money{Cents: expenseCents},
		Net:     incomeCents - expenseCents,
		Count:   count,
	}
}

// Add returns the element-wise sum of two stats.
func (s PeriodStats) Add(other PeriodStats) PeriodStats {
	return NewPeriodStats(s.Income.Cents+other.Income.Cents, s.Expense.Cents+other.Expense.Cents, s.Count+other.Count)
}

// ValidatePayday rejects payday days outside 1–31.
func ValidatePayday(day int) error {
	if day < 1 || day > 31 {
		return ErrInvalidPayday
	}
	return nil
}

// DefaultSettings returns the settings lazily created for a user.
func DefaultSettings(userID int64) UserSettings {
	return UserSettings{
		UserID:       userID,
		PaydayDay:    DefaultPaydayDay,
		NamingFormat: NamingMonthYear,
		Locale:       LocaleID,
	}
}

func (s UserSettings) Validate() error {
	if err := ValidatePayday(s.PaydayDay); err != nil {
		return err
	}
	switch s.NamingFormat {
	case NamingMonthYear, NamingDateRange:
	default:
		return ErrInvalidNamingFormat
	}
	switch s.Locale {
	case LocaleID, LocaleEN:
	default:
		return ErrInvalidLocale
	}
	return nil
}
