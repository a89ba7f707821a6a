package storage

import "database/sql"

// Row types mirror the tables. Dates are TEXT "YYYY-MM-DD" and timestamps are
// TEXT RFC 3339 in UTC.

type Period struct {
	ID                int64
	UserID            int64
	StartDate         string
	EndDate           string
	Name              string
	IsActive          bool
	TotalIncomeCents  int64
	TotalExpenseCents int64
	NetCents          int64
	TransactionCount  int64
	ExportedAt        sql.NullString
	CreatedAt         string
	UpdatedAt         string
}

type Transaction struct {
	ID          int64
	UserID      int64
	PeriodID    sql.NullInt64
	CategoryID  sql.NullInt64
	Name        string
	AmountCents int64
	Date        string
	Kind        string
	CreatedAt   string
	UpdatedAt   string
}

type ArchivedTransaction struct {
	ID                int64
	PeriodID          int64
	UserID            int64
	CategoryID        sql.NullInt64
	Name              string
	AmountCents       int64
	Date              string
	Kind              string
	OriginalCreatedAt string
	ArchivedAt        string
}

type UserSetting struct {
	UserID       int64
	PaydayDay    int64
	AutoArchive  bool
	NamingFormat string
	Locale       string
}
