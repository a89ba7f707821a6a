package storage

import (
	"database/sql"
	"fmt"
	"time"

	"dompet/internal/core"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func toPeriod(p Period) (core.Period, error) {
	start, err := core.ParseDate(p.StartDate)
	if err != nil {
		return core.Period{}, fmt.Errorf("period %d start date: %w", p.ID, err)
	}
	end, err := core.ParseDate(p.EndDate)
	if err != nil {
		return core.Period{}, fmt.Errorf("period %d end date: %w", p.ID, err)
	}
	created, err := parseTime(p.CreatedAt)
	if err != nil {
		return core.Period{}, err
	}
	updated, err := parseTime(p.UpdatedAt)
	if err != nil {
		return core.Period{}, err
	}
	out := core.Period{
		ID:        p.ID,
		UserID:    p.UserID,
		StartDate: start,
		EndDate:   end,
		Name:      p.Name,
		IsActive:  p.IsActive,
		Stats: core.PeriodStats{
			Income:  core.Money{Cents: p.TotalIncomeCents},
			Expense: core.Money{Cents: p.TotalExpenseCents},
			Net:     p.NetCents,
			Count:   int(p.TransactionCount),
		},
		CreatedAt: created,
		UpdatedAt: updated,
	}
	if p.ExportedAt.Valid {
		at, err := parseTime(p.ExportedAt.String)
		if err != nil {
			return core.Period{}, err
		}
		out.ExportedAt = &at
	}
	return out, nil
}

func toPeriods(rows []Period) ([]core.Period, error) {
	out := make([]core.Period, 0, len(rows))
	for _, row := range rows {
		p, err := toPeriod(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func toTransaction(t Transaction) (core.Transaction, error) {
	date, err := core.ParseDate(t.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d date: %w", t.ID, err)
	}
	created, err := parseTime(t.CreatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	updated, err := parseTime(t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:         t.ID,
		UserID:     t.UserID,
		PeriodID:   intPtr(t.PeriodID),
		CategoryID: intPtr(t.CategoryID),
		Name:       t.Name,
		Amount:     core.Money{Cents: t.AmountCents},
		Date:       date,
		Kind:       core.Kind(t.Kind),
		CreatedAt:  created,
		UpdatedAt:  updated,
	}, nil
}

func toArchivedTransaction(t ArchivedTransaction) (core.ArchivedTransaction, error) {
	date, err := core.ParseDate(t.Date)
	if err != nil {
		return core.ArchivedTransaction{}, fmt.Errorf("archived transaction %d date: %w", t.ID, err)
	}
	created, err := parseTime(t.OriginalCreatedAt)
	if err != nil {
		return core.ArchivedTransaction{}, err
	}
	archived, err := parseTime(t.ArchivedAt)
	if err != nil {
		return core.ArchivedTransaction{}, err
	}
	return core.ArchivedTransaction{
		ID:                t.ID,
		PeriodID:          t.PeriodID,
		UserID:            t.UserID,
		CategoryID:        intPtr(t.CategoryID),
		Name:              t.Name,
		Amount:            core.Money{Cents: t.AmountCents},
		Date:              date,
		Kind:              core.Kind(t.Kind),
		OriginalCreatedAt: created,
		ArchivedAt:        archived,
	}, nil
}
