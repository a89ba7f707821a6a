package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dompet/internal/core"
	"dompet/internal/period"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the period store backed by SQLite.
type SQLiteStore struct {
	*repository
	db *sql.DB
}

var _ period.Store = (*SQLiteStore)(nil)

// repository runs queries on either the pool or a transaction.
type repository struct {
	queries *Queries
}

func dsn(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and brings
// its schema up to date.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite has a single writer; one connection serialises transactions
	// instead of failing them with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteStore{
		repository: &repository{queries: New(db)},
		db:         db,
	}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InTx runs fn inside BEGIN ... COMMIT, rolling back when fn fails.
func (s *SQLiteStore) InTx(ctx context.Context, fn func(repo period.Repository) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&repository{queries: s.queries.WithTx(tx)}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Failed to roll back transaction", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

func limit(page core.Page) (int64, int64) {
	if page.Limit <= 0 {
		// SQLite treats a negative LIMIT as unbounded.
		return -1, int64(page.Offset)
	}
	return int64(page.Limit), int64(page.Offset)
}

func (r *repository) ActivePeriod(ctx context.Context, userID int64) (core.Period, error) {
	p, err := r.queries.GetActivePeriod(ctx, userID)
	if err != nil {
		return core.Period{}, notFound(err)
	}
	return toPeriod(p)
}

func (r *repository) GetPeriod(ctx context.Context, userID, periodID int64) (core.Period, error) {
	p, err := r.queries.GetPeriod(ctx, periodID, userID)
	if err != nil {
		return core.Period{}, notFound(err)
	}
	return toPeriod(p)
}

func (r *repository) CreatePeriod(ctx context.Context, in core.Period) (core.Period, error) {
	p, err := r.queries.CreatePeriod(ctx, CreatePeriodParams{
		UserID:    in.UserID,
		StartDate: in.StartDate.String(),
		EndDate:   in.EndDate.String(),
		Name:      in.Name,
		IsActive:  in.IsActive,
		CreatedAt: formatTime(in.CreatedAt),
		UpdatedAt: formatTime(in.UpdatedAt),
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return core.Period{}, fmt.Errorf("user %d: %w", in.UserID, core.ErrActivePeriodExists)
		}
		return core.Period{}, err
	}
	return toPeriod(p)
}

func (r *repository) UpdatePeriod(ctx context.Context, p core.Period) error {
	n, err := r.queries.UpdatePeriod(ctx, UpdatePeriodParams{
		StartDate:         p.StartDate.String(),
		EndDate:           p.EndDate.String(),
		Name:              p.Name,
		IsActive:          p.IsActive,
		TotalIncomeCents:  p.Stats.Income.Cents,
		TotalExpenseCents: p.Stats.Expense.Cents,
		NetCents:          p.Stats.Net,
		TransactionCount:  int64(p.Stats.Count),
		UpdatedAt:         formatTime(p.UpdatedAt),
		ID:                p.ID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *repository) SavePeriodStats(ctx context.Context, periodID int64, stats core.PeriodStats) error {
	n, err := r.queries.UpdatePeriodStats(ctx, UpdatePeriodStatsParams{
		TotalIncomeCents:  stats.Income.Cents,
		TotalExpenseCents: stats.Expense.Cents,
		NetCents:          stats.Net,
		TransactionCount:  int64(stats.Count),
		ID:                periodID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *repository) ListInactivePeriods(ctx context.Context, userID int64, page core.Page) ([]core.Period, error) {
	lim, off := limit(page)
	rows, err := r.queries.ListInactivePeriods(ctx, ListInactivePeriodsParams{UserID: userID, Limit: lim, Offset: off})
	if err != nil {
		return nil, err
	}
	return toPeriods(rows)
}

func (r *repository) CountPeriods(ctx context.Context, userID int64) (int, error) {
	n, err := r.queries.CountPeriods(ctx, userID)
	return int(n), err
}

func (r *repository) TotalStats(ctx context.Context, userID int64) (core.PeriodStats, error) {
	row, err := r.queries.TotalStats(ctx, userID)
	if err != nil {
		return core.PeriodStats{}, err
	}
	return core.NewPeriodStats(row.IncomeCents, row.ExpenseCents, int(row.Count)), nil
}

func (r *repository) ListUnexportedPeriods(ctx context.Context, limit int) ([]core.Period, error) {
	rows, err := r.queries.ListUnexportedPeriods(ctx, int64(limit))
	if err != nil {
		return nil, err
	}
	return toPeriods(rows)
}

func (r *repository) MarkPeriodExported(ctx context.Context, periodID int64, at time.Time) error {
	n, err := r.queries.MarkPeriodExported(ctx, formatTime(at), periodID)
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *repository) CreateTransaction(ctx context.Context, in core.Transaction) (core.Transaction, error) {
	t, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		UserID:      in.UserID,
		PeriodID:    nullInt(in.PeriodID),
		CategoryID:  nullInt(in.CategoryID),
		Name:        in.Name,
		AmountCents: in.Amount.Cents,
		Date:        in.Date.String(),
		Kind:        string(in.Kind),
		CreatedAt:   formatTime(in.CreatedAt),
		UpdatedAt:   formatTime(in.UpdatedAt),
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return toTransaction(t)
}

func (r *repository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	t, err := r.queries.GetTransaction(ctx, id, userID)
	if err != nil {
		return core.Transaction{}, notFound(err)
	}
	return toTransaction(t)
}

func (r *repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	n, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		CategoryID:  nullInt(t.CategoryID),
		Name:        t.Name,
		AmountCents: t.Amount.Cents,
		Date:        t.Date.String(),
		Kind:        string(t.Kind),
		UpdatedAt:   formatTime(t.UpdatedAt),
		ID:          t.ID,
		UserID:      t.UserID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *repository) ListPeriodTransactions(ctx context.Context, periodID int64, page core.Page) ([]core.Transaction, error) {
	lim, off := limit(page)
	rows, err := r.queries.ListPeriodTransactions(ctx, ListPeriodTransactionsParams{PeriodID: periodID, Limit: lim, Offset: off})
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *repository) SumPeriodTransactions(ctx context.Context, periodID int64) (core.PeriodStats, error) {
	row, err := r.queries.SumPeriodTransactions(ctx, periodID)
	if err != nil {
		return core.PeriodStats{}, err
	}
	return core.NewPeriodStats(row.IncomeCents, row.ExpenseCents, int(row.Count)), nil
}

func (r *repository) CountPeriodTransactions(ctx context.Context, periodID int64) (int, error) {
	n, err := r.queries.CountPeriodTransactions(ctx, periodID)
	return int(n), err
}

func (r *repository) DeletePeriodTransactions(ctx context.Context, periodID int64) (int64, error) {
	return r.queries.DeletePeriodTransactions(ctx, periodID)
}

func (r *repository) EarliestUnassignedDate(ctx context.Context, userID int64) (core.Date, bool, error) {
	s, err := r.queries.EarliestUnassignedDate(ctx, userID)
	if err != nil || !s.Valid {
		return core.Date{}, false, err
	}
	d, err := core.ParseDate(s.String)
	if err != nil {
		return core.Date{}, false, fmt.Errorf("parse date %q: %w", s.String, err)
	}
	return d, true, nil
}

func (r *repository) AssignUnassignedTransactions(ctx context.Context, userID, periodID int64) (int64, error) {
	return r.queries.AssignUnassignedTransactions(ctx, periodID, userID)
}

func (r *repository) ListUserIDs(ctx context.Context) ([]int64, error) {
	return r.queries.ListUserIDs(ctx)
}

func (r *repository) InsertArchivedTransactions(ctx context.Context, txs []core.ArchivedTransaction) error {
	for _, t := range txs {
		err := r.queries.CreateArchivedTransaction(ctx, CreateArchivedTransactionParams{
			PeriodID:          t.PeriodID,
			UserID:            t.UserID,
			CategoryID:        nullInt(t.CategoryID),
			Name:              t.Name,
			AmountCents:       t.Amount.Cents,
			Date:              t.Date.String(),
			Kind:              string(t.Kind),
			OriginalCreatedAt: formatTime(t.OriginalCreatedAt),
			ArchivedAt:        formatTime(t.ArchivedAt),
		})
		if err != nil {
			return fmt.Errorf("archive transaction %q: %w", t.Name, err)
		}
	}
	return nil
}

func (r *repository) ListArchivedTransactions(ctx context.Context, periodID int64, page core.Page) ([]core.ArchivedTransaction, error) {
	lim, off := limit(page)
	rows, err := r.queries.ListArchivedTransactions(ctx, ListArchivedTransactionsParams{PeriodID: periodID, Limit: lim, Offset: off})
	if err != nil {
		return nil, err
	}
	out := make([]core.ArchivedTransaction, 0, len(rows))
	for _, row := range rows {
		t, err := toArchivedTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *repository) GetSettings(ctx context.Context, userID int64) (core.UserSettings, error) {
	s, err := r.queries.GetUserSettings(ctx, userID)
	if err != nil {
		return core.UserSettings{}, notFound(err)
	}
	return core.UserSettings{
		UserID:       s.UserID,
		PaydayDay:    int(s.PaydayDay),
		AutoArchive:  s.AutoArchive,
		NamingFormat: core.NamingFormat(s.NamingFormat),
		Locale:       s.Locale,
	}, nil
}

func (r *repository) SaveSettings(ctx context.Context, s core.UserSettings) error {
	return r.queries.UpsertUserSettings(ctx, UpsertUserSettingsParams{
		UserID:       s.UserID,
		PaydayDay:    int64(s.PaydayDay),
		AutoArchive:  s.AutoArchive,
		NamingFormat: string(s.NamingFormat),
		Locale:       s.Locale,
		UpdatedAt:    formatTime(time.Now()),
	})
}
