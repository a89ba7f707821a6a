package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const periodColumns = `id, user_id, start_date, end_date, name, is_active,
	total_income_cents, total_expense_cents, net_cents, transaction_count,
	exported_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPeriod(row scanner) (Period, error) {
	var p Period
	err := row.Scan(
		&p.ID, &p.UserID, &p.StartDate, &p.EndDate, &p.Name, &p.IsActive,
		&p.TotalIncomeCents, &p.TotalExpenseCents, &p.NetCents, &p.TransactionCount,
		&p.ExportedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanPeriods(rows *sql.Rows, err error) ([]Period, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const getActivePeriod = `SELECT ` + periodColumns + ` FROM periods
WHERE user_id = ? AND is_active = 1`

func (q *Queries) GetActivePeriod(ctx context.Context, userID int64) (Period, error) {
	return scanPeriod(q.db.QueryRowContext(ctx, getActivePeriod, userID))
}

const getPeriod = `SELECT ` + periodColumns + ` FROM periods
WHERE id = ? AND user_id = ?`

func (q *Queries) GetPeriod(ctx context.Context, id, userID int64) (Period, error) {
	return scanPeriod(q.db.QueryRowContext(ctx, getPeriod, id, userID))
}

const createPeriod = `INSERT INTO periods (user_id, start_date, end_date, name, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + periodColumns

type CreatePeriodParams struct {
	UserID    int64
	StartDate string
	EndDate   string
	Name      string
	IsActive  bool
	CreatedAt string
	UpdatedAt string
}

func (q *Queries) CreatePeriod(ctx context.Context, arg CreatePeriodParams) (Period, error) {
	row := q.db.QueryRowContext(ctx, createPeriod,
		arg.UserID, arg.StartDate, arg.EndDate, arg.Name, arg.IsActive, arg.CreatedAt, arg.UpdatedAt)
	return scanPeriod(row)
}

const updatePeriod = `UPDATE periods
SET start_date = ?, end_date = ?, name = ?, is_active = ?,
    total_income_cents = ?, total_expense_cents = ?, net_cents = ?, transaction_count = ?,
    updated_at = ?
WHERE id = ?`

type UpdatePeriodParams struct {
	StartDate         string
	EndDate           string
	Name              string
	IsActive          bool
	TotalIncomeCents  int64
	TotalExpenseCents int64
	NetCents          int64
	TransactionCount  int64
	UpdatedAt         string
	ID                int64
}

func (q *Queries) UpdatePeriod(ctx context.Context, arg UpdatePeriodParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updatePeriod,
		arg.StartDate, arg.EndDate, arg.Name, arg.IsActive,
		arg.TotalIncomeCents, arg.TotalExpenseCents, arg.NetCents, arg.TransactionCount,
		arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updatePeriodStats = `UPDATE periods
SET total_income_cents = ?, total_expense_cents = ?, net_cents = ?, transaction_count = ?
WHERE id = ?`

type UpdatePeriodStatsParams struct {
	TotalIncomeCents  int64
	TotalExpenseCents int64
	NetCents          int64
	TransactionCount  int64
	ID                int64
}

func (q *Queries) UpdatePeriodStats(ctx context.Context, arg UpdatePeriodStatsParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updatePeriodStats,
		arg.TotalIncomeCents, arg.TotalExpenseCents, arg.NetCents, arg.TransactionCount, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listInactivePeriods = `SELECT ` + periodColumns + ` FROM periods
WHERE user_id = ? AND is_active = 0
ORDER BY end_date DESC, id DESC
LIMIT ? OFFSET ?`

type ListInactivePeriodsParams struct {
	UserID int64
	Limit  int64
	Offset int64
}

func (q *Queries) ListInactivePeriods(ctx context.Context, arg ListInactivePeriodsParams) ([]Period, error) {
	return scanPeriods(q.db.QueryContext(ctx, listInactivePeriods, arg.UserID, arg.Limit, arg.Offset))
}

const countPeriods = `SELECT COUNT(*) FROM periods WHERE user_id = ?`

func (q *Queries) CountPeriods(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countPeriods, userID).Scan(&n)
	return n, err
}

const totalStats = `SELECT
    COALESCE(SUM(total_income_cents), 0),
    COALESCE(SUM(total_expense_cents), 0),
    COALESCE(SUM(transaction_count), 0)
FROM periods WHERE user_id = ?`

type StatsRow struct {
	IncomeCents  int64
	ExpenseCents int64
	Count        int64
}

func (q *Queries) TotalStats(ctx context.Context, userID int64) (StatsRow, error) {
	var r StatsRow
	err := q.db.QueryRowContext(ctx, totalStats, userID).Scan(&r.IncomeCents, &r.ExpenseCents, &r.Count)
	return r, err
}

const listUnexportedPeriods = `SELECT ` + periodColumns + ` FROM periods
WHERE is_active = 0 AND exported_at IS NULL
ORDER BY id ASC
LIMIT ?`

func (q *Queries) ListUnexportedPeriods(ctx context.Context, limit int64) ([]Period, error) {
	return scanPeriods(q.db.QueryContext(ctx, listUnexportedPeriods, limit))
}

const markPeriodExported = `UPDATE periods SET exported_at = ? WHERE id = ?`

func (q *Queries) MarkPeriodExported(ctx context.Context, exportedAt string, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, markPeriodExported, exportedAt, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const transactionColumns = `id, user_id, period_id, category_id, name, amount_cents, date, kind, created_at, updated_at`

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.PeriodID, &t.CategoryID, &t.Name,
		&t.AmountCents, &t.Date, &t.Kind, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const createTransaction = `INSERT INTO transactions (user_id, period_id, category_id, name, amount_cents, date, kind, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + transactionColumns

type CreateTransactionParams struct {
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

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.UserID, arg.PeriodID, arg.CategoryID, arg.Name, arg.AmountCents,
		arg.Date, arg.Kind, arg.CreatedAt, arg.UpdatedAt)
	return scanTransaction(row)
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND user_id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id, userID int64) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id, userID))
}

// period_id is never updated: a transaction stays in the period it was created in.
const updateTransaction = `UPDATE transactions
SET category_id = ?, name = ?, amount_cents = ?, date = ?, kind = ?, updated_at = ?
WHERE id = ? AND user_id = ?`

type UpdateTransactionParams struct {
	CategoryID  sql.NullInt64
	Name        string
	AmountCents int64
	Date        string
	Kind        string
	UpdatedAt   string
	ID          int64
	UserID      int64
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		arg.CategoryID, arg.Name, arg.AmountCents, arg.Date, arg.Kind, arg.UpdatedAt, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id, userID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listPeriodTransactions = `SELECT ` + transactionColumns + ` FROM transactions
WHERE period_id = ?
ORDER BY date DESC, created_at DESC, id DESC
LIMIT ? OFFSET ?`

type ListPeriodTransactionsParams struct {
	PeriodID int64
	Limit    int64
	Offset   int64
}

func (q *Queries) ListPeriodTransactions(ctx context.Context, arg ListPeriodTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listPeriodTransactions, arg.PeriodID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const sumPeriodTransactions = `SELECT
    COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount_cents ELSE 0 END), 0),
    COUNT(*)
FROM transactions WHERE period_id = ?`

func (q *Queries) SumPeriodTransactions(ctx context.Context, periodID int64) (StatsRow, error) {
	var r StatsRow
	err := q.db.QueryRowContext(ctx, sumPeriodTransactions, periodID).Scan(&r.IncomeCents, &r.ExpenseCents, &r.Count)
	return r, err
}

const countPeriodTransactions = `SELECT COUNT(*) FROM transactions WHERE period_id = ?`

func (q *Queries) CountPeriodTransactions(ctx context.Context, periodID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countPeriodTransactions, periodID).Scan(&n)
	return n, err
}

const deletePeriodTransactions = `DELETE FROM transactions WHERE period_id = ?`

func (q *Queries) DeletePeriodTransactions(ctx context.Context, periodID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deletePeriodTransactions, periodID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const earliestUnassignedDate = `SELECT MIN(date) FROM transactions WHERE user_id = ? AND period_id IS NULL`

func (q *Queries) EarliestUnassignedDate(ctx context.Context, userID int64) (sql.NullString, error) {
	var d sql.NullString
	err := q.db.QueryRowContext(ctx, earliestUnassignedDate, userID).Scan(&d)
	return d, err
}

const assignUnassignedTransactions = `UPDATE transactions SET period_id = ? WHERE user_id = ? AND period_id IS NULL`

func (q *Queries) AssignUnassignedTransactions(ctx context.Context, periodID, userID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, assignUnassignedTransactions, periodID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listUserIDs = `SELECT user_id FROM transactions
UNION
SELECT user_id FROM user_settings
ORDER BY user_id`

func (q *Queries) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listUserIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const createArchivedTransaction = `INSERT INTO archived_transactions
    (period_id, user_id, category_id, name, amount_cents, date, kind, original_created_at, archived_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateArchivedTransactionParams struct {
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

func (q *Queries) CreateArchivedTransaction(ctx context.Context, arg CreateArchivedTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createArchivedTransaction,
		arg.PeriodID, arg.UserID, arg.CategoryID, arg.Name, arg.AmountCents,
		arg.Date, arg.Kind, arg.OriginalCreatedAt, arg.ArchivedAt)
	return err
}

const listArchivedTransactions = `SELECT id, period_id, user_id, category_id, name, amount_cents, date, kind, original_created_at, archived_at
FROM archived_transactions
WHERE period_id = ?
ORDER BY date DESC, id DESC
LIMIT ? OFFSET ?`

type ListArchivedTransactionsParams struct {
	PeriodID int64
	Limit    int64
	Offset   int64
}

func (q *Queries) ListArchivedTransactions(ctx context.Context, arg ListArchivedTransactionsParams) ([]ArchivedTransaction, error) {
	rows, err := q.db.QueryContext(ctx, listArchivedTransactions, arg.PeriodID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ArchivedTransaction
	for rows.Next() {
		var i ArchivedTransaction
		if err := rows.Scan(&i.ID, &i.PeriodID, &i.UserID, &i.CategoryID, &i.Name, &i.AmountCents,
			&i.Date, &i.Kind, &i.OriginalCreatedAt, &i.ArchivedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const getUserSettings = `SELECT user_id, payday_day, auto_archive, naming_format, locale
FROM user_settings WHERE user_id = ?`

func (q *Queries) GetUserSettings(ctx context.Context, userID int64) (UserSetting, error) {
	var s UserSetting
	err := q.db.QueryRowContext(ctx, getUserSettings, userID).
		Scan(&s.UserID, &s.PaydayDay, &s.AutoArchive, &s.NamingFormat, &s.Locale)
	return s, err
}

const upsertUserSettings = `INSERT INTO user_settings (user_id, payday_day, auto_archive, naming_format, locale, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    payday_day = excluded.payday_day,
    auto_archive = excluded.auto_archive,
    naming_format = excluded.naming_format,
    locale = excluded.locale,
    updated_at = excluded.updated_at`

type UpsertUserSettingsParams struct {
	UserID       int64
	PaydayDay    int64
	AutoArchive  bool
	NamingFormat string
	Locale       string
	UpdatedAt    string
}

func (q *Queries) UpsertUserSettings(ctx context.Context, arg UpsertUserSettingsParams) error {
	_, err := q.db.ExecContext(ctx, upsertUserSettings,
		arg.UserID, arg.PaydayDay, arg.AutoArchive, arg.NamingFormat, arg.Locale, arg.UpdatedAt)
	return err
}
