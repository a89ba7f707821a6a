package period

import (
	"context"
	"time"

	"dompet/internal/core"
)

// Storage ports. Every lookup that finds nothing returns core.ErrNotFound.
type (
	PeriodRepository interface {
		ActivePeriod(ctx context.Context, userID int64) (core.Period, error)
		GetPeriod(ctx context.Context, userID, periodID int64) (core.Period, error)
		CreatePeriod(ctx context.Context, p core.Period) (core.Period, error)
		// UpdatePeriod persists dates, name, active flag and cached stats.
		UpdatePeriod(ctx context.Context, p core.Period) error
		SavePeriodStats(ctx context.Context, periodID int64, stats core.PeriodStats) error
		// ListInactivePeriods returns archived periods ordered by end date, newest first.
		ListInactivePeriods(ctx context.Context, userID int64, page core.Page) ([]core.Period, error)
		CountPeriods(ctx context.Context, userID int64) (int, error)
		// TotalStats sums the cached stats of every period of the user.
		TotalStats(ctx context.Context, userID int64) (core.PeriodStats, error)
		ListUnexportedPeriods(ctx context.Context, limit int) ([]core.Period, error)
		MarkPeriodExported(ctx context.Context, periodID int64, at time.Time) error
	}

	TransactionRepository interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, userID, id int64) error
		// ListPeriodTransactions returns live transactions ordered by date, newest first.
		ListPeriodTransactions(ctx context.Context, periodID int64, page core.Page) ([]core.Transaction, error)
		SumPeriodTransactions(ctx context.Context, periodID int64) (core.PeriodStats, error)
		CountPeriodTransactions(ctx context.Context, periodID int64) (int, error)
		DeletePeriodTransactions(ctx context.Context, periodID int64) (int64, error)
		// EarliestUnassignedDate reports the oldest date among transactions without a period.
		EarliestUnassignedDate(ctx context.Context, userID int64) (core.Date, bool, error)
		AssignUnassignedTransactions(ctx context.Context, userID, periodID int64) (int64, error)
		// ListUserIDs returns every user known through transactions or settings.
		ListUserIDs(ctx context.Context) ([]int64, error)
	}

	ArchiveRepository interface {
		InsertArchivedTransactions(ctx context.Context, txs []core.ArchivedTransaction) error
		// ListArchivedTransactions returns snapshots ordered by date, newest first.
		ListArchivedTransactions(ctx context.Context, periodID int64, page core.Page) ([]core.ArchivedTransaction, error)
	}

	SettingsRepository interface {
		GetSettings(ctx context.Context, userID int64) (core.UserSettings, error)
		SaveSettings(ctx context.Context, s core.UserSettings) error
	}

	Repository interface {
		PeriodRepository
		TransactionRepository
		ArchiveRepository
		SettingsRepository
	}

	// Store is a Repository that can run a group of calls atomically. If fn
	// returns an error nothing it did through the given Repository is kept.
	Store interface {
		Repository
		InTx(ctx context.Context, fn func(repo Repository) error) error
		Ping(ctx context.Context) error
	}

	// EventPublisher is notified after a reset has been committed.
	EventPublisher interface {
		PublishPeriodArchived(ctx context.Context, p core.Period, archivedAt time.Time) error
	}
)
