package period

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"dompet/internal/core"
	"dompet/internal/log"
)

const (
	DefaultHistoryPageSize = 10
	DefaultArchivePageSize = 20
)

// ResetResult describes a committed reset. Archived is nil when the user had
// no active period and a first period was created instead.
type ResetResult struct {
	Archived *core.Period
	Current  core.Period
}

// Detail is a period together with a page of its archived transactions.
type Detail struct {
	Period       core.Period
	Transactions []core.ArchivedTransaction
}

// Manager owns every period state transition. Other packages never create or
// archive periods directly.
type Manager struct {
	store     Store
	logger    *log.Logger
	stats     Aggregator
	archiver  Archiver
	publisher EventPublisher
	locale    string
	group     singleflight.Group
}

// NewManager creates a manager. publisher may be nil.
func NewManager(store Store, logger *log.Logger, publisher EventPublisher) *Manager {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Manager{
		store:     store,
		logger:    logger.WithComponent(log.ComponentPeriod),
		publisher: publisher,
		locale:    core.LocaleID,
	}
}

// SetDefaultLocale sets the locale given to users whose settings are created
// lazily. Unknown locales are ignored.
func (m *Manager) SetDefaultLocale(locale string) {
	if _, ok := monthNames[locale]; ok {
		m.locale = locale
	}
}

// ActivePeriod returns the user's active period or core.ErrNoActivePeriod.
func (m *Manager) ActivePeriod(ctx context.Context, userID int64) (core.Period, error) {
	p, err := m.store.ActivePeriod(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return core.Period{}, core.ErrNoActivePeriod
	}
	if err != nil {
		return core.Period{}, fmt.Errorf("find active period: %w", err)
	}
	return p, nil
}

// GetOrCreateActivePeriod returns the active period, creating a payday-based
// one from the user's settings when there is none. Concurrent calls for the
// same user share one store transaction; it is not cancelled by any single
// caller, and each caller stops waiting when its own ctx is done.
func (m *Manager) GetOrCreateActivePeriod(ctx context.Context, userID int64, now time.Time) (core.Period, error) {
	ch := m.group.DoChan(strconv.FormatInt(userID, 10), func() (any, error) {
		shared := context.WithoutCancel(ctx)
		var p core.Period
		err := m.store.InTx(shared, func(repo Repository) error {
			var err error
			p, err = m.EnsureActivePeriod(shared, repo, userID, now)
			return err
		})
		return p, err
	})

	select {
	case <-ctx.Done():
		return core.Period{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return core.Period{}, res.Err
		}
		return res.Val.(core.Period), nil
	}
}

// EnsureActivePeriod is GetOrCreateActivePeriod running on the caller's
// transactional repo.
func (m *Manager) EnsureActivePeriod(ctx context.Context, repo Repository, userID int64, now time.Time) (core.Period, error) {
	p, err := repo.ActivePeriod(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.Period{}, fmt.Errorf("find active period: %w", err)
	}
	settings, err := m.SettingsFor(ctx, repo, userID)
	if err != nil {
		return core.Period{}, err
	}
	start, end := Bounds(settings.PaydayDay, core.DateOf(now))
	return m.create(ctx, repo, settings, start, end, now)
}

// CreateFirstPeriod creates the first period of a user. With an explicit
// start the period is fixed-length, otherwise it follows the payday.
func (m *Manager) CreateFirstPeriod(ctx context.Context, userID int64, start *core.Date, now time.Time) (core.Period, error) {
	var p core.Period
	err := m.store.InTx(ctx, func(repo Repository) error {
		_, err := repo.ActivePeriod(ctx, userID)
		if err == nil {
			return core.ErrActivePeriodExists
		}
		if !errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("find active period: %w", err)
		}
		p, err = m.createFirst(ctx, repo, userID, start, now)
		return err
	})
	return p, err
}

func (m *Manager) createFirst(ctx context.Context, repo Repository, userID int64, start *core.Date, now time.Time) (core.Period, error) {
	settings, err := m.SettingsFor(ctx, repo, userID)
	if err != nil {
		return core.Period{}, err
	}
	if start == nil {
		s, e := Bounds(settings.PaydayDay, core.DateOf(now))
		return m.create(ctx, repo, settings, s, e, now)
	}
	if err := start.Validate(); err != nil {
		return core.Period{}, err
	}
	return m.create(ctx, repo, settings, *start, CustomEndDate(*start), now)
}

// ResetPeriod archives the active period and opens a new one starting on
// newStart. A period without live transactions cannot be reset. When the user
// has no active period a first period starting on newStart is created.
func (m *Manager) ResetPeriod(ctx context.Context, userID int64, newStart core.Date, now time.Time) (ResetResult, error) {
	if err := newStart.Validate(); err != nil {
		return ResetResult{}, err
	}

	var res ResetResult
	err := m.store.InTx(ctx, func(repo Repository) error {
		active, err := repo.ActivePeriod(ctx, userID)
		if errors.Is(err, core.ErrNotFound) {
			m.logger.WarnContext(ctx, "Reset requested without an active period, creating first period",
				log.FieldUserID, userID,
				log.FieldStartDate, newStart.String())
			res.Current, err = m.createFirst(ctx, repo, userID, &newStart, now)
			return err
		}
		if err != nil {
			return fmt.Errorf("find active period: %w", err)
		}

		count, err := repo.CountPeriodTransactions(ctx, active.ID)
		if err != nil {
			return fmt.Errorf("count period transactions: %w", err)
		}
		if count == 0 {
			return core.ErrEmptyPeriodReset
		}

		archived, err := m.archiver.Archive(ctx, repo, active, now)
		if err != nil {
			return err
		}

		settings, err := m.SettingsFor(ctx, repo, userID)
		if err != nil {
			return err
		}
		current, err := m.create(ctx, repo, settings, newStart, CustomEndDate(newStart), now)
		if err != nil {
			return err
		}
		res = ResetResult{Archived: &archived, Current: current}
		return nil
	})
	if err != nil {
		if errors.Is(err, core.ErrEmptyPeriodReset) {
			return ResetResult{}, err
		}
		m.logger.ErrorContext(ctx, "Period reset failed",
			log.FieldUserID, userID,
			log.FieldError, err)
		return ResetResult{}, fmt.Errorf("%w: %w", core.ErrArchiveFailed, err)
	}

	if res.Archived != nil {
		m.logger.InfoContext(ctx, "Period reset",
			log.FieldUserID, userID,
			log.FieldPeriodID, res.Archived.ID,
			log.FieldNewPeriodID, res.Current.ID,
			log.FieldCount, res.Archived.Stats.Count)
		m.publish(ctx, *res.Archived, now)
	}
	return res, nil
}

// publish is best effort: the reset is already committed and a pending sweep
// exports whatever was not announced.
func (m *Manager) publish(ctx context.Context, p core.Period, archivedAt time.Time) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.PublishPeriodArchived(ctx, p, archivedAt); err != nil {
		m.logger.WarnContext(ctx, "Failed to publish period archived event",
			log.FieldPeriodID, p.ID,
			log.FieldError, err)
	}
}

// GetPeriodHistory lists archived periods, most recently ended first.
func (m *Manager) GetPeriodHistory(ctx context.Context, userID int64, page core.Page) ([]core.Period, error) {
	periods, err := m.store.ListInactivePeriods(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("list period history: %w", err)
	}
	return periods, nil
}

// ArchivedTransactions lists the archived transactions of a period owned by
// the user, newest first.
func (m *Manager) ArchivedTransactions(ctx context.Context, userID, periodID int64, page core.Page) ([]core.ArchivedTransaction, error) {
	if _, err := m.store.GetPeriod(ctx, userID, periodID); err != nil {
		return nil, err
	}
	txs, err := m.store.ListArchivedTransactions(ctx, periodID, page)
	if err != nil {
		return nil, fmt.Errorf("list archived transactions: %w", err)
	}
	return txs, nil
}

// PeriodDetail returns a period owned by the user and a page of its archived
// transactions.
func (m *Manager) PeriodDetail(ctx context.Context, userID, periodID int64, page core.Page) (Detail, error) {
	p, err := m.store.GetPeriod(ctx, userID, periodID)
	if err != nil {
		return Detail{}, err
	}
	txs, err := m.store.ListArchivedTransactions(ctx, periodID, page)
	if err != nil {
		return Detail{}, fmt.Errorf("list archived transactions: %w", err)
	}
	return Detail{Period: p, Transactions: txs}, nil
}

// RefreshStats recomputes the cached statistics of a period on repo.
func (m *Manager) RefreshStats(ctx context.Context, repo Repository, periodID int64) (core.PeriodStats, error) {
	return m.stats.Refresh(ctx, repo, periodID)
}

func (m *Manager) create(ctx context.Context, repo Repository, settings core.UserSettings, start, end core.Date, now time.Time) (core.Period, error) {
	p, err := repo.CreatePeriod(ctx, core.Period{
		UserID:    settings.UserID,
		StartDate: start,
		EndDate:   end,
		Name:      NewNamer(settings).Name(start, end),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return core.Period{}, fmt.Errorf("create period: %w", err)
	}
	m.logger.InfoContext(ctx, "Period created",
		log.NewFields().WithUser(p.UserID).WithPeriod(p.ID, start.String(), end.String()).ToSlice()...)
	return p, nil
}

// SettingsFor returns the user's settings, storing the defaults on first use.
func (m *Manager) SettingsFor(ctx context.Context, repo SettingsRepository, userID int64) (core.UserSettings, error) {
	s, err := repo.GetSettings(ctx, userID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.UserSettings{}, fmt.Errorf("load settings: %w", err)
	}
	s = core.DefaultSettings(userID)
	s.Locale = m.locale
	if err := repo.SaveSettings(ctx, s); err != nil {
		return core.UserSettings{}, fmt.Errorf("save default settings: %w", err)
	}
	return s, nil
}
