// Package memory is an in-process period store for development and tests.
// Transactions run against a copy of the state that replaces it on success.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"dompet/internal/core"
	"dompet/internal/period"
)

type state struct {
	nextPeriodID   int64
	nextTxID       int64
	nextArchivedID int64
	periods        map[int64]core.Period
	txs            map[int64]core.Transaction
	archived       []core.ArchivedTransaction
	settings       map[int64]core.UserSettings
}

type Store struct {
	mu sync.Mutex
	st *state
}

var _ period.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: &state{
		periods:  map[int64]core.Period{},
		txs:      map[int64]core.Transaction{},
		settings: map[int64]core.UserSettings{},
	}}
}

func (s *Store) clone() *state {
	c := *s.st
	c.periods = make(map[int64]core.Period, len(s.st.periods))
	for k, v := range s.st.periods {
		c.periods[k] = v
	}
	c.txs = make(map[int64]core.Transaction, len(s.st.txs))
	for k, v := range s.st.txs {
		c.txs[k] = v
	}
	c.archived = slices.Clone(s.st.archived)
	c.settings = make(map[int64]core.UserSettings, len(s.st.settings))
	for k, v := range s.st.settings {
		c.settings[k] = v
	}
	return &c
}

// InTx runs fn on a private copy of the store and publishes the copy only
// when fn succeeds. Transactions are serialised.
func (s *Store) InTx(ctx context.Context, fn func(repo period.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

func (s *Store) read(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Every Store method is a single-statement transaction over the state.

func (s *Store) ActivePeriod(ctx context.Context, userID int64) (p core.Period, err error) {
	err = s.read(func(st *state) error { p, err = st.ActivePeriod(ctx, userID); return err })
	return p, err
}

func (s *Store) GetPeriod(ctx context.Context, userID, periodID int64) (p core.Period, err error) {
	err = s.read(func(st *state) error { p, err = st.GetPeriod(ctx, userID, periodID); return err })
	return p, err
}

func (s *Store) CreatePeriod(ctx context.Context, in core.Period) (p core.Period, err error) {
	err = s.read(func(st *state) error { p, err = st.CreatePeriod(ctx, in); return err })
	return p, err
}

func (s *Store) UpdatePeriod(ctx context.Context, p core.Period) error {
	return s.read(func(st *state) error { return st.UpdatePeriod(ctx, p) })
}

func (s *Store) SavePeriodStats(ctx context.Context, periodID int64, stats core.PeriodStats) error {
	return s.read(func(st *state) error { return st.SavePeriodStats(ctx, periodID, stats) })
}

func (s *Store) ListInactivePeriods(ctx context.Context, userID int64, page core.Page) (out []core.Period, err error) {
	err = s.read(func(st *state) error { out, err = st.ListInactivePeriods(ctx, userID, page); return err })
	return out, err
}

func (s *Store) CountPeriods(ctx context.Context, userID int64) (n int, err error) {
	err = s.read(func(st *state) error { n, err = st.CountPeriods(ctx, userID); return err })
	return n, err
}

func (s *Store) TotalStats(ctx context.Context, userID int64) (out core.PeriodStats, err error) {
	err = s.read(func(st *state) error { out, err = st.TotalStats(ctx, userID); return err })
	return out, err
}

func (s *Store) ListUnexportedPeriods(ctx context.Context, limit int) (out []core.Period, err error) {
	err = s.read(func(st *state) error { out, err = st.ListUnexportedPeriods(ctx, limit); return err })
	return out, err
}

func (s *Store) MarkPeriodExported(ctx context.Context, periodID int64, at time.Time) error {
	return s.read(func(st *state) error { return st.MarkPeriodExported(ctx, periodID, at) })
}

func (s *Store) CreateTransaction(ctx context.Context, in core.Transaction) (t core.Transaction, err error) {
	err = s.read(func(st *state) error { t, err = st.CreateTransaction(ctx, in); return err })
	return t, err
}

func (s *Store) GetTransaction(ctx context.Context, userID, id int64) (t core.Transaction, err error) {
	err = s.read(func(st *state) error { t, err = st.GetTransaction(ctx, userID, id); return err })
	return t, err
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	return s.read(func(st *state) error { return st.UpdateTransaction(ctx, t) })
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id int64) error {
	return s.read(func(st *state) error { return st.DeleteTransaction(ctx, userID, id) })
}

func (s *Store) ListPeriodTransactions(ctx context.Context, periodID int64, page core.Page) (out []core.Transaction, err error) {
	err = s.read(func(st *state) error { out, err = st.ListPeriodTransactions(ctx, periodID, page); return err })
	return out, err
}

func (s *Store) SumPeriodTransactions(ctx context.Context, periodID int64) (out core.PeriodStats, err error) {
	err = s.read(func(st *state) error { out, err = st.SumPeriodTransactions(ctx, periodID); return err })
	return out, err
}

func (s *Store) CountPeriodTransactions(ctx context.Context, periodID int64) (n int, err error) {
	err = s.read(func(st *state) error { n, err = st.CountPeriodTransactions(ctx, periodID); return err })
	return n, err
}

func (s *Store) DeletePeriodTransactions(ctx context.Context, periodID int64) (n int64, err error) {
	err = s.read(func(st *state) error { n, err = st.DeletePeriodTransactions(ctx, periodID); return err })
	return n, err
}

func (s *Store) EarliestUnassignedDate(ctx context.Context, userID int64) (d core.Date, ok bool, err error) {
	err = s.read(func(st *state) error { d, ok, err = st.EarliestUnassignedDate(ctx, userID); return err })
	return d, ok, err
}

func (s *Store) AssignUnassignedTransactions(ctx context.Context, userID, periodID int64) (n int64, err error) {
	err = s.read(func(st *state) error { n, err = st.AssignUnassignedTransactions(ctx, userID, periodID); return err })
	return n, err
}

func (s *Store) ListUserIDs(ctx context.Context) (out []int64, err error) {
	err = s.read(func(st *state) error { out, err = st.ListUserIDs(ctx); return err })
	return out, err
}

func (s *Store) InsertArchivedTransactions(ctx context.Context, txs []core.ArchivedTransaction) error {
	return s.read(func(st *state) error { return st.InsertArchivedTransactions(ctx, txs) })
}

func (s *Store) ListArchivedTransactions(ctx context.Context, periodID int64, page core.Page) (out []core.ArchivedTransaction, err error) {
	err = s.read(func(st *state) error { out, err = st.ListArchivedTransactions(ctx, periodID, page); return err })
	return out, err
}

func (s *Store) GetSettings(ctx context.Context, userID int64) (out core.UserSettings, err error) {
	err = s.read(func(st *state) error { out, err = st.GetSettings(ctx, userID); return err })
	return out, err
}

func (s *Store) SaveSettings(ctx context.Context, settings core.UserSettings) error {
	return s.read(func(st *state) error { return st.SaveSettings(ctx, settings) })
}

func paginate[T any](items []T, page core.Page) []T {
	if page.Offset > 0 {
		if page.Offset >= len(items) {
			return []T{}
		}
		items = items[page.Offset:]
	}
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

func byDateDesc(a, b core.Date) int {
	return b.Compare(a.Time)
}

func newestFirst(a, b core.Transaction) int {
	return cmp.Or(
		byDateDesc(a.Date, b.Date),
		b.CreatedAt.Compare(a.CreatedAt),
		cmp.Compare(b.ID, a.ID),
	)
}
