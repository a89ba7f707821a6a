package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"dompet/internal/core"
)

func (st *state) ActivePeriod(_ context.Context, userID int64) (core.Period, error) {
	for _, p := range st.periods {
		if p.UserID == userID && p.IsActive {
			return p, nil
		}
	}
	return core.Period{}, core.ErrNotFound
}

func (st *state) GetPeriod(_ context.Context, userID, periodID int64) (core.Period, error) {
	p, ok := st.periods[periodID]
	if !ok || p.UserID != userID {
		return core.Period{}, core.ErrNotFound
	}
	return p, nil
}

func (st *state) CreatePeriod(ctx context.Context, p core.Period) (core.Period, error) {
	if p.IsActive {
		if _, err := st.ActivePeriod(ctx, p.UserID); err == nil {
			return core.Period{}, fmt.Errorf("user %d: %w", p.UserID, core.ErrActivePeriodExists)
		}
	}
	st.nextPeriodID++
	p.ID = st.nextPeriodID
	st.periods[p.ID] = p
	return p, nil
}

func (st *state) UpdatePeriod(_ context.Context, p core.Period) error {
	cur, ok := st.periods[p.ID]
	if !ok {
		return core.ErrNotFound
	}
	cur.StartDate = p.StartDate
	cur.EndDate = p.EndDate
	cur.Name = p.Name
	cur.IsActive = p.IsActive
	cur.Stats = p.Stats
	cur.UpdatedAt = p.UpdatedAt
	st.periods[p.ID] = cur
	return nil
}

func (st *state) SavePeriodStats(_ context.Context, periodID int64, stats core.PeriodStats) error {
	p, ok := st.periods[periodID]
	if !ok {
		return core.ErrNotFound
	}
	p.Stats = stats
	st.periods[periodID] = p
	return nil
}

func (st *state) ListInactivePeriods(_ context.Context, userID int64, page core.Page) ([]core.Period, error) {
	var out []core.Period
	for _, p := range st.periods {
		if p.UserID == userID && !p.IsActive {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b core.Period) int {
		if c := byDateDesc(a.EndDate, b.EndDate); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return paginate(out, page), nil
}

func (st *state) CountPeriods(_ context.Context, userID int64) (int, error) {
	n := 0
	for _, p := range st.periods {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (st *state) TotalStats(_ context.Context, userID int64) (core.PeriodStats, error) {
	var total core.PeriodStats
	for _, p := range st.periods {
		if p.UserID == userID {
			total = total.Add(p.Stats)
		}
	}
	return total, nil
}

func (st *state) ListUnexportedPeriods(_ context.Context, limit int) ([]core.Period, error) {
	var out []core.Period
	for _, p := range st.periods {
		if !p.IsActive && p.ExportedAt == nil {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b core.Period) int { return cmp.Compare(a.ID, b.ID) })
	return paginate(out, core.Page{Limit: limit}), nil
}

func (st *state) MarkPeriodExported(_ context.Context, periodID int64, at time.Time) error {
	p, ok := st.periods[periodID]
	if !ok {
		return core.ErrNotFound
	}
	p.ExportedAt = &at
	st.periods[periodID] = p
	return nil
}

func (st *state) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if t.PeriodID != nil {
		if _, ok := st.periods[*t.PeriodID]; !ok {
			return core.Transaction{}, fmt.Errorf("period %d: %w", *t.PeriodID, core.ErrNotFound)
		}
	}
	st.nextTxID++
	t.ID = st.nextTxID
	st.txs[t.ID] = t
	return t, nil
}

func (st *state) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	t, ok := st.txs[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (st *state) UpdateTransaction(_ context.Context, t core.Transaction) error {
	cur, ok := st.txs[t.ID]
	if !ok || cur.UserID != t.UserID {
		return core.ErrNotFound
	}
	t.PeriodID = cur.PeriodID
	t.CreatedAt = cur.CreatedAt
	st.txs[t.ID] = t
	return nil
}

func (st *state) DeleteTransaction(_ context.Context, userID, id int64) error {
	t, ok := st.txs[id]
	if !ok || t.UserID != userID {
		return core.ErrNotFound
	}
	delete(st.txs, id)
	return nil
}

func (st *state) periodTransactions(periodID int64) []core.Transaction {
	var out []core.Transaction
	for _, t := range st.txs {
		if t.PeriodID != nil && *t.PeriodID == periodID {
			out = append(out, t)
		}
	}
	return out
}

func (st *state) ListPeriodTransactions(_ context.Context, periodID int64, page core.Page) ([]core.Transaction, error) {
	out := st.periodTransactions(periodID)
	slices.SortFunc(out, newestFirst)
	return paginate(out, page), nil
}

func (st *state) SumPeriodTransactions(_ context.Context, periodID int64) (core.PeriodStats, error) {
	var income, expense int64
	txs := st.periodTransactions(periodID)
	for _, t := range txs {
		switch t.Kind {
		case core.Income:
			income += t.Amount.Cents
		case core.Expense:
			expense += t.Amount.Cents
		}
	}
	return core.NewPeriodStats(income, expense, len(txs)), nil
}

func (st *state) CountPeriodTransactions(_ context.Context, periodID int64) (int, error) {
	return len(st.periodTransactions(periodID)), nil
}

func (st *state) DeletePeriodTransactions(_ context.Context, periodID int64) (int64, error) {
	var n int64
	for _, t := range st.periodTransactions(periodID) {
		delete(st.txs, t.ID)
		n++
	}
	return n, nil
}

func (st *state) EarliestUnassignedDate(_ context.Context, userID int64) (core.Date, bool, error) {
	var earliest core.Date
	found := false
	for _, t := range st.txs {
		if t.UserID != userID || t.Assigned() {
			continue
		}
		if !found || t.Date.Before(earliest) {
			earliest, found = t.Date, true
		}
	}
	return earliest, found, nil
}

func (st *state) AssignUnassignedTransactions(_ context.Context, userID, periodID int64) (int64, error) {
	var n int64
	for id, t := range st.txs {
		if t.UserID != userID || t.Assigned() {
			continue
		}
		pid := periodID
		t.PeriodID = &pid
		st.txs[id] = t
		n++
	}
	return n, nil
}

func (st *state) ListUserIDs(_ context.Context) ([]int64, error) {
	seen := map[int64]struct{}{}
	for _, t := range st.txs {
		seen[t.UserID] = struct{}{}
	}
	for id := range st.settings {
		seen[id] = struct{}{}
	}
	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

func (st *state) InsertArchivedTransactions(_ context.Context, txs []core.ArchivedTransaction) error {
	for _, t := range txs {
		if _, ok := st.periods[t.PeriodID]; !ok {
			return fmt.Errorf("period %d: %w", t.PeriodID, core.ErrNotFound)
		}
		st.nextArchivedID++
		t.ID = st.nextArchivedID
		st.archived = append(st.archived, t)
	}
	return nil
}

func (st *state) ListArchivedTransactions(_ context.Context, periodID int64, page core.Page) ([]core.ArchivedTransaction, error) {
	var out []core.ArchivedTransaction
	for _, t := range st.archived {
		if t.PeriodID == periodID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b core.ArchivedTransaction) int {
		if c := byDateDesc(a.Date, b.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return paginate(out, page), nil
}

func (st *state) GetSettings(_ context.Context, userID int64) (core.UserSettings, error) {
	s, ok := st.settings[userID]
	if !ok {
		return core.UserSettings{}, core.ErrNotFound
	}
	return s, nil
}

func (st *state) SaveSettings(_ context.Context, s core.UserSettings) error {
	st.settings[s.UserID] = s
	return nil
}
