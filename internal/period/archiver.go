package period

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dompet/internal/core"
)

// Archiver moves a period's live transactions into the archive and closes the
// period. It must run inside a transaction: a failure part way leaves the
// caller to roll everything back.
type Archiver struct {
	stats Aggregator
}

// Archive snapshots every live transaction of p, deletes the originals and
// marks p inactive with an end date of the day before now.
func (a Archiver) Archive(ctx context.Context, repo Repository, p core.Period, now time.Time) (core.Period, error) {
	if !p.IsActive {
		return p, core.ErrPeriodArchived
	}

	stats, err := a.stats.Refresh(ctx, repo, p.ID)
	if err != nil {
		return p, err
	}

	live, err := repo.ListPeriodTransactions(ctx, p.ID, core.Page{})
	if err != nil {
		return p, fmt.Errorf("list period transactions: %w", err)
	}
	if len(live) != stats.Count {
		return p, fmt.Errorf("period %d changed while archiving: %d stats vs %d rows", p.ID, stats.Count, len(live))
	}

	if len(live) > 0 {
		snapshots := make([]core.ArchivedTransaction, 0, len(live))
		for _, t := range live {
			snapshots = append(snapshots, t.Archive(p.ID, now))
		}
		if err := repo.InsertArchivedTransactions(ctx, snapshots); err != nil {
			return p, fmt.Errorf("insert archived transactions: %w", err)
		}
	}

	deleted, err := repo.DeletePeriodTransactions(ctx, p.ID)
	if err != nil {
		return p, fmt.Errorf("delete period transactions: %w", err)
	}
	if int(deleted) != len(live) {
		return p, fmt.Errorf("period %d: archived %d transactions but deleted %d", p.ID, len(live), deleted)
	}

	p.Stats = stats
	p.IsActive = false
	p.EndDate = ArchivedEndDate(p.StartDate, now)
	p.UpdatedAt = now
	if err := repo.UpdatePeriod(ctx, p); err != nil {
		return p, fmt.Errorf("close period: %w", err)
	}

	slog.InfoContext(ctx, "Period archived",
		"period_id", p.ID,
		"user_id", p.UserID,
		"transactions", len(live),
		"end_date", p.EndDate.String())
	return p, nil
}
