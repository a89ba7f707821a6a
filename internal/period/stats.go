package period

import (
	"context"
	"fmt"
	"log/slog"

	"dompet/internal/core"
)

// Aggregator keeps a period's cached statistics in line with its live
// transactions. Stats are always recomputed in one aggregate query so they
// can never drift from the data.
type Aggregator struct{}

// Refresh recomputes and stores the stats of periodID using repo, which may be
// a transactional view.
func (Aggregator) Refresh(ctx context.Context, repo Repository, periodID int64) (core.PeriodStats, error) {
	stats, err := repo.SumPeriodTransactions(ctx, periodID)
	if err != nil {
		return core.PeriodStats{}, fmt.Errorf("sum period transactions: %w", err)
	}
	if err := repo.SavePeriodStats(ctx, periodID, stats); err != nil {
		return core.PeriodStats{}, fmt.Errorf("save period stats: %w", err)
	}
	slog.DebugContext(ctx, "Period stats refreshed",
		"period_id", periodID,
		"income_cents", stats.Income.Cents,
		"expense_cents", stats.Expense.Cents,
		"count", stats.Count)
	return stats, nil
}
