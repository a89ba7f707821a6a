package period

import (
	"context"
	"fmt"
	"time"

	"dompet/internal/core"
	"dompet/internal/log"
)

var initialPeriodNames = map[string]string{
	core.LocaleID: "Periode Awal",
	core.LocaleEN: "Initial period",
}

// InitialOutcome reports what CreateInitialPeriod did for one user.
type InitialOutcome struct {
	Period   core.Period
	Created  bool
	Assigned int64
	// Reason is set when nothing was created.
	Reason string
}

// CreateInitialPeriod adopts a user's unassigned transactions into one active
// period running from the oldest of them to today. Users that already have
// periods, or have nothing to adopt, only get their default settings.
func (m *Manager) CreateInitialPeriod(ctx context.Context, userID int64, now time.Time) (InitialOutcome, error) {
	var out InitialOutcome
	err := m.store.InTx(ctx, func(repo Repository) error {
		settings, err := m.SettingsFor(ctx, repo, userID)
		if err != nil {
			return err
		}

		n, err := repo.CountPeriods(ctx, userID)
		if err != nil {
			return fmt.Errorf("count periods: %w", err)
		}
		if n > 0 {
			out.Reason = "user already has periods"
			return nil
		}

		start, ok, err := repo.EarliestUnassignedDate(ctx, userID)
		if err != nil {
			return fmt.Errorf("find earliest transaction: %w", err)
		}
		if !ok {
			out.Reason = "user has no transactions"
			return nil
		}

		end := core.DateOf(now)
		if end.Before(start) {
			end = start
		}
		p, err := repo.CreatePeriod(ctx, core.Period{
			UserID:    userID,
			StartDate: start,
			EndDate:   end,
			Name:      initialPeriodName(settings.Locale),
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("create initial period: %w", err)
		}

		assigned, err := repo.AssignUnassignedTransactions(ctx, userID, p.ID)
		if err != nil {
			return fmt.Errorf("assign transactions: %w", err)
		}
		if p.Stats, err = m.stats.Refresh(ctx, repo, p.ID); err != nil {
			return err
		}

		out = InitialOutcome{Period: p, Created: true, Assigned: assigned}
		return nil
	})
	if err != nil {
		return InitialOutcome{}, err
	}
	if out.Created {
		m.logger.InfoContext(ctx, "Initial period created",
			log.FieldUserID, userID,
			log.FieldPeriodID, out.Period.ID,
			log.FieldCount, out.Assigned)
	}
	return out, nil
}

func initialPeriodName(locale string) string {
	if name, ok := initialPeriodNames[locale]; ok {
		return name
	}
	return initialPeriodNames[core.LocaleID]
}
