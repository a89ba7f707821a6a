package services

import (
	"context"
	"fmt"
	"time"

	"dompet/internal/log"
	"dompet/internal/period"
)

// InitSummary counts the users handled by one initializer run.
type InitSummary struct {
	Processed int
	Skipped   int
	Assigned  int64
}

// PeriodInitializer gives every known user settings and, for users with
// transactions recorded before periods existed, an initial period.
type PeriodInitializer struct {
	store   period.Store
	periods *period.Manager
	logger  *log.Logger
}

func NewPeriodInitializer(store period.Store, periods *period.Manager, logger *log.Logger) *PeriodInitializer {
	return &PeriodInitializer{
		store:   store,
		periods: periods,
		logger:  logger.WithComponent(log.ComponentInit),
	}
}

// Run processes every user. It stops on the first storage error; users
// already handled keep their changes.
func (p *PeriodInitializer) Run(ctx context.Context, now time.Time) (InitSummary, error) {
	var sum InitSummary
	users, err := p.store.ListUserIDs(ctx)
	if err != nil {
		return sum, fmt.Errorf("list users: %w", err)
	}

	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		out, err := p.periods.CreateInitialPeriod(ctx, userID, now)
		if err != nil {
			return sum, fmt.Errorf("initialize user %d: %w", userID, err)
		}
		if !out.Created {
			p.logger.InfoContext(ctx, "User skipped", log.FieldUserID, userID, "reason", out.Reason)
			sum.Skipped++
			continue
		}
		sum.Processed++
		sum.Assigned += out.Assigned
	}

	p.logger.InfoContext(ctx, "Period initialization complete",
		"processed", sum.Processed,
		"skipped", sum.Skipped,
		"assigned", sum.Assigned)
	return sum, nil
}
