package services

import (
	"context"
	"fmt"
	"time"

	"dompet/internal/core"
	"dompet/internal/period"
)

const (
	dashboardRecentLimit   = 10
	dashboardPreviousLimit = 2
)

// Dashboard is the overview shown on the home screen. Every figure comes from
// cached period statistics.
type Dashboard struct {
	Current  core.Period
	Previous []core.Period
	AllTime  core.PeriodStats
	Recent   []core.Transaction
}

type DashboardService struct {
	store   period.Store
	periods *period.Manager
}

func NewDashboardService(store period.Store, periods *period.Manager) *DashboardService {
	return &DashboardService{store: store, periods: periods}
}

// Build assembles the dashboard, creating the active period if needed.
func (s *DashboardService) Build(ctx context.Context, userID int64, now time.Time) (Dashboard, error) {
	current, err := s.periods.GetOrCreateActivePeriod(ctx, userID, now)
	if err != nil {
		return Dashboard{}, err
	}
	previous, err := s.periods.GetPeriodHistory(ctx, userID, core.Page{Limit: dashboardPreviousLimit})
	if err != nil {
		return Dashboard{}, err
	}
	total, err := s.store.TotalStats(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("total stats: %w", err)
	}
	recent, err := s.store.ListPeriodTransactions(ctx, current.ID, core.Page{Limit: dashboardRecentLimit})
	if err != nil {
		return Dashboard{}, fmt.Errorf("recent transactions: %w", err)
	}
	return Dashboard{
		Current:  current,
		Previous: previous,
		AllTime:  total,
		Recent:   recent,
	}, nil
}
