package services

import (
	"context"
	"fmt"
	"log/slog"

	"dompet/internal/cache"
	"dompet/internal/core"
	"dompet/internal/period"
)

// SettingsUpdate holds the fields a user wants to change; nil fields are kept.
type SettingsUpdate struct {
	PaydayDay    *int
	AutoArchive  *bool
	NamingFormat *core.NamingFormat
	Locale       *string
}

// SettingsService manages period preferences. Changes only affect periods
// created afterwards.
type SettingsService struct {
	store   period.Store
	periods *period.Manager
	cache   *cache.LRU[int64, core.UserSettings]
}

// NewSettingsService creates the service. settingsCache may be nil.
func NewSettingsService(store period.Store, periods *period.Manager, settingsCache *cache.LRU[int64, core.UserSettings]) *SettingsService {
	return &SettingsService{store: store, periods: periods, cache: settingsCache}
}

// Get returns the user's settings, creating the defaults on first use.
func (s *SettingsService) Get(ctx context.Context, userID int64) (core.UserSettings, error) {
	if s.cache != nil {
		if settings, ok := s.cache.Get(userID); ok {
			return settings, nil
		}
	}

	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		err = s.store.InTx(ctx, func(repo period.Repository) error {
			var err error
			settings, err = s.periods.SettingsFor(ctx, repo, userID)
			return err
		})
		if err != nil {
			return core.UserSettings{}, err
		}
	}
	s.remember(settings)
	return settings, nil
}

func (s *SettingsService) remember(settings core.UserSettings) {
	if s.cache != nil {
		s.cache.Set(settings.UserID, settings)
	}
}

// Update validates and stores the changed preferences.
func (s *SettingsService) Update(ctx context.Context, userID int64, u SettingsUpdate) (core.UserSettings, error) {
	var settings core.UserSettings
	err := s.store.InTx(ctx, func(repo period.Repository) error {
		cur, err := s.periods.SettingsFor(ctx, repo, userID)
		if err != nil {
			return err
		}
		if u.PaydayDay != nil {
			cur.PaydayDay = *u.PaydayDay
		}
		if u.AutoArchive != nil {
			cur.AutoArchive = *u.AutoArchive
		}
		if u.NamingFormat != nil {
			cur.NamingFormat = *u.NamingFormat
		}
		if u.Locale != nil {
			cur.Locale = *u.Locale
		}
		if err := cur.Validate(); err != nil {
			return err
		}
		if err := repo.SaveSettings(ctx, cur); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		settings = cur
		return nil
	})
	if err != nil {
		return core.UserSettings{}, err
	}
	s.remember(settings)
	slog.InfoContext(ctx, "Settings updated",
		"user_id", userID,
		"payday_day", settings.PaydayDay,
		"naming_format", settings.NamingFormat)
	return settings, nil
}
