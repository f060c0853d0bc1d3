package club

import (
	"context"
	"log/slog"

	"github.com/fridaykickers/kickers/pkg/api"
	"github.com/fridaykickers/kickers/pkg/gateway"
	"github.com/fridaykickers/kickers/pkg/store"
)

// SettingsState holds the club settings.
type SettingsState struct {
	Settings api.Settings
	Loading  bool
	Saving   bool
}

// Settings tracks the club settings.
type Settings struct {
	svc    SettingsService
	notes  Notifier
	logger *slog.Logger
	st     *store.Store[SettingsState]
}

// NewSettings starts with the default beer price.
func NewSettings(svc SettingsService, notes Notifier, opts ...Option) *Settings {
	o := buildOptions(opts)
	return &Settings{
		svc:    svc,
		notes:  notifierOrDiscard(notes),
		logger: o.logger,
		st:     store.New(SettingsState{Settings: api.Settings{BeerPrice: api.DefaultBeerPrice}}),
	}
}

// State returns the current settings.
func (s *Settings) State() SettingsState { return s.st.Get() }

// Subscribe registers fn for every subsequent change.
func (s *Settings) Subscribe(fn func(SettingsState)) func() { return s.st.Subscribe(fn) }

// Store exposes the settings read-only.
func (s *Settings) Store() store.Readable[SettingsState] { return s.st }

// Load fetches the settings. A failure keeps the previous values.
func (s *Settings) Load(ctx context.Context) error {
	s.st.Update(func(st SettingsState) SettingsState {
		st.Loading = true
		return st
	})

	settings, err := s.svc.Get(ctx)
	if err != nil {
		s.logger.Warn("load settings failed", "error", err)
		s.notes.Error(gateway.Message(err, "Fehler beim Laden der Einstellungen"))
	}

	s.st.Update(func(st SettingsState) SettingsState {
		if err == nil {
			st.Settings = settings
		}
		st.Loading = false
		return st
	})
	return err
}

// UpdateBeerPrice stores a new beer price. The local value changes only
// after the service accepted it.
func (s *Settings) UpdateBeerPrice(ctx context.Context, price float64) error {
	s.st.Update(func(st SettingsState) SettingsState {
		st.Saving = true
		return st
	})

	err := s.svc.Update(ctx, api.Settings{BeerPrice: price})
	if err != nil {
		s.logger.Warn("update settings failed", "error", err)
		s.notes.Error(gateway.Message(err, "Fehler beim Speichern der Einstellungen"))
	}

	s.st.Update(func(st SettingsState) SettingsState {
		if err == nil {
			st.Settings.BeerPrice = price
		}
		st.Saving = false
		return st
	})
	if err == nil {
		s.notes.Success("Einstellungen erfolgreich gespeichert!")
	}
	return err
}
