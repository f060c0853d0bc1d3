package club

import (
	"context"
	"log/slog"

	"github.com/fridaykickers/kickers/pkg/api"
	"github.com/fridaykickers/kickers/pkg/gateway"
	"github.com/fridaykickers/kickers/pkg/store"
)

// StatsFilter narrows the statistics. Year api.AllYears covers every season.
type StatsFilter struct {
	Active bool
	Search string
	Year   int
}

// StatsState holds player statistics.
type StatsState struct {
	Stats          []api.PlayerStats
	Loading        bool
	Filter         StatsFilter
	AvailableYears []int
}

// Stats tracks player statistics. The current season is still running and
// is not offered as a filter.
type Stats struct {
	svc    StatsService
	notes  Notifier
	logger *slog.Logger
	st     *store.Store[StatsState]
}

// NewStats creates an empty statistics view over all seasons.
func NewStats(svc StatsService, notes Notifier, opts ...Option) *Stats {
	o := buildOptions(opts)
	return &Stats{
		svc:    svc,
		notes:  notifierOrDiscard(notes),
		logger: o.logger,
		st: store.New(StatsState{
			Stats:          []api.PlayerStats{},
			Filter:         StatsFilter{Year: api.AllYears},
			AvailableYears: seasons(o.now().Year() - 1),
		}),
	}
}

// State returns the current view.
func (s *Stats) State() StatsState { return s.st.Get() }

// Subscribe registers fn for every subsequent change.
func (s *Stats) Subscribe(fn func(StatsState)) func() { return s.st.Subscribe(fn) }

// Store exposes the view read-only.
func (s *Stats) Store() store.Readable[StatsState] { return s.st }

// Load reloads the statistics for the current filter. On failure the list
// is cleared.
func (s *Stats) Load(ctx context.Context) error {
	var f StatsFilter
	s.st.Update(func(st StatsState) StatsState {
		f = st.Filter
		st.Loading = true
		return st
	})

	stats, err := s.svc.List(ctx, api.StatsQuery{Active: api.Bool(f.Active), Filter: f.Search, Year: f.Year})
	if err != nil {
		s.logger.Warn("load statistics failed", "error", err)
		s.notes.Error(gateway.Message(err, "Fehler beim Laden der Statistiken"))
		stats = nil
	}

	s.st.Update(func(st StatsState) StatsState {
		st.Stats = orEmpty(stats)
		st.Loading = false
		return st
	})
	return err
}

// SetSearch changes the search text and reloads.
func (s *Stats) SetSearch(ctx context.Context, search string) error {
	s.st.Update(func(st StatsState) StatsState {
		st.Filter.Search = search
		return st
	})
	return s.Load(ctx)
}

// ToggleActive flips the active-only filter and reloads.
func (s *Stats) ToggleActive(ctx context.Context) error {
	s.st.Update(func(st StatsState) StatsState {
		st.Filter.Active = !st.Filter.Active
		return st
	})
	return s.Load(ctx)
}

// SetYear selects a season and reloads.
func (s *Stats) SetYear(ctx context.Context, year int) error {
	s.st.Update(func(st StatsState) StatsState {
		st.Filter.Year = year
		return st
	})
	return s.Load(ctx)
}
