package club

import (
	"context"
	"log/slog"

	"github.com/fridaykickers/kickers/pkg/api"
	"github.com/fridaykickers/kickers/pkg/gateway"
	"github.com/fridaykickers/kickers/pkg/store"
)

// MatchesState holds recent old-vs-young matches and a standings table.
// SelectedYear is api.AllYears when every season is shown.
type MatchesState struct {
	Matches        []api.Match
	Standings      []api.Team
	SelectedYear   int
	AvailableYears []int
	Loading        bool
	Saving         bool
}

// Matches tracks regular matches and standings.
type Matches struct {
	svc    MatchService
	notes  Notifier
	logger *slog.Logger
	now    func() int
	st     *store.Store[MatchesState]
}

// NewMatches creates an empty match view on the current season.
func NewMatches(svc MatchService, notes Notifier, opts ...Option) *Matches {
	o := buildOptions(opts)
	m := &Matches{
		svc:    svc,
		notes:  notifierOrDiscard(notes),
		logger: o.logger,
		now:    func() int { return o.now().Year() },
	}
	m.st = store.New(MatchesState{
		Matches:        []api.Match{},
		Standings:      []api.Team{},
		SelectedYear:   m.now(),
		AvailableYears: []int{},
	})
	return m
}

// State returns the current view.
func (m *Matches) State() MatchesState { return m.st.Get() }

// Subscribe registers fn for every subsequent change.
func (m *Matches) Subscribe(fn func(MatchesState)) func() { return m.st.Subscribe(fn) }

// Store exposes the view read-only.
func (m *Matches) Store() store.Readable[MatchesState] { return m.st }

// LoadMatches loads the latest limit matches. A failure keeps the list.
func (m *Matches) LoadMatches(ctx context.Context, limit int) error {
	m.st.Update(func(s MatchesState) MatchesState {
		s.Loading = true
		return s
	})

	matches, err := m.svc.List(ctx, api.MatchQuery{Tournament: api.Bool(false), Limit: limit})
	if err != nil {
		m.logger.Warn("load matches failed", "error", err)
		m.notes.Error(gateway.Message(err, "Fehler beim Laden der Spiele"))
		m.st.Update(func(s MatchesState) MatchesState {
			s.Loading = false
			return s
		})
		return err
	}

	m.st.Update(func(s MatchesState) MatchesState {
		s.Matches = orEmpty(matches)
		s.Loading = false
		return s
	})
	return nil
}

// LoadStandings selects year and loads its table.
func (m *Matches) LoadStandings(ctx context.Context, year int) error {
	m.st.Update(func(s MatchesState) MatchesState {
		s.Loading = true
		s.SelectedYear = year
		return s
	})

	teams, err := m.svc.Standings(ctx, api.StandingsQuery{Tournament: api.Bool(false), Year: year})
	if err != nil {
		m.logger.Warn("load standings failed", "year", year, "error", err)
		m.notes.Error(gateway.Message(err, "Fehler beim Laden der Tabelle"))
		m.st.Update(func(s MatchesState) MatchesState {
			s.Loading = false
			return s
		})
		return err
	}

	years := seasons(m.now())
	m.st.Update(func(s MatchesState) MatchesState {
		s.Standings = orEmpty(teams)
		s.AvailableYears = years
		s.Loading = false
		return s
	})
	return nil
}

// ChangeYear switches the standings to another season.
func (m *Matches) ChangeYear(ctx context.Context, year int) error {
	return m.LoadStandings(ctx, year)
}

// SaveMatch records a match, then reloads matches and the selected
// standings. The first failing step aborts the rest and is returned.
func (m *Matches) SaveMatch(ctx context.Context, oldGoals, youngGoals int) error {
	m.setSaving(true)

	if err := m.svc.Save(ctx, oldGoals, youngGoals); err != nil {
		m.logger.Warn("save match failed", "error", err)
		m.notes.Error(gateway.Message(err, "Fehler beim Speichern des Spiels"))
		m.setSaving(false)
		return err
	}
	m.notes.Success("Spiel erfolgreich gespeichert!")

	if err := m.LoadMatches(ctx, api.DefaultMatchLimit); err != nil {
		m.setSaving(false)
		return err
	}
	m.setSaving(false)
	return m.LoadStandings(ctx, m.st.Get().SelectedYear)
}

func (m *Matches) setSaving(saving bool) {
	m.st.Update(func(s MatchesState) MatchesState {
		s.Saving = saving
		return s
	})
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
