package club

import (
	"context"
	"log/slog"

	"github.com/fridaykickers/kickers/pkg/api"
	"github.com/fridaykickers/kickers/pkg/gateway"
	"github.com/fridaykickers/kickers/pkg/store"
)

// TournamentState holds the latest tournament day.
type TournamentState struct {
	Matches   []api.Match
	Standings []api.Team
	Loading   bool
	Saving    bool
}

// Tournament tracks three-team tournament days.
type Tournament struct {
	svc    MatchService
	notes  Notifier
	logger *slog.Logger
	st     *store.Store[TournamentState]
}

// NewTournament creates an empty tournament view.
func NewTournament(svc MatchService, notes Notifier, opts ...Option) *Tournament {
	o := buildOptions(opts)
	return &Tournament{
		svc:    svc,
		notes:  notifierOrDiscard(notes),
		logger: o.logger,
		st: store.New(TournamentState{
			Matches:   []api.Match{},
			Standings: []api.Team{},
		}),
	}
}

// State returns the current view.
func (t *Tournament) State() TournamentState { return t.st.Get() }

// Subscribe registers fn for every subsequent change.
func (t *Tournament) Subscribe(fn func(TournamentState)) func() { return t.st.Subscribe(fn) }

// Store exposes the view read-only.
func (t *Tournament) Store() store.Readable[TournamentState] { return t.st }

// LoadMatches loads the matches of recent tournament days.
func (t *Tournament) LoadMatches(ctx context.Context) error {
	t.setLoading(true)
	matches, err := t.svc.List(ctx, api.MatchQuery{Tournament: api.Bool(true), Limit: api.DefaultTournamentLimit})
	if err != nil {
		t.logger.Warn("load tournament matches failed", "error", err)
		t.notes.Error(gateway.Message(err, "Fehler beim Laden der Turnier-Spiele"))
		t.setLoading(false)
		return err
	}
	t.st.Update(func(s TournamentState) TournamentState {
		s.Matches = orEmpty(matches)
		s.Loading = false
		return s
	})
	return nil
}

// LoadStandings loads the tournament table.
func (t *Tournament) LoadStandings(ctx context.Context) error {
	t.setLoading(true)
	teams, err := t.svc.Standings(ctx, api.StandingsQuery{
		Tournament: api.Bool(true),
		Year:       api.AllYears,
		Limit:      api.DefaultTournamentLimit,
	})
	if err != nil {
		t.logger.Warn("load tournament standings failed", "error", err)
		t.notes.Error(gateway.Message(err, "Fehler beim Laden der Turnier-Tabelle"))
		t.setLoading(false)
		return err
	}
	t.st.Update(func(s TournamentState) TournamentState {
		s.Standings = orEmpty(teams)
		s.Loading = false
		return s
	})
	return nil
}

// SaveTournament records a tournament day, then reloads matches and table.
func (t *Tournament) SaveTournament(ctx context.Context, matches []api.TournamentMatch) error {
	t.setSaving(true)
	defer t.setSaving(false)

	if err := t.svc.SaveTournament(ctx, matches); err != nil {
		t.logger.Warn("save tournament failed", "error", err)
		t.notes.Error(gateway.Message(err, "Fehler beim Speichern des Turniers"))
		return err
	}
	t.notes.Success("Turnier erfolgreich gespeichert!")

	if err := t.LoadMatches(ctx); err != nil {
		return err
	}
	return t.LoadStandings(ctx)
}

func (t *Tournament) setLoading(loading bool) {
	t.st.Update(func(s TournamentState) TournamentState {
		s.Loading = loading
		return s
	})
}

func (t *Tournament) setSaving(saving bool) {
	t.st.Update(func(s TournamentState) TournamentState {
		s.Saving = saving
		return s
	})
}
