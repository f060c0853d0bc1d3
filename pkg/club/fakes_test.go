package club

import (
	"context"
	"sync"
	"time"

	"github.com/fridaykickers/kickers/pkg/api"
)

var fixedNow = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

type notes struct {
	mu      sync.Mutex
	success []string
	errors  []string
}

func (n *notes) Success(msg string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.success = append(n.success, msg)
	return ""
}

func (n *notes) Error(msg string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
	return ""
}

// fakeUsers serves a fixed roster. Mutations update it the way the service
// would, including the balance.
type fakeUsers struct {
	mu        sync.Mutex
	users     []api.User
	price     float64
	queries   []api.UserQuery
	listErr   error
	drinkErr  error
	emptyBody bool
}

func (f *fakeUsers) List(ctx context.Context, q api.UserQuery) ([]api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]api.User(nil), f.users...), nil
}

func (f *fakeUsers) update(id string, fn func(*api.User)) api.User {
	for i := range f.users {
		if f.users[i].ID == id {
			fn(&f.users[i])
			return f.users[i]
		}
	}
	return api.User{}
}

func (f *fakeUsers) Drink(ctx context.Context, id string) (api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.drinkErr != nil {
		return api.User{}, f.drinkErr
	}
	u := f.update(id, func(u *api.User) {
		u.BeersTotal++
		u.BeersToday++
		u.Balance -= f.price
	})
	if f.emptyBody {
		return api.User{}, nil
	}
	return u, nil
}

func (f *fakeUsers) UndoDrink(ctx context.Context, id string) (api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.update(id, func(u *api.User) {
		u.BeersTotal--
		u.BeersToday--
		u.Balance += f.price
	}), nil
}

func (f *fakeUsers) Pay(ctx context.Context, id string, amount float64) (api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.update(id, func(u *api.User) { u.Balance += amount }), nil
}

type fakeMatches struct {
	mu          sync.Mutex
	matches     []api.Match
	teams       []api.Team
	saved       []api.CreateMatchRequest
	tournaments [][]api.TournamentMatch
	standings   []api.StandingsQuery
	lists       []api.MatchQuery
	saveErr     error
	listErr     error
}

func (f *fakeMatches) List(ctx context.Context, q api.MatchQuery) ([]api.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, q)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.matches, nil
}

func (f *fakeMatches) Save(ctx context.Context, oldGoals, youngGoals int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, api.CreateMatchRequest{OldGoals: oldGoals, YoungGoals: youngGoals})
	f.matches = append([]api.Match{{HomeTeam: api.TeamOld, AwayTeam: api.TeamYoung, HomeGoals: oldGoals, AwayGoals: youngGoals}}, f.matches...)
	return nil
}

func (f *fakeMatches) Standings(ctx context.Context, q api.StandingsQuery) ([]api.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.standings = append(f.standings, q)
	return f.teams, nil
}

func (f *fakeMatches) SaveTournament(ctx context.Context, matches []api.TournamentMatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.tournaments = append(f.tournaments, matches)
	return nil
}

type fakeStats struct {
	stats   []api.PlayerStats
	queries []api.StatsQuery
	err     error
}

func (f *fakeStats) List(ctx context.Context, q api.StatsQuery) ([]api.PlayerStats, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

type fakeSettings struct {
	settings api.Settings
	updates  []api.Settings
	err      error
}

func (f *fakeSettings) Get(ctx context.Context) (api.Settings, error) {
	return f.settings, f.err
}

func (f *fakeSettings) Update(ctx context.Context, st api.Settings) error {
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, st)
	f.settings = st
	return nil
}
