package club

import "github.com/fridaykickers/kickers/pkg/api"

// Services bundles the service clients the containers need.
type Services struct {
	Users    UserService
	Matches  MatchService
	Stats    StatsService
	Settings SettingsService
}

// APIServices builds Services from pkg/api clients sharing one gateway.
func APIServices(users *api.Users, matches *api.Matches, stats *api.Stats, settings *api.SettingsService) Services {
	return Services{Users: users, Matches: matches, Stats: stats, Settings: settings}
}

// Club holds every container of one client session.
type Club struct {
	Beers      *Beers
	Matches    *Matches
	Tournament *Tournament
	Stats      *Stats
	Settings   *Settings
}

// New creates the containers of one session. Each call returns independent
// state.
func New(svc Services, notes Notifier, opts ...Option) *Club {
	return &Club{
		Beers:      NewBeers(svc.Users, notes, opts...),
		Matches:    NewMatches(svc.Matches, notes, opts...),
		Tournament: NewTournament(svc.Matches, notes, opts...),
		Stats:      NewStats(svc.Stats, notes, opts...),
		Settings:   NewSettings(svc.Settings, notes, opts...),
	}
}
