package club

import (
	"context"
	"log/slog"
	"time"

	"github.com/fridaykickers/kickers/pkg/api"
	"github.com/fridaykickers/kickers/pkg/metrics"
	"github.com/fridaykickers/kickers/pkg/optimistic"
)

// Service interfaces consumed by the containers. The pkg/api services
// satisfy them.
type (
	UserService interface {
		List(ctx context.Context, q api.UserQuery) ([]api.User, error)
		Drink(ctx context.Context, id string) (api.User, error)
		UndoDrink(ctx context.Context, id string) (api.User, error)
		Pay(ctx context.Context, id string, amount float64) (api.User, error)
	}

	MatchService interface {
		List(ctx context.Context, q api.MatchQuery) ([]api.Match, error)
		Save(ctx context.Context, oldGoals, youngGoals int) error
		Standings(ctx context.Context, q api.StandingsQuery) ([]api.Team, error)
		SaveTournament(ctx context.Context, matches []api.TournamentMatch) error
	}

	StatsService interface {
		List(ctx context.Context, q api.StatsQuery) ([]api.PlayerStats, error)
	}

	SettingsService interface {
		Get(ctx context.Context) (api.Settings, error)
		Update(ctx context.Context, st api.Settings) error
	}
)

// Notifier is where user-facing messages go.
type Notifier = optimistic.Notifier

type discard struct{}

func (discard) Success(string) string { return "" }
func (discard) Error(string) string   { return "" }

// Option configures the containers.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	extra   []optimistic.Option
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records mutation outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock sets the clock used to compute season lists.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithCoordinatorOptions passes extra options to the optimistic coordinator
// of the beer roster, e.g. optimistic.WithoutSequencing().
func WithCoordinatorOptions(opts ...optimistic.Option) Option {
	return func(o *options) { o.extra = append(o.extra, opts...) }
}

func buildOptions(opts []Option) options {
	o := options{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func notifierOrDiscard(n Notifier) Notifier {
	if n == nil {
		return discard{}
	}
	return n
}

// seasons lists the years from newest down to api.FirstSeason.
func seasons(newest int) []int {
	if newest < api.FirstSeason {
		return []int{}
	}
	years := make([]int, 0, newest-api.FirstSeason+1)
	for y := newest; y >= api.FirstSeason; y-- {
		years = append(years, y)
	}
	return years
}
