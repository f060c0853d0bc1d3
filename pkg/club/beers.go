package club

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fridaykickers/kickers/pkg/api"
	"github.com/fridaykickers/kickers/pkg/gateway"
	"github.com/fridaykickers/kickers/pkg/optimistic"
	"github.com/fridaykickers/kickers/pkg/store"
)

// UserFilter narrows the roster.
type UserFilter struct {
	Active bool
	Search string
}

// BeersState is the roster with its filter.
type BeersState struct {
	Users   []api.User
	Loading bool
	Filter  UserFilter
}

// Beers is the beer roster.
type Beers struct {
	svc    UserService
	notes  Notifier
	logger *slog.Logger
	st     *store.Store[BeersState]
	coord  *optimistic.Coordinator[BeersState, api.User]
}

// NewBeers creates an empty roster showing active users.
func NewBeers(svc UserService, notes Notifier, opts ...Option) *Beers {
	o := buildOptions(opts)
	b := &Beers{
		svc:    svc,
		notes:  notifierOrDiscard(notes),
		logger: o.logger,
		st: store.New(BeersState{
			Users:  []api.User{},
			Filter: UserFilter{Active: true},
		}),
	}
	copts := append([]optimistic.Option{
		optimistic.WithNotifier(b.notes),
		optimistic.WithMessage(gateway.Message),
		optimistic.WithLogger(o.logger),
		optimistic.WithMetrics(o.metrics),
		optimistic.WithReset(clearUsers),
	}, o.extra...)
	b.coord = optimistic.New[BeersState, api.User](b.st, b.loadAll, copts...)
	return b
}

// State returns the current roster.
func (b *Beers) State() BeersState { return b.st.Get() }

// Subscribe registers fn for every subsequent roster change.
func (b *Beers) Subscribe(fn func(BeersState)) func() { return b.st.Subscribe(fn) }

// Store exposes the roster read-only.
func (b *Beers) Store() store.Readable[BeersState] { return b.st }

// Load reloads the roster for the current filter. On failure the list is
// cleared and one error is shown.
func (b *Beers) Load(ctx context.Context) error {
	b.st.Update(func(s BeersState) BeersState {
		s.Loading = true
		return s
	})

	if err := b.coord.Resync(ctx); err != nil {
		b.logger.Warn("load users failed", "error", err)
		b.notes.Error(gateway.Message(err, "Fehler beim Laden der Benutzer"))
		b.st.Update(clearUsers)
		return err
	}
	return nil
}

func (b *Beers) loadAll(ctx context.Context) (func(BeersState) BeersState, error) {
	f := b.st.Get().Filter
	users, err := b.svc.List(ctx, api.UserQuery{Active: api.Bool(f.Active), Filter: f.Search})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []api.User{}
	}
	return func(s BeersState) BeersState {
		s.Users = users
		s.Loading = false
		return s
	}, nil
}

// DrinkBeer books one beer for id. The counters move immediately; the
// balance follows from the service.
func (b *Beers) DrinkBeer(ctx context.Context, id string) error {
	_, err := b.coord.Apply(ctx, optimistic.Mutation[BeersState, api.User]{
		Action: "drink",
		Key:    id,
		Patch: func(s BeersState) BeersState {
			return withUser(s, id, func(u api.User) api.User {
				u.BeersTotal++
				u.BeersToday++
				return u
			})
		},
		Call:      func(ctx context.Context) (api.User, error) { return b.svc.Drink(ctx, id) },
		Identify:  identified,
		Reconcile: reconcileUser,
		Success:   constant("Bier hinzugefügt! 🍺"),
		Failure:   "Fehler beim Hinzufügen des Biers",
	})
	return err
}

// UndoDrink removes the last beer booked for id.
func (b *Beers) UndoDrink(ctx context.Context, id string) error {
	_, err := b.coord.Apply(ctx, optimistic.Mutation[BeersState, api.User]{
		Action:    "undo_drink",
		Key:       id,
		Call:      func(ctx context.Context) (api.User, error) { return b.svc.UndoDrink(ctx, id) },
		Identify:  identified,
		Reconcile: reconcileUser,
		Success:   constant("Bier rückgängig gemacht"),
		Failure:   "Fehler beim Rückgängig machen",
	})
	return err
}

// AddPayment books a payment. There is no optimistic patch since the
// balance is computed by the service.
func (b *Beers) AddPayment(ctx context.Context, id string, amount float64) error {
	msg := fmt.Sprintf("Zahlung von €%.2f hinzugefügt", amount)
	_, err := b.coord.Apply(ctx, optimistic.Mutation[BeersState, api.User]{
		Action:    "pay",
		Key:       id,
		Call:      func(ctx context.Context) (api.User, error) { return b.svc.Pay(ctx, id, amount) },
		Identify:  identified,
		Reconcile: reconcileUser,
		Success:   constant(msg),
		Failure:   "Fehler beim Hinzufügen der Zahlung",
	})
	return err
}

// SetFilter replaces the filter without reloading.
func (b *Beers) SetFilter(f UserFilter) {
	b.st.Update(func(s BeersState) BeersState {
		s.Filter = f
		return s
	})
}

// SetSearch changes the search text and reloads.
func (b *Beers) SetSearch(ctx context.Context, search string) error {
	b.st.Update(func(s BeersState) BeersState {
		s.Filter.Search = search
		return s
	})
	return b.Load(ctx)
}

// ToggleActive flips the active-only filter and reloads.
func (b *Beers) ToggleActive(ctx context.Context) error {
	b.st.Update(func(s BeersState) BeersState {
		s.Filter.Active = !s.Filter.Active
		return s
	})
	return b.Load(ctx)
}

// clearUsers empties the roster, as a failed load does.
func clearUsers(s BeersState) BeersState {
	s.Users = []api.User{}
	s.Loading = false
	return s
}

func identified(u api.User) bool { return u.ID != "" }

func constant(msg string) func(api.User) string {
	return func(api.User) string { return msg }
}

func reconcileUser(s BeersState, u api.User) BeersState {
	return withUser(s, u.ID, func(api.User) api.User { return u })
}

// withUser returns s with a fresh Users slice where fn replaced user id.
func withUser(s BeersState, id string, fn func(api.User) api.User) BeersState {
	users := make([]api.User, len(s.Users))
	for i, u := range s.Users {
		if u.ID == id {
			u = fn(u)
		}
		users[i] = u
	}
	s.Users = users
	return s
}
