package club

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fridaykickers/kickers/pkg/api"
)

func TestStatsFilters(t *testing.T) {
	svc := &fakeStats{stats: []api.PlayerStats{{ID: "u1", BeersTotal: 120}}}
	s := NewStats(svc, nil, WithClock(fixedNow))

	if y := s.State().AvailableYears; len(y) != 12 || y[0] != 2024 {
		t.Fatalf("AvailableYears = %v, want 2024..2013", y)
	}

	ctx := context.Background()
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	_ = s.SetSearch(ctx, "jo")
	_ = s.ToggleActive(ctx)
	_ = s.SetYear(ctx, 2020)

	want := []api.StatsQuery{
		{Active: api.Bool(false)},
		{Active: api.Bool(false), Filter: "jo"},
		{Active: api.Bool(true), Filter: "jo"},
		{Active: api.Bool(true), Filter: "jo", Year: 2020},
	}
	if diff := cmp.Diff(want, svc.queries); diff != "" {
		t.Errorf("queries (-want +got):\n%s", diff)
	}
	if got := len(s.State().Stats); got != 1 {
		t.Errorf("stats = %d, want 1", got)
	}
}

func TestStatsLoadFailureClears(t *testing.T) {
	svc := &fakeStats{stats: []api.PlayerStats{{ID: "u1"}}}
	n := &notes{}
	s := NewStats(svc, n, WithClock(fixedNow))
	_ = s.Load(context.Background())

	svc.err = errors.New("")
	if err := s.Load(context.Background()); err == nil {
		t.Fatal("Load() error = nil, want error")
	}
	if st := s.State(); len(st.Stats) != 0 || st.Stats == nil || st.Loading {
		t.Errorf("state = %+v", st)
	}
	if diff := cmp.Diff([]string{"Fehler beim Laden der Statistiken"}, n.errors); diff != "" {
		t.Errorf("errors (-want +got):\n%s", diff)
	}
}

func TestSettings(t *testing.T) {
	svc := &fakeSettings{settings: api.Settings{BeerPrice: 1.2}}
	n := &notes{}
	s := NewSettings(svc, n)

	if got := s.State().Settings.BeerPrice; got != api.DefaultBeerPrice {
		t.Fatalf("initial BeerPrice = %v, want %v", got, api.DefaultBeerPrice)
	}
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := s.State().Settings.BeerPrice; got != 1.2 {
		t.Fatalf("BeerPrice = %v, want 1.2", got)
	}

	if err := s.UpdateBeerPrice(context.Background(), 1.5); err != nil {
		t.Fatalf("UpdateBeerPrice() error = %v", err)
	}
	if st := s.State(); st.Settings.BeerPrice != 1.5 || st.Saving {
		t.Errorf("state = %+v", st)
	}
	if diff := cmp.Diff([]string{"Einstellungen erfolgreich gespeichert!"}, n.success); diff != "" {
		t.Errorf("success (-want +got):\n%s", diff)
	}
}

func TestUpdateBeerPriceFailurePropagates(t *testing.T) {
	wantErr := errors.New("Nicht berechtigt")
	svc := &fakeSettings{err: wantErr}
	n := &notes{}
	s := NewSettings(svc, n)

	if err := s.UpdateBeerPrice(context.Background(), 2); !errors.Is(err, wantErr) {
		t.Fatalf("UpdateBeerPrice() error = %v, want %v", err, wantErr)
	}
	if st := s.State(); st.Settings.BeerPrice != api.DefaultBeerPrice || st.Saving {
		t.Errorf("state = %+v", st)
	}
	if len(n.success) != 0 || len(n.errors) != 1 {
		t.Errorf("notes success=%v errors=%v", n.success, n.errors)
	}
}

func TestNewClub(t *testing.T) {
	c := New(Services{
		Users:    roster(),
		Matches:  &fakeMatches{},
		Stats:    &fakeStats{},
		Settings: &fakeSettings{},
	}, nil, WithClock(fixedNow))

	if c.Beers == nil || c.Matches == nil || c.Tournament == nil || c.Stats == nil || c.Settings == nil {
		t.Fatalf("club = %+v", c)
	}
}
