package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type call struct {
	method string
	path   string
	body   any
}

// recorder captures requests and answers with a canned JSON payload.
type recorder struct {
	calls  []call
	answer string
	err    error
}

func (r *recorder) Request(_ context.Context, method, path string, body, out any) error {
	r.calls = append(r.calls, call{method, path, body})
	if r.err != nil {
		return r.err
	}
	if out != nil && r.answer != "" {
		return json.Unmarshal([]byte(r.answer), out)
	}
	return nil
}

func (r *recorder) PostForm(_ context.Context, path string, fields map[string]string, out any) error {
	r.calls = append(r.calls, call{http.MethodPost, path, fields})
	if out != nil && r.answer != "" {
		return json.Unmarshal([]byte(r.answer), out)
	}
	return nil
}

func (r *recorder) last() call { return r.calls[len(r.calls)-1] }

func TestUserPaths(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{answer: `{"id":"u 1"}`}
	users := NewUsers(rec)

	tests := []struct {
		name   string
		run    func()
		method string
		path   string
	}{
		{"list all", func() { users.List(ctx, UserQuery{}) }, http.MethodGet, "/v1/user"},
		{"list filtered", func() { users.List(ctx, UserQuery{Active: Bool(true), Filter: "kal"}) }, http.MethodGet, "/v1/user?active=true&filter=kal"},
		{"get", func() { users.Get(ctx, "u 1") }, http.MethodGet, "/v1/user/u%201"},
		{"drink", func() { users.Drink(ctx, "u1") }, http.MethodPut, "/v1/user/u1/drink"},
		{"undo", func() { users.UndoDrink(ctx, "u1") }, http.MethodPut, "/v1/user/u1/drink/undo"},
		{"pay default", func() { users.Pay(ctx, "u1", 0) }, http.MethodPut, "/v1/user/u1/pay"},
		{"pay amount", func() { users.Pay(ctx, "u1", 12.5) }, http.MethodPut, "/v1/user/u1/pay?amount=12.5"},
		{"set active", func() { users.SetActive(ctx, "u1", false) }, http.MethodPut, "/v1/user/u1/active"},
		{"update info", func() { users.UpdateInfo(ctx, "u1", UpdateUserRequest{Name: "x"}) }, http.MethodPut, "/v1/user/u1/userinfo"},
		{"password", func() { users.ChangePassword(ctx, "u1", "pw") }, http.MethodPut, "/v1/user/u1/password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run()
			got := rec.last()
			if got.method != tt.method || got.path != tt.path {
				t.Errorf("request = %s %s, want %s %s", got.method, got.path, tt.method, tt.path)
			}
		})
	}
}

func TestDrinkDecodesUser(t *testing.T) {
	rec := &recorder{answer: `{"id":"u1","beersTotal":5,"balance":-3.5}`}
	u, err := NewUsers(rec).Drink(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Drink: %v", err)
	}
	want := User{ID: "u1", BeersTotal: 5, Balance: -3.5}
	if diff := cmp.Diff(want, u); diff != "" {
		t.Errorf("user mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchPaths(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	matches := NewMatches(rec)

	matches.List(ctx, MatchQuery{Tournament: Bool(false), Limit: 5})
	if got := rec.last().path; got != "/v1/match?limit=5&tournament=false" {
		t.Errorf("List path = %q", got)
	}

	matches.Standings(ctx, StandingsQuery{Tournament: Bool(false), Year: AllYears})
	if got := rec.last().path; got != "/v1/match/tableaux?tournament=false" {
		t.Errorf("Standings(all) path = %q", got)
	}

	matches.Standings(ctx, StandingsQuery{Tournament: Bool(true), Year: 2024, Limit: 6})
	if got := rec.last().path; got != "/v1/match/tableaux?limit=6&tournament=true&year=2024" {
		t.Errorf("Standings(2024) path = %q", got)
	}

	matches.Save(ctx, 3, 2)
	if diff := cmp.Diff(call{http.MethodPost, "/v1/match", CreateMatchRequest{OldGoals: 3, YoungGoals: 2}}, rec.last(), cmp.AllowUnexported(call{})); diff != "" {
		t.Errorf("Save request mismatch (-want +got):\n%s", diff)
	}

	tm := []TournamentMatch{{HomeTeam: TeamOld, AwayTeam: TeamYoung, HomeGoals: 1}}
	matches.SaveTournament(ctx, tm)
	if got := rec.last(); got.path != PathMatchTournament || got.method != http.MethodPost {
		t.Errorf("SaveTournament request = %s %s", got.method, got.path)
	}
}

func TestStatsPath(t *testing.T) {
	rec := &recorder{}
	NewStats(rec).List(context.Background(), StatsQuery{Active: Bool(false), Filter: "a", Year: 2020})
	if got := rec.last().path; got != "/v1/stats?active=false&filter=a&year=2020" {
		t.Errorf("Stats path = %q", got)
	}
}

func TestSettings(t *testing.T) {
	rec := &recorder{answer: `{"beerPrice":1.5}`}
	svc := NewSettings(rec)

	st, err := svc.Get(context.Background())
	if err != nil || st.BeerPrice != 1.5 {
		t.Fatalf("Get = %+v, %v", st, err)
	}
	svc.Update(context.Background(), Settings{BeerPrice: 2})
	if got := rec.last(); got.method != http.MethodPost || got.path != PathSettings {
		t.Errorf("Update request = %s %s", got.method, got.path)
	}
}

func TestLogin(t *testing.T) {
	rec := &recorder{answer: `{"token":"abc"}`}
	token, err := NewAuth(rec).Login(context.Background(), "a@b.de", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "abc" {
		t.Errorf("token = %q", token)
	}

	rec.answer = `{}`
	if _, err := NewAuth(rec).Login(context.Background(), "a@b.de", "pw"); err != ErrNoToken {
		t.Errorf("Login without token error = %v, want ErrNoToken", err)
	}
}
