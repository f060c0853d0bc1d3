package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fridaykickers/kickers/pkg/gateway"
)

// ErrNoToken is returned by Auth.Login when the answer carries no token.
var ErrNoToken = errors.New("Kein Token in der Antwort erhalten")

// UserQuery filters the user list.
type UserQuery struct {
	Active *bool
	Filter string
}

// MatchQuery filters the match list.
type MatchQuery struct {
	Tournament *bool
	Limit      int
}

// StandingsQuery filters a standings table. Year AllYears means every season.
type StandingsQuery struct {
	Tournament *bool
	Year       int
	Limit      int
}

// StatsQuery filters player statistics. Year AllYears means every season.
type StatsQuery struct {
	Active *bool
	Filter string
	Year   int
}

// Bool returns a pointer to b, for optional query flags.
func Bool(b bool) *bool { return &b }

// Users wraps the user endpoints.
type Users struct {
	gw gateway.Requester
}

// NewUsers creates a Users service.
func NewUsers(gw gateway.Requester) *Users { return &Users{gw: gw} }

// List returns the users matching q.
func (s *Users) List(ctx context.Context, q UserQuery) ([]User, error) {
	v := url.Values{}
	if q.Active != nil {
		v.Set("active", strconv.FormatBool(*q.Active))
	}
	if q.Filter != "" {
		v.Set("filter", q.Filter)
	}
	var users []User
	err := s.gw.Request(ctx, http.MethodGet, withQuery(PathUsers, v), nil, &users)
	return users, err
}

// Get returns one user.
func (s *Users) Get(ctx context.Context, id string) (User, error) {
	var u User
	err := s.gw.Request(ctx, http.MethodGet, UserPath(id), nil, &u)
	return u, err
}

// Drink records one beer and returns the updated user.
func (s *Users) Drink(ctx context.Context, id string) (User, error) {
	var u User
	err := s.gw.Request(ctx, http.MethodPut, UserDrinkPath(id), nil, &u)
	return u, err
}

// UndoDrink removes the last beer and returns the updated user.
func (s *Users) UndoDrink(ctx context.Context, id string) (User, error) {
	var u User
	err := s.gw.Request(ctx, http.MethodPut, UserDrinkUndoPath(id), nil, &u)
	return u, err
}

// Pay records a payment. A zero amount lets the service apply its default.
func (s *Users) Pay(ctx context.Context, id string, amount float64) (User, error) {
	path := UserPayPath(id)
	if amount != 0 {
		path = withQuery(path, url.Values{"amount": {strconv.FormatFloat(amount, 'f', -1, 64)}})
	}
	var u User
	err := s.gw.Request(ctx, http.MethodPut, path, nil, &u)
	return u, err
}

// Create creates a user and returns its ID.
func (s *Users) Create(ctx context.Context, req CreateUserRequest) (string, error) {
	var id string
	err := s.gw.Request(ctx, http.MethodPost, PathUsers, req, &id)
	return id, err
}

// SetActive changes the active flag.
func (s *Users) SetActive(ctx context.Context, id string, active bool) error {
	return s.gw.Request(ctx, http.MethodPut, UserActivePath(id), map[string]bool{"active": active}, nil)
}

// UpdateInfo changes name and/or email.
func (s *Users) UpdateInfo(ctx context.Context, id string, req UpdateUserRequest) error {
	return s.gw.Request(ctx, http.MethodPut, UserInfoPath(id), req, nil)
}

// ChangePassword sets a new password.
func (s *Users) ChangePassword(ctx context.Context, id, password string) error {
	return s.gw.Request(ctx, http.MethodPut, UserPasswordPath(id), map[string]string{"password": password}, nil)
}

// Matches wraps the match endpoints.
type Matches struct {
	gw gateway.Requester
}

// NewMatches creates a Matches service.
func NewMatches(gw gateway.Requester) *Matches { return &Matches{gw: gw} }

// List returns recent matches.
func (s *Matches) List(ctx context.Context, q MatchQuery) ([]Match, error) {
	v := url.Values{}
	if q.Tournament != nil {
		v.Set("tournament", strconv.FormatBool(*q.Tournament))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	var matches []Match
	err := s.gw.Request(ctx, http.MethodGet, withQuery(PathMatches, v), nil, &matches)
	return matches, err
}

// Save records an old-vs-young match.
func (s *Matches) Save(ctx context.Context, oldGoals, youngGoals int) error {
	return s.gw.Request(ctx, http.MethodPost, PathMatches, CreateMatchRequest{OldGoals: oldGoals, YoungGoals: youngGoals}, nil)
}

// Standings returns a standings table.
func (s *Matches) Standings(ctx context.Context, q StandingsQuery) ([]Team, error) {
	v := url.Values{}
	if q.Tournament != nil {
		v.Set("tournament", strconv.FormatBool(*q.Tournament))
	}
	if q.Year != AllYears {
		v.Set("year", strconv.Itoa(q.Year))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	var teams []Team
	err := s.gw.Request(ctx, http.MethodGet, withQuery(PathMatchStandings, v), nil, &teams)
	return teams, err
}

// SaveTournament records all matches of a tournament day.
func (s *Matches) SaveTournament(ctx context.Context, matches []TournamentMatch) error {
	return s.gw.Request(ctx, http.MethodPost, PathMatchTournament, matches, nil)
}

// Stats wraps the statistics endpoint.
type Stats struct {
	gw gateway.Requester
}

// NewStats creates a Stats service.
func NewStats(gw gateway.Requester) *Stats { return &Stats{gw: gw} }

// List returns player statistics.
func (s *Stats) List(ctx context.Context, q StatsQuery) ([]PlayerStats, error) {
	v := url.Values{}
	if q.Active != nil {
		v.Set("active", strconv.FormatBool(*q.Active))
	}
	if q.Filter != "" {
		v.Set("filter", q.Filter)
	}
	if q.Year != AllYears {
		v.Set("year", strconv.Itoa(q.Year))
	}
	var stats []PlayerStats
	err := s.gw.Request(ctx, http.MethodGet, withQuery(PathStats, v), nil, &stats)
	return stats, err
}

// SettingsService wraps the settings endpoint.
type SettingsService struct {
	gw gateway.Requester
}

// NewSettings creates a SettingsService.
func NewSettings(gw gateway.Requester) *SettingsService { return &SettingsService{gw: gw} }

// Get returns the current settings.
func (s *SettingsService) Get(ctx context.Context) (Settings, error) {
	var st Settings
	err := s.gw.Request(ctx, http.MethodGet, PathSettings, nil, &st)
	return st, err
}

// Update stores new settings.
func (s *SettingsService) Update(ctx context.Context, st Settings) error {
	return s.gw.Request(ctx, http.MethodPost, PathSettings, st, nil)
}

// FormRequester is a Requester that can also post multipart forms.
type FormRequester interface {
	gateway.Requester
	PostForm(ctx context.Context, path string, fields map[string]string, out any) error
}

// Auth wraps login and logout.
type Auth struct {
	gw FormRequester
}

// NewAuth creates an Auth service.
func NewAuth(gw FormRequester) *Auth { return &Auth{gw: gw} }

// Login exchanges credentials for a bearer token.
func (s *Auth) Login(ctx context.Context, email, password string) (string, error) {
	var resp LoginResponse
	fields := map[string]string{"email": email, "password": password}
	if err := s.gw.PostForm(ctx, PathLogin, fields, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", ErrNoToken
	}
	return resp.Token, nil
}

// Logout ends the session on the service.
func (s *Auth) Logout(ctx context.Context) error {
	return s.gw.Request(ctx, http.MethodGet, PathLogout, nil, nil)
}
