package api

// User is a club member with their beer tally and balance.
type User struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Active     bool    `json:"active"`
	Role       Role    `json:"role"`
	BeersTotal int     `json:"beersTotal"`
	BeersToday int     `json:"beersToday"`
	Balance    float64 `json:"balance"`
	Rank       int     `json:"rank"`
	CreatedAt  string  `json:"createdAt"`
}

// Role is a user role.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Match is one played match.
type Match struct {
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	HomeGoals int    `json:"homeGoals"`
	AwayGoals int    `json:"awayGoals"`
	Date      string `json:"date"`
}

// Team is one row of a standings table.
type Team struct {
	Rank           int    `json:"rank"`
	Name           string `json:"name"`
	ScoredGoals    int    `json:"scoredGoals"`
	GoalDifference int    `json:"goalDifference"`
	Points         int    `json:"points"`
}

// PlayerStats aggregates a player's history.
type PlayerStats struct {
	ID                  string  `json:"id"`
	Rank                int     `json:"rank"`
	Name                string  `json:"name"`
	BeersTotal          int     `json:"beersTotal"`
	PaymentsTotal       float64 `json:"paymentsTotal"`
	TrainingsTotal      int     `json:"trainingsTotal"`
	MaxBeersPerTraining int     `json:"maxBeersPerTraining"`
	AvgBeersPerTraining float64 `json:"avgBeersPerTraining"`
	Active              bool    `json:"active"`
}

// Settings are the club-wide settings.
type Settings struct {
	BeerPrice float64 `json:"beerPrice"`
}

// LoginResponse is the answer to a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// CreateUserRequest creates a user.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest changes name and/or email.
type UpdateUserRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// CreateMatchRequest records an old-vs-young match.
type CreateMatchRequest struct {
	OldGoals   int `json:"oldGoals"`
	YoungGoals int `json:"youngGoals"`
}

// TournamentMatch is one match of a tournament day.
type TournamentMatch struct {
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	HomeGoals int    `json:"homeGoals"`
	AwayGoals int    `json:"awayGoals"`
}

// Teams.
const (
	TeamOld    = "Old"
	TeamYoung  = "Young"
	TeamMiddle = "Middle"
)

// Defaults shared with the service.
const (
	DefaultBeerPrice       = 1.0
	DefaultPaymentAmount   = 10.0
	DefaultMatchLimit      = 5
	DefaultTournamentLimit = 6

	// FirstSeason is the first year the club kept records.
	FirstSeason = 2013
)

// AllYears selects every season in year-filtered queries.
const AllYears = 0
