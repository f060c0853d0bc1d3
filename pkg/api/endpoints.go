package api

import "net/url"

// Endpoint paths.
const (
	PathLogin  = "/login"
	PathLogout = "/logout"

	PathUsers = "/v1/user"

	PathMatches         = "/v1/match"
	PathMatchTournament = "/v1/match/tournament"
	PathMatchStandings  = "/v1/match/tableaux"
	PathStats           = "/v1/stats"
	PathSettings        = "/v1/settings"

	// APIPrefix marks live-data traffic that must never be cached.
	APIPrefix = "/v1/"
)

func userPath(id, suffix string) string {
	return PathUsers + "/" + url.PathEscape(id) + suffix
}

// UserPath returns the path of one user.
func UserPath(id string) string { return userPath(id, "") }

// UserActivePath toggles a user's active flag.
func UserActivePath(id string) string { return userPath(id, "/active") }

// UserInfoPath updates name and email.
func UserInfoPath(id string) string { return userPath(id, "/userinfo") }

// UserPasswordPath changes the password.
func UserPasswordPath(id string) string { return userPath(id, "/password") }

// UserDrinkPath records one beer.
func UserDrinkPath(id string) string { return userPath(id, "/drink") }

// UserDrinkUndoPath removes the last beer.
func UserDrinkUndoPath(id string) string { return userPath(id, "/drink/undo") }

// UserPayPath records a payment.
func UserPayPath(id string) string { return userPath(id, "/pay") }

// withQuery appends q to path when it is not empty.
func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
