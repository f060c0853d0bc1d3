package main

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fridaykickers/kickers/internal/errors"
	"github.com/fridaykickers/kickers/pkg/api"
	"github.com/fridaykickers/kickers/pkg/auth"
	"github.com/fridaykickers/kickers/pkg/club"
	"github.com/fridaykickers/kickers/pkg/gateway"
	"github.com/fridaykickers/kickers/pkg/toast"
)

const requestTimeout = 15 * time.Second

// session is one client session against the club service.
type session struct {
	auth   *auth.Session
	login  *api.Auth
	users  *api.Users
	club   *club.Club
	toasts *toast.Center
}

func (e *env) newSession(opts ...club.Option) *session {
	tokens := auth.NewFileTokens(e.cfg.TokenPath())
	as := auth.NewSession(tokens)
	as.Initialize()

	gw := gateway.New(e.cfg.API.URL, tokens,
		gateway.WithDoer(&http.Client{Timeout: requestTimeout}),
		gateway.WithLogger(e.logger),
		gateway.WithUnauthenticated(func() {
			if err := as.Logout(); err != nil {
				e.logger.Warn("logout after 401", "error", err)
			}
		}),
	)

	users := api.NewUsers(gw)
	svc := club.APIServices(users, api.NewMatches(gw), api.NewStats(gw), api.NewSettings(gw))
	center := toast.New(e.cfg.ToastDuration())

	opts = append([]club.Option{club.WithLogger(e.logger)}, opts...)
	return &session{
		auth:   as,
		login:  api.NewAuth(gw),
		users:  users,
		club:   club.New(svc, center, opts...),
		toasts: center,
	}
}

// printToasts echoes every new toast to the terminal until the returned
// func is called.
func printToasts(center *toast.Center) func() {
	var mu sync.Mutex
	seen := make(map[string]bool)
	return center.Subscribe(func(ts []toast.Toast) {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range ts {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			switch t.Type {
			case toast.TypeSuccess:
				success("%s", t.Message)
			case toast.TypeError:
				fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", t.Message)
			case toast.TypeWarning:
				warn("%s", t.Message)
			default:
				info("%s", t.Message)
			}
		}
	})
}

// remoteError codes a failed service call for the terminal.
func remoteError(err error) error {
	var gerr *gateway.Error
	if stderrors.As(err, &gerr) && gerr.Unauthenticated() {
		return errors.New("K201").Wrap(err)
	}
	return errors.FromError(err, "K200")
}
