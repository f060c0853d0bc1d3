package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fridaykickers/kickers/pkg/api"
	"github.com/fridaykickers/kickers/pkg/club"
	"github.com/fridaykickers/kickers/pkg/gateway"
)

// server holds what the serve router dispatches to.
type server struct {
	beers  *club.Beers
	users  http.Handler
	toasts http.Handler
	cache  http.Handler
	gather prometheus.Gatherer
	logger *slog.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))

	r.Route("/live", func(r chi.Router) {
		r.Handle("/users", s.users)
		r.Handle("/toasts", s.toasts)
	})

	r.Route("/club/users", func(r chi.Router) {
		r.Get("/", s.listUsers)
		r.Post("/{id}/drink", s.mutate(func(r *http.Request, id string) error {
			return s.beers.DrinkBeer(r.Context(), id)
		}))
		r.Post("/{id}/undo", s.mutate(func(r *http.Request, id string) error {
			return s.beers.UndoDrink(r.Context(), id)
		}))
		r.Post("/{id}/pay", s.mutate(func(r *http.Request, id string) error {
			amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
			if err != nil || amount <= 0 {
				return errBadAmount
			}
			return s.beers.AddPayment(r.Context(), id, amount)
		}))
	})

	r.Handle("/*", s.cache)
	return r
}

type httpError struct {
	status  int
	message string
}

func (e *httpError) Error() string { return e.message }

var errBadAmount = &httpError{status: http.StatusBadRequest, message: "amount must be a positive number"}

func (s *server) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.beers.State().Users)
}

// mutate runs fn for the {id} path parameter and answers with the member's
// row as reconciled into the roster.
func (s *server) mutate(fn func(r *http.Request, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := fn(r, id); err != nil {
			if he, ok := err.(*httpError); ok {
				writeJSON(w, he.status, map[string]string{"message": he.message})
				return
			}
			s.logger.Warn("club mutation failed", "path", r.URL.Path, "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{
				"message": gateway.Message(err, gateway.MsgUnknown),
			})
			return
		}
		for _, u := range s.beers.State().Users {
			if u.ID == id {
				writeJSON(w, http.StatusOK, u)
				return
			}
		}
		writeJSON(w, http.StatusOK, api.User{ID: id})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
