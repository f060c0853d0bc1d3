package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	kerrors "github.com/fridaykickers/kickers/internal/errors"
	"github.com/fridaykickers/kickers/pkg/club"
	"github.com/fridaykickers/kickers/pkg/live"
	"github.com/fridaykickers/kickers/pkg/metrics"
	"github.com/fridaykickers/kickers/pkg/offline"
)

func serveCmd(e *env) *cobra.Command {
	var (
		listen  string
		refresh time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the offline caching proxy",
		Long: `Run the offline caching proxy in front of the web client build.

Static assets listed in offline.manifest are pre-cached under the
generation offline.cache_prefix + offline.version and served
stale-while-revalidate. Requests under offline.api_prefix always go to
the network. Until the cache is installed, requests are proxied to
offline.origin.

Endpoints:
  /healthz             liveness
  /metrics             Prometheus metrics
  /live/users          WebSocket feed of the roster
  /live/toasts         WebSocket feed of notifications
  /club/users          roster as JSON
  /club/users/{id}/... POST drink, undo, pay?amount=

Examples:
  kickers serve
  kickers serve --listen :9090 --refresh 30s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				e.cfg.Offline.Listen = listen
			}
			return e.runServe(cmd.Context(), refresh)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default from kickers.toml)")
	cmd.Flags().DurationVar(&refresh, "refresh", time.Minute, "Roster reload interval, 0 to disable")

	return cmd
}

func (e *env) runServe(ctx context.Context, refresh time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := e.cfg
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(metrics.WithRegistry(registry))

	storage, closeStorage, err := e.openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage()

	var manifest []string
	if cfg.Offline.Manifest != "" {
		manifest, err = offline.LoadManifest(cfg.Offline.Manifest)
		if err != nil {
			return kerrors.New("K302").WithDetail(cfg.Offline.Manifest).Wrap(err)
		}
	}

	origin, err := url.Parse(cfg.Offline.Origin)
	if err != nil {
		return kerrors.New("K102").WithDetail("offline.origin").Wrap(err)
	}
	scope := offline.NewScope(httputil.NewSingleHostReverseProxy(origin), e.logger)

	s := e.newSession(club.WithMetrics(m))
	users := live.New(s.club.Beers.Store(), live.WithLogger(e.logger), live.WithMetrics(m))
	defer users.Close()
	toasts := live.New(s.toasts.Store(), live.WithLogger(e.logger), live.WithMetrics(m))
	defer toasts.Close()

	srv := &http.Server{
		Addr: cfg.Offline.Listen,
		Handler: (&server{
			beers:  s.club.Beers,
			users:  users,
			toasts: toasts,
			cache:  scope,
			gather: registry,
			logger: e.logger,
		}).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Offline.Version != "" {
		w, err := offline.NewWorker(storage, cfg.Offline.Version, manifest,
			offline.WithOrigin(cfg.Offline.Origin),
			offline.WithCachePrefix(cfg.Offline.CachePrefix),
			offline.WithAPIPrefix(cfg.Offline.APIPrefix),
			offline.WithWorkerLogger(e.logger),
			offline.WithWorkerMetrics(m),
		)
		if err != nil {
			return kerrors.New("K301").Wrap(err)
		}
		go func() {
			if err := scope.Register(ctx, w); err != nil {
				e.logger.Error("cache install failed, proxying to origin", "version", w.Version(), "error", err)
			}
		}()
	} else {
		warn("offline.version is empty; proxying to origin without caching")
	}

	go e.refreshRoster(ctx, s.club.Beers, refresh)

	errc := make(chan error, 1)
	go func() {
		info("Listening on %s", cfg.Offline.Listen)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.logger.Warn("shutdown", "error", err)
	}
	if w := scope.Controller(); w != nil {
		w.Flush()
	}
	success("Stopped")
	return nil
}

// refreshRoster loads the roster now and then every interval until ctx ends.
func (e *env) refreshRoster(ctx context.Context, beers *club.Beers, interval time.Duration) {
	if err := beers.Load(ctx); err != nil {
		e.logger.Warn("initial roster load failed", "error", err)
	}
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := beers.Load(ctx); err != nil {
				e.logger.Debug("roster reload failed", "error", err)
			}
		}
	}
}
