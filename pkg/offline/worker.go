package offline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fridaykickers/kickers/pkg/metrics"
)

const tracerName = "github.com/fridaykickers/kickers/pkg/offline"

// Defaults.
const (
	DefaultCachePrefix = "friday-kickers-"
	DefaultAPIPrefix   = "/v1/"
	DefaultParallelism = 8
)

// Response sources, as reported in the X-Cache header and metrics.
const (
	sourceCache   = "cache"
	sourceNetwork = "network"
	sourceBypass  = "bypass"
)

// State is a worker lifecycle state.
type State int

const (
	Parsed State = iota
	Installing
	Installed
	Activating
	Activated
	Redundant
)

func (s State) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case Installing:
		return "installing"
	case Installed:
		return "installed"
	case Activating:
		return "activating"
	case Activated:
		return "activated"
	case Redundant:
		return "redundant"
	default:
		return "unknown"
	}
}

// InstallError reports the resource that failed an install.
type InstallError struct {
	Version  string
	Resource string
	Err      error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("offline: install %s: %s: %v", e.Version, e.Resource, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// WorkerOption configures a Worker.
type WorkerOption func(*workerConfig)

type workerConfig struct {
	origin      string
	network     Doer
	cachePrefix string
	apiPrefix   string
	parallelism int
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// WithOrigin sets the base URL resources are fetched from.
func WithOrigin(origin string) WorkerOption {
	return func(c *workerConfig) { c.origin = origin }
}

// WithNetwork sets the HTTP executor. Default: a client with a 30s timeout.
func WithNetwork(d Doer) WorkerOption {
	return func(c *workerConfig) { c.network = d }
}

// WithCachePrefix sets the generation name prefix.
// Default: DefaultCachePrefix.
func WithCachePrefix(prefix string) WorkerOption {
	return func(c *workerConfig) { c.cachePrefix = prefix }
}

// WithAPIPrefix sets the path marker of API traffic, which is never cached.
// Default: DefaultAPIPrefix.
func WithAPIPrefix(prefix string) WorkerOption {
	return func(c *workerConfig) { c.apiPrefix = prefix }
}

// WithParallelism bounds concurrent fetches during install.
func WithParallelism(n int) WorkerOption {
	return func(c *workerConfig) { c.parallelism = n }
}

// WithWorkerLogger sets the logger. Default: slog.Default().
func WithWorkerLogger(l *slog.Logger) WorkerOption {
	return func(c *workerConfig) { c.logger = l }
}

// WithWorkerMetrics records fetch sources, refreshes and installs.
func WithWorkerMetrics(m *metrics.Metrics) WorkerOption {
	return func(c *workerConfig) { c.metrics = m }
}

// Worker serves one cache generation.
type Worker struct {
	storage  Storage
	version  string
	name     string
	manifest []string
	origin   *url.URL
	config   workerConfig
	tracer   trace.Tracer

	mu     sync.RWMutex
	state  State
	bucket Bucket

	background sync.WaitGroup
}

// NewWorker creates a worker for version that pre-caches manifest.
func NewWorker(storage Storage, version string, manifest []string, opts ...WorkerOption) (*Worker, error) {
	config := workerConfig{
		network:     &http.Client{Timeout: 30 * time.Second},
		cachePrefix: DefaultCachePrefix,
		apiPrefix:   DefaultAPIPrefix,
		parallelism: DefaultParallelism,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if version == "" {
		return nil, fmt.Errorf("offline: empty version")
	}
	origin, err := url.Parse(config.origin)
	if err != nil {
		return nil, fmt.Errorf("offline: origin: %w", err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("offline: origin %q is not an absolute URL", config.origin)
	}
	if config.parallelism < 1 {
		config.parallelism = 1
	}

	return &Worker{
		storage:  storage,
		version:  version,
		name:     config.cachePrefix + version,
		manifest: append([]string(nil), manifest...),
		origin:   origin,
		config:   config,
		tracer:   otel.Tracer(tracerName),
		state:    Parsed,
	}, nil
}

// Version returns the deployed version the worker serves.
func (w *Worker) Version() string { return w.version }

// Name returns the generation name.
func (w *Worker) Name() string { return w.name }

// State returns the lifecycle state.
func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Worker) transition(from, to State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != from {
		return fmt.Errorf("%w: %s, want %s", ErrState, w.state, from)
	}
	w.state = to
	return nil
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Install fetches every manifest resource and stores them as one
// generation. Any failure leaves the worker Redundant and returns an
// *InstallError; nothing is stored in that case.
func (w *Worker) Install(ctx context.Context) (err error) {
	if err := w.transition(Parsed, Installing); err != nil {
		return err
	}

	ctx, span := w.tracer.Start(ctx, "offline.install",
		trace.WithAttributes(
			attribute.String("offline.version", w.version),
			attribute.Int("offline.resources", len(w.manifest)),
		),
	)
	defer func() {
		w.config.metrics.RecordInstall(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	existed, err := w.hasGeneration(ctx)
	if err != nil {
		w.setState(Redundant)
		return &InstallError{Version: w.version, Resource: w.name, Err: err}
	}
	bucket, err := w.storage.Open(ctx, w.name)
	if err != nil {
		w.setState(Redundant)
		return &InstallError{Version: w.version, Resource: w.name, Err: err}
	}

	entries, err := w.fetchAll(ctx)
	if err == nil {
		err = bucket.PutAll(ctx, entries)
		if err != nil {
			err = &InstallError{Version: w.version, Resource: w.name, Err: err}
		}
	}
	if err != nil {
		if !existed {
			if dropErr := w.storage.Drop(context.WithoutCancel(ctx), w.name); dropErr != nil {
				w.config.logger.Warn("drop failed generation", "name", w.name, "error", dropErr)
			}
		}
		w.setState(Redundant)
		w.config.logger.Warn("cache install failed", "version", w.version, "error", err)
		return err
	}

	w.mu.Lock()
	w.bucket = bucket
	w.state = Installed
	w.mu.Unlock()

	w.config.logger.Info("cache installed", "version", w.version, "resources", len(entries))
	return nil
}

func (w *Worker) hasGeneration(ctx context.Context) (bool, error) {
	names, err := w.storage.Names(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == w.name {
			return true, nil
		}
	}
	return false, nil
}

// fetchAll downloads the manifest concurrently. The first failure cancels
// the rest.
func (w *Worker) fetchAll(ctx context.Context) (map[string]*Entry, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.parallelism)

	results := make([]*Entry, len(w.manifest))
	for i, resource := range w.manifest {
		g.Go(func() error {
			e, err := w.fetchEntry(gctx, resource, nil)
			if err == nil && !e.Cacheable() {
				err = fmt.Errorf("unexpected status %d", e.Status)
			}
			if err != nil {
				return &InstallError{Version: w.version, Resource: resource, Err: err}
			}
			results[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make(map[string]*Entry, len(results))
	for i, resource := range w.manifest {
		entries[resource] = results[i]
	}
	return entries, nil
}

// Activate deletes every other generation and marks the worker Activated.
func (w *Worker) Activate(ctx context.Context) (err error) {
	if err := w.transition(Installed, Activating); err != nil {
		return err
	}

	ctx, span := w.tracer.Start(ctx, "offline.activate",
		trace.WithAttributes(attribute.String("offline.version", w.version)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			w.setState(Installed)
		}
		span.End()
	}()

	names, err := w.storage.Names(ctx)
	if err != nil {
		return fmt.Errorf("offline: activate %s: %w", w.version, err)
	}
	dropped := 0
	for _, name := range names {
		if name == w.name {
			continue
		}
		if err := w.storage.Drop(ctx, name); err != nil {
			return fmt.Errorf("offline: activate %s: drop %s: %w", w.version, name, err)
		}
		dropped++
	}
	w.config.metrics.RecordDropped(dropped)

	w.setState(Activated)
	w.config.logger.Info("cache activated", "version", w.version, "dropped", dropped)
	return nil
}

// retire marks a replaced worker Redundant.
func (w *Worker) retire() {
	w.setState(Redundant)
}

// Flush waits for background refreshes started by Fetch.
func (w *Worker) Flush() {
	w.background.Wait()
}

type fetched struct {
	entry *Entry
	err   error
}

// Fetch answers req. GET requests outside the API prefix are served
// stale-while-revalidate: the cache lookup and the network fetch run
// concurrently, a cached entry is returned as soon as it is found, and a
// 2xx network answer replaces the entry in the background, even after
// Fetch returned. Without a cached entry the network answer is returned.
// Everything else passes through untouched.
func (w *Worker) Fetch(ctx context.Context, req *http.Request) (*http.Response, error) {
	w.mu.RLock()
	bucket := w.bucket
	w.mu.RUnlock()

	if req.Method != http.MethodGet || w.isAPI(req.URL) || bucket == nil {
		w.config.metrics.RecordFetch(sourceBypass)
		return w.passthrough(ctx, req)
	}

	key := requestKey(req.URL)

	cached := make(chan *Entry, 1)
	go func() {
		e, ok, err := bucket.Match(ctx, key)
		if err != nil {
			w.config.logger.Debug("cache lookup failed", "key", key, "error", err)
		}
		if !ok {
			e = nil
		}
		cached <- e
	}()

	network := make(chan fetched, 1)
	w.background.Add(1)
	go func() {
		defer w.background.Done()
		bg := context.WithoutCancel(ctx)
		e, err := w.fetchEntry(bg, key, req.Header)
		network <- fetched{entry: e, err: err}
		w.revalidate(bg, bucket, key, e, err)
	}()

	var (
		netResult *fetched
		cacheDone bool
	)
	for {
		select {
		case e := <-cached:
			cached, cacheDone = nil, true
			if e != nil {
				w.config.metrics.RecordFetch(sourceCache)
				return respond(e, req, "HIT"), nil
			}
			if netResult != nil {
				return w.fromNetwork(req, *netResult)
			}
		case r := <-network:
			network, netResult = nil, &r
			if r.err == nil && r.entry.OK() {
				return w.fromNetwork(req, r)
			}
			if cacheDone {
				return w.fromNetwork(req, r)
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (w *Worker) fromNetwork(req *http.Request, r fetched) (*http.Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	w.config.metrics.RecordFetch(sourceNetwork)
	return respond(r.entry, req, "MISS"), nil
}

func respond(e *Entry, req *http.Request, cacheStatus string) *http.Response {
	resp := e.Response(req)
	resp.Header.Set("X-Cache", cacheStatus)
	return resp
}

// revalidate stores a fresh network answer. Failures are swallowed; the
// next request for key tries again.
func (w *Worker) revalidate(ctx context.Context, bucket Bucket, key string, e *Entry, err error) {
	switch {
	case err != nil:
		w.config.logger.Debug("revalidation failed", "key", key, "error", err)
		w.config.metrics.RecordRevalidation("failed")
	case !e.Cacheable():
		w.config.metrics.RecordRevalidation("skipped")
	default:
		if err := bucket.Put(ctx, key, e); err != nil {
			w.config.logger.Debug("cache write failed", "key", key, "error", err)
			w.config.metrics.RecordRevalidation("failed")
			return
		}
		w.config.metrics.RecordRevalidation("stored")
	}
}

func (w *Worker) isAPI(u *url.URL) bool {
	return w.config.apiPrefix != "" && strings.Contains(u.RequestURI(), w.config.apiPrefix)
}

// requestKey identifies a cached request by path and query.
func requestKey(u *url.URL) string {
	return u.RequestURI()
}

func (w *Worker) outbound(ctx context.Context, method, uri string, header http.Header, body io.Reader) (*http.Request, error) {
	target, err := w.origin.Parse(uri)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}
	if header != nil {
		req.Header = header.Clone()
		for _, h := range hopHeaders {
			req.Header.Del(h)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, nil
}

func (w *Worker) fetchEntry(ctx context.Context, uri string, header http.Header) (*Entry, error) {
	req, err := w.outbound(ctx, http.MethodGet, uri, header, nil)
	if err != nil {
		return nil, err
	}
	resp, err := w.config.network.Do(req)
	if err != nil {
		return nil, err
	}
	return readEntry(resp, w.config.now())
}

func (w *Worker) passthrough(ctx context.Context, req *http.Request) (*http.Response, error) {
	var body io.Reader
	if req.Body != nil && req.Body != http.NoBody {
		body = req.Body
	}
	out, err := w.outbound(ctx, req.Method, req.URL.RequestURI(), req.Header, body)
	if err != nil {
		return nil, err
	}
	out.ContentLength = req.ContentLength
	return w.config.network.Do(out)
}

// ServeHTTP adapts Fetch to net/http.
func (w *Worker) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	resp, err := w.Fetch(req.Context(), req)
	if err != nil {
		w.config.logger.Debug("fetch failed", "path", req.URL.Path, "error", err)
		http.Error(rw, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	writeResponse(rw, resp)
}

func writeResponse(rw http.ResponseWriter, resp *http.Response) {
	defer resp.Body.Close()
	header := rw.Header()
	for k, v := range resp.Header {
		if isHop(k) {
			continue
		}
		header[k] = v
	}
	rw.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(rw, resp.Body)
}

func isHop(name string) bool {
	for _, h := range hopHeaders {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}
