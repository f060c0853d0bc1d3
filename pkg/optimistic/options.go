package optimistic

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/fridaykickers/kickers/pkg/metrics"
)

// Notifier shows transient user-facing messages. *toast.Center satisfies it.
type Notifier interface {
	Success(message string) string
	Error(message string) string
}

type nopNotifier struct{}

func (nopNotifier) Success(string) string { return "" }
func (nopNotifier) Error(string) string   { return "" }

// MessageFunc turns a failed call into the text shown to the user.
type MessageFunc func(err error, fallback string) string

// defaultMessage uses the error text, falling back when it is empty.
func defaultMessage(err error, fallback string) string {
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	notifier   Notifier
	message    MessageFunc
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	sequencing bool
	reset      any // func(V) V, checked by New
}

// WithNotifier sets where success and failure messages go.
// Default: messages are dropped.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithMessage sets how a failed call becomes user-facing text.
func WithMessage(fn MessageFunc) Option {
	return func(o *options) {
		o.message = fn
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records mutation and resync outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithoutSequencing applies every successful settlement, even when a newer
// mutation for the same key started after it.
func WithoutSequencing() Option {
	return func(o *options) {
		o.sequencing = false
	}
}

// WithReset sets the transform installed when a failed mutation cannot be
// rolled back because the resync failed too. It should discard the
// collection, as a failed load does. Without it the value from before the
// optimistic patch is restored. V must match the coordinator's value type.
func WithReset[V any](fn func(V) V) Option {
	return func(o *options) {
		o.reset = fn
	}
}
