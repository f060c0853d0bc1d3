package optimistic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fridaykickers/kickers/pkg/store"
)

const tracerName = "github.com/fridaykickers/kickers/pkg/optimistic"

// Outcome describes how a mutation settled.
type Outcome int

const (
	// Reconciled means the server entity replaced the optimistic one.
	Reconciled Outcome = iota + 1

	// Resynced means the call succeeded without an identifiable entity and
	// the collection was reloaded instead.
	Resynced

	// RolledBack means the call failed and the collection was reloaded.
	RolledBack

	// Superseded means the call succeeded but a newer mutation for the
	// same key had started, so the answer was not applied.
	Superseded
)

func (o Outcome) String() string {
	switch o {
	case Reconciled:
		return "reconciled"
	case Resynced:
		return "resynced"
	case RolledBack:
		return "rolled_back"
	case Superseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// ResyncFunc loads the full authoritative collection and returns the
// transform that installs it into the current value.
type ResyncFunc[V any] func(ctx context.Context) (func(V) V, error)

// Mutation is one local-first change. E is the entity the service returns.
type Mutation[V, E any] struct {
	// Action names the mutation in logs, traces and metrics.
	Action string

	// Key identifies the target entity. Sequencing is per key.
	Key string

	// Patch is the optimistic transform applied before the call.
	// Optional.
	Patch func(V) V

	// Call performs the remote mutation. Required.
	Call func(ctx context.Context) (E, error)

	// Identify reports whether the answer carries a usable entity.
	// A nil Identify treats every answer as identifiable.
	Identify func(E) bool

	// Reconcile writes the server entity into the value. A nil Reconcile
	// resyncs after every success.
	Reconcile func(V, E) V

	// Success builds the notification shown after success. Optional.
	Success func(E) string

	// Failure is the notification shown when the error carries no text.
	Failure string
}

// Coordinator runs mutations against one container.
//
// Patches, reconciles and resyncs update the container while holding the
// coordinator's lock, so subscribers of the container must not call Apply
// or Resync synchronously. Hand the call to a goroutine instead.
type Coordinator[V, E any] struct {
	st     *store.Store[V]
	resync ResyncFunc[V]
	reset  func(V) V
	opts   options

	// mu makes "check sequence, write container" atomic.
	mu     sync.Mutex
	issued map[string]uint64

	gen     atomic.Uint64
	applied uint64 // newest resync generation written, guarded by mu
}

// New creates a Coordinator for st. resync performs full reloads. It panics
// when WithReset was given a transform for another value type.
func New[V, E any](st *store.Store[V], resync ResyncFunc[V], opts ...Option) *Coordinator[V, E] {
	o := options{
		notifier:   nopNotifier{},
		message:    defaultMessage,
		logger:     slog.Default(),
		sequencing: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	var reset func(V) V
	if o.reset != nil {
		fn, ok := o.reset.(func(V) V)
		if !ok {
			panic(fmt.Sprintf("optimistic: WithReset transform is %T, want %T", o.reset, reset))
		}
		reset = fn
	}
	return &Coordinator[V, E]{
		st:     st,
		resync: resync,
		reset:  reset,
		opts:   o,
		issued: make(map[string]uint64),
	}
}

// Store returns the container the coordinator writes to.
func (c *Coordinator[V, E]) Store() *store.Store[V] { return c.st }

// Apply runs m and returns once it has settled. The returned error is a
// *MutationError when the remote call failed; the container is already
// resynchronized and the failure already shown, so callers outside
// compound flows may ignore it.
func (c *Coordinator[V, E]) Apply(ctx context.Context, m Mutation[V, E]) (Outcome, error) {
	start := time.Now()
	ctx, span := c.opts.tracer.Start(ctx, "optimistic.apply",
		trace.WithAttributes(
			attribute.String("mutation.action", m.Action),
			attribute.String("mutation.key", m.Key),
		),
	)
	defer span.End()

	seq, before := c.begin(m)

	entity, err := m.Call(ctx)
	outcome, err := c.settle(ctx, m, seq, before, entity, err)

	span.SetAttributes(attribute.String("mutation.outcome", outcome.String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	c.opts.metrics.RecordMutation(m.Action, outcome.String(), time.Since(start))
	return outcome, err
}

// begin draws a sequence number and applies the optimistic patch. It
// returns the value the patch was applied to.
func (c *Coordinator[V, E]) begin(m Mutation[V, E]) (uint64, V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.issued[m.Key]++
	seq := c.issued[m.Key]
	before := c.st.Get()
	if m.Patch != nil {
		c.st.Update(m.Patch)
	}
	return seq, before
}

func (c *Coordinator[V, E]) settle(ctx context.Context, m Mutation[V, E], seq uint64, before V, entity E, callErr error) (Outcome, error) {
	log := c.opts.logger.With("action", m.Action, "key", m.Key)
	// Settlement runs even when the caller gave up waiting.
	ctx = context.WithoutCancel(ctx)

	if callErr != nil {
		log.Warn("mutation failed, resynchronizing", "error", callErr)
		if err := c.Resync(ctx); err != nil {
			log.Warn("rollback resync failed, discarding optimistic state", "error", err)
			c.discard(m, before)
		}
		c.opts.notifier.Error(c.opts.message(callErr, m.Failure))
		return RolledBack, &MutationError{Action: m.Action, Key: m.Key, Err: callErr}
	}

	outcome := Reconciled
	if m.Reconcile == nil || (m.Identify != nil && !m.Identify(entity)) {
		log.Warn("mutation returned no identifiable entity, resynchronizing")
		if err := c.Resync(ctx); err != nil {
			log.Warn("degraded resync failed", "error", err)
		}
		outcome = Resynced
	} else if !c.reconcile(m, seq, entity) {
		log.Debug("mutation superseded", "seq", seq)
		outcome = Superseded
	}

	if m.Success != nil {
		if msg := m.Success(entity); msg != "" {
			c.opts.notifier.Success(msg)
		}
	}
	return outcome, nil
}

// discard drops the guess of a failed mutation whose rollback resync failed.
// The reset transform wins; otherwise a patched mutation restores the value
// it was applied to, which also drops later writes made in between.
func (c *Coordinator[V, E]) discard(m Mutation[V, E], before V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.reset != nil:
		c.st.Update(c.reset)
	case m.Patch != nil:
		c.st.Set(before)
	}
}

// reconcile writes entity unless a newer mutation for the key exists.
func (c *Coordinator[V, E]) reconcile(m Mutation[V, E], seq uint64, entity E) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.sequencing && seq < c.issued[m.Key] {
		return false
	}
	c.st.Update(func(v V) V { return m.Reconcile(v, entity) })
	return true
}

// Resync reloads the full collection and replaces the container state.
// A result is dropped when a resync that started later was already
// applied, so concurrent calls converge on the newest load.
func (c *Coordinator[V, E]) Resync(ctx context.Context) error {
	gen := c.gen.Add(1)

	install, err := c.resync(ctx)
	c.opts.metrics.RecordResync(err)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen < c.applied {
		c.opts.logger.Debug("discarding outdated resync", "generation", gen, "applied", c.applied)
		return nil
	}
	c.applied = gen
	c.st.Update(install)
	return nil
}
