// Package live pushes the value of a store to WebSocket clients.
//
// On connect a client receives the current value, then a message after
// every change. A client that cannot keep up only gets the most recent
// value; intermediate ones are skipped.
//
//	feed := live.New(beers.Store())
//	defer feed.Close()
//	r.Handle("/live/users", feed)
package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fridaykickers/kickers/pkg/metrics"
	"github.com/fridaykickers/kickers/pkg/store"
)

// Message is the JSON frame sent to clients.
type Message[V any] struct {
	Seq   uint64 `json:"seq"`
	Value V      `json:"value"`
}

// Option configures a Feed.
type Option func(*config)

type config struct {
	pingPeriod   time.Duration
	writeTimeout time.Duration
	checkOrigin  func(r *http.Request) bool
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// WithPingPeriod sets how often clients are pinged. A client that does not
// answer within twice the period is dropped. Default: 30s.
func WithPingPeriod(d time.Duration) Option {
	return func(c *config) { c.pingPeriod = d }
}

// WithWriteTimeout bounds each write. Default: 10s.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) { c.writeTimeout = d }
}

// WithCheckOrigin sets the upgrade origin check. Default: same host only.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(c *config) { c.checkOrigin = fn }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMetrics tracks connected clients.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// Feed serves one store to any number of clients.
type Feed[V any] struct {
	source   store.Readable[V]
	config   config
	upgrader websocket.Upgrader
	seq      atomic.Uint64

	mu      sync.RWMutex
	clients map[*client]bool
	closed  bool

	unsubscribe func()
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// offer replaces any undelivered frame with data.
func (c *client) offer(data []byte) {
	for {
		select {
		case c.send <- data:
			return
		default:
		}
		select {
		case <-c.send:
		default:
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// New creates a feed for source and subscribes to it.
func New[V any](source store.Readable[V], opts ...Option) *Feed[V] {
	cfg := config{
		pingPeriod:   30 * time.Second,
		writeTimeout: 10 * time.Second,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	f := &Feed[V]{
		source:  source,
		config:  cfg,
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.checkOrigin,
		},
	}
	f.unsubscribe = source.Subscribe(f.broadcast)
	return f
}

func (f *Feed[V]) encode(v V) []byte {
	data, err := json.Marshal(Message[V]{Seq: f.seq.Load(), Value: v})
	if err != nil {
		f.config.logger.Error("live: encode value", "error", err)
		return nil
	}
	return data
}

// broadcast runs inside the store notification and never blocks.
func (f *Feed[V]) broadcast(v V) {
	f.seq.Add(1)
	data := f.encode(v)
	if data == nil {
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for c := range f.clients {
		c.offer(data)
	}
}

// ServeHTTP upgrades the connection and streams values until the client
// goes away.
func (f *Feed[V]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.config.logger.Debug("live: upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, 1),
		done: make(chan struct{}),
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		conn.Close()
		return
	}
	f.clients[c] = true
	f.mu.Unlock()
	f.config.metrics.LiveClientConnected()

	if data := f.encode(f.source.Get()); data != nil {
		c.offer(data)
	}

	go f.writeLoop(c)
	f.readLoop(c)

	f.mu.Lock()
	delete(f.clients, c)
	f.mu.Unlock()
	f.config.metrics.LiveClientDisconnected()
	c.close()
}

// readLoop discards client frames and keeps the read deadline fresh.
func (f *Feed[V]) readLoop(c *client) {
	wait := 2 * f.config.pingPeriod
	c.conn.SetReadDeadline(time.Now().Add(wait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				f.config.logger.Debug("live: read error", "error", err)
			}
			return
		}
	}
}

func (f *Feed[V]) writeLoop(c *client) {
	ticker := time.NewTicker(f.config.pingPeriod)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(f.config.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(f.config.writeTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// ClientCount returns the number of connected clients.
func (f *Feed[V]) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close unsubscribes from the store and disconnects every client.
func (f *Feed[V]) Close() {
	f.unsubscribe()

	f.mu.Lock()
	f.closed = true
	clients := make([]*client, 0, len(f.clients))
	for c := range f.clients {
		clients = append(clients, c)
	}
	f.mu.Unlock()

	for _, c := range clients {
		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.close()
	}
}
