package toast

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fridaykickers/kickers/pkg/store"
)

// DefaultDuration is how long a toast stays visible unless told otherwise.
const DefaultDuration = 5 * time.Second

// Type represents the toast notification type.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Toast is one visible notification.
type Toast struct {
	ID       string        `json:"id"`
	Type     Type          `json:"type"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Center owns the list of visible toasts.
type Center struct {
	toasts   *store.Store[[]Toast]
	duration time.Duration
	seq      atomic.Uint64

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a Center whose toasts expire after duration.
func New(duration time.Duration) *Center {
	return &Center{
		toasts:   store.New([]Toast{}),
		duration: duration,
		timers:   make(map[string]*time.Timer),
	}
}

// Show adds a toast with the given type and the default duration.
// It returns the toast ID.
func (c *Center) Show(level Type, message string) string {
	return c.ShowFor(level, message, c.duration)
}

// ShowFor adds a toast that expires after d. Zero keeps it until removed.
func (c *Center) ShowFor(level Type, message string, d time.Duration) string {
	id := fmt.Sprintf("%d-%d", time.Now().UnixMilli(), c.seq.Add(1))
	t := Toast{ID: id, Type: level, Message: message, Duration: d}

	c.toasts.Update(func(ts []Toast) []Toast {
		return append(slices.Clone(ts), t)
	})

	if d > 0 {
		c.mu.Lock()
		c.timers[id] = time.AfterFunc(d, func() { c.Remove(id) })
		c.mu.Unlock()
	}
	return id
}

// Success shows a success toast.
func (c *Center) Success(message string) string { return c.Show(TypeSuccess, message) }

// Error shows an error toast.
func (c *Center) Error(message string) string { return c.Show(TypeError, message) }

// Warning shows a warning toast.
func (c *Center) Warning(message string) string { return c.Show(TypeWarning, message) }

// Info shows an info toast.
func (c *Center) Info(message string) string { return c.Show(TypeInfo, message) }

// Remove drops the toast with the given ID. Unknown IDs are ignored.
func (c *Center) Remove(id string) {
	c.mu.Lock()
	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()

	c.toasts.Update(func(ts []Toast) []Toast {
		return slices.DeleteFunc(slices.Clone(ts), func(t Toast) bool { return t.ID == id })
	})
}

// Clear removes every toast.
func (c *Center) Clear() {
	c.mu.Lock()
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()

	c.toasts.Set([]Toast{})
}

// Toasts returns the visible toasts, oldest first.
func (c *Center) Toasts() []Toast {
	return c.toasts.Get()
}

// Subscribe registers fn for every change of the visible list.
func (c *Center) Subscribe(fn func([]Toast)) func() {
	return c.toasts.Subscribe(fn)
}

// Store exposes the read side of the toast list.
func (c *Center) Store() store.Readable[[]Toast] {
	return c.toasts
}
