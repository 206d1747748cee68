// Package notify holds the transient user-facing messages raised by write
// operations. Each message is removed after its duration unless it is
// sticky or dismissed first.
package notify

import (
	"sync"
	"time"

	"expensely/internal/ids"
)

// Severity classifies a notification.
type Severity string

const (
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
	Info    Severity = "info"
)

// Severities lists the accepted severities.
var Severities = []Severity{Success, Warning, Error, Info}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	for _, v := range Severities {
		if v == s {
			return true
		}
	}
	return false
}

// DefaultDuration is how long a notification stays visible unless overridden.
const DefaultDuration = 3 * time.Second

// Notification is one active message.
type Notification struct {
	ID        string     `json:"id"`
	Message   string     `json:"message"`
	Severity  Severity   `json:"severity"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type showOptions struct {
	severity Severity
	duration time.Duration
}

// Option customises a single Show call.
type Option func(*showOptions)

// WithSeverity sets the severity; unknown values keep the default.
func WithSeverity(s Severity) Option {
	return func(o *showOptions) {
		if s.Valid() {
			o.severity = s
		}
	}
}

// WithDuration sets how long the notification stays; d <= 0 makes it sticky.
func WithDuration(d time.Duration) Option {
	return func(o *showOptions) { o.duration = d }
}

type entry struct {
	n     Notification
	timer *time.Timer
}

// Dispatcher keeps the active notifications of one profile.
type Dispatcher struct {
	mu              sync.Mutex
	entries         []*entry
	defaultDuration time.Duration
	now             func() time.Time
	closed          bool
}

// NewDispatcher returns a dispatcher whose notifications default to d.
// A zero d selects DefaultDuration.
func NewDispatcher(d time.Duration) *Dispatcher {
	if d == 0 {
		d = DefaultDuration
	}
	return &Dispatcher{defaultDuration: d, now: time.Now}
}

// Show adds a notification and schedules its removal.
func (d *Dispatcher) Show(message string, opts ...Option) Notification {
	o := showOptions{severity: Success, duration: d.defaultDuration}
	for _, opt := range opts {
		opt(&o)
	}

	now := d.now()
	n := Notification{
		ID:        ids.New(),
		Message:   message,
		Severity:  o.severity,
		CreatedAt: now,
	}
	if o.duration > 0 {
		exp := now.Add(o.duration)
		n.ExpiresAt = &exp
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return n
	}
	e := &entry{n: n}
	if o.duration > 0 {
		id := n.ID
		e.timer = time.AfterFunc(o.duration, func() { d.Dismiss(id) })
	}
	d.entries = append(d.entries, e)
	return n
}

// Dismiss removes the notification with id and reports whether it was active.
func (d *Dispatcher) Dismiss(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, e := range d.entries {
		if e.n.ID != id {
			continue
		}
		if e.timer != nil {
			e.timer.Stop()
		}
		d.entries = append(d.entries[:i], d.entries[i+1:]...)
		return true
	}
	return false
}

// Active returns the active notifications, oldest first.
func (d *Dispatcher) Active() []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Notification, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e.n)
	}
	return out
}

// Close stops every pending timer and drops all notifications. Later Show
// calls are accepted but not retained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	d.entries = nil
	d.closed = true
}
