// Package profile binds the per-user stores together. A Profile owns one
// namespace of the keyed store and every component that reads or writes
// it; the Registry builds profiles lazily and shares them between requests.
package profile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"expensely/internal/budgets"
	"expensely/internal/kvstore"
	"expensely/internal/logger"
	"expensely/internal/notify"
	"expensely/internal/preferences"
	"expensely/internal/theme"
	"expensely/internal/transactions"
)

// Config holds the settings applied to every profile.
type Config struct {
	Latency         transactions.Latency
	NotificationTTL time.Duration
	SeedDemoData    bool
	SystemDark      bool
	// IdleTimeout is how long a Registry keeps an unused profile open.
	IdleTimeout time.Duration
}

// Profile is the state of one user.
type Profile struct {
	ID            string
	KV            *kvstore.Store
	Transactions  *transactions.Repository
	Signal        *theme.ManualSignal
	Document      *theme.ClassList
	Theme         *theme.Store
	Preferences   *preferences.Store
	Budgets       *budgets.Service
	Notifications *notify.Dispatcher
}

// Open builds the profile stored under namespace id of backend.
func Open(ctx context.Context, backend kvstore.Backend, id string, cfg Config) (*Profile, error) {
	kv := kvstore.New(backend, id)
	signal := theme.NewManualSignal(cfg.SystemDark)
	doc := theme.NewClassList()

	themes, err := theme.NewStore(ctx, kv, signal, doc)
	if err != nil {
		return nil, err
	}

	repo := transactions.NewRepository(kv, transactions.WithLatency(cfg.Latency))
	if cfg.SeedDemoData {
		if _, err := repo.SeedIfEmpty(ctx); err != nil {
			themes.Close()
			return nil, err
		}
	}

	return &Profile{
		ID:            id,
		KV:            kv,
		Transactions:  repo,
		Signal:        signal,
		Document:      doc,
		Theme:         themes,
		Preferences:   preferences.NewStore(kv, themes),
		Budgets:       budgets.NewService(kv, repo),
		Notifications: notify.NewDispatcher(cfg.NotificationTTL),
	}, nil
}

// Close releases the theme subscription and pending notification timers.
func (p *Profile) Close() {
	p.Theme.Close()
	p.Notifications.Close()
}

// Registry hands out one Profile per user id. Profiles unused for longer
// than Config.IdleTimeout are closed by Sweep and reopened on next use.
type Registry struct {
	mu       sync.Mutex
	backend  kvstore.Backend
	cfg      Config
	profiles map[string]*entry
	opening  singleflight.Group
	now      func() time.Time
}

type entry struct {
	p        *Profile
	lastUsed time.Time
}

// NewRegistry returns a registry whose profiles live in backend.
func NewRegistry(backend kvstore.Backend, cfg Config) *Registry {
	return &Registry{backend: backend, cfg: cfg, profiles: make(map[string]*entry), now: time.Now}
}

// Get returns the profile of id, building it on first use. Building runs
// outside the registry lock; concurrent first requests for one id share a
// single build.
func (r *Registry) Get(ctx context.Context, id string) (*Profile, error) {
	if p, ok := r.lookup(id); ok {
		return p, nil
	}

	v, err, _ := r.opening.Do(id, func() (interface{}, error) {
		if p, ok := r.lookup(id); ok {
			return p, nil
		}
		p, err := Open(context.WithoutCancel(ctx), r.backend, id, r.cfg)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.profiles[id] = &entry{p: p, lastUsed: r.now()}
		r.mu.Unlock()
		logger.Named("profile").Debugw("profile opened", "profile", id)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Profile), nil
}

func (r *Registry) lookup(id string) (*Profile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.profiles[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.p, true
}

// Sweep closes profiles idle for longer than the configured timeout and
// reports how many it closed. A zero timeout keeps every profile.
func (r *Registry) Sweep() int {
	if r.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.cfg.IdleTimeout)

	var idle []*Profile
	r.mu.Lock()
	for id, e := range r.profiles {
		if e.lastUsed.Before(cutoff) {
			idle = append(idle, e.p)
			delete(r.profiles, id)
		}
	}
	r.mu.Unlock()

	for _, p := range idle {
		p.Close()
	}
	if len(idle) > 0 {
		logger.Named("profile").Debugw("idle profiles closed", "count", len(idle))
	}
	return len(idle)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Len reports how many profiles are open.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles)
}

// Close closes every open profile.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.profiles {
		e.p.Close()
		delete(r.profiles, id)
	}
}
