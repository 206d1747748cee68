package transactions

import (
	"context"
	"sync"
	"time"

	apperrors "expensely/internal/errors"
	"expensely/internal/ids"
	"expensely/internal/kvstore"
	"expensely/internal/logger"
)

// Latency is the simulated delay applied before each operation.
type Latency struct {
	Fetch  time.Duration
	Create time.Duration
	Update time.Duration
	Delete time.Duration
}

// DemoLatency mimics a remote API.
func DemoLatency() Latency {
	return Latency{
		Fetch:  300 * time.Millisecond,
		Create: 200 * time.Millisecond,
		Update: 200 * time.Millisecond,
		Delete: 150 * time.Millisecond,
	}
}

// NoLatency disables the simulated delay.
func NoLatency() Latency { return Latency{} }

// LatencyProfile maps a configuration name to a Latency.
func LatencyProfile(name string) Latency {
	if name == "none" {
		return NoLatency()
	}
	return DemoLatency()
}

// Ack acknowledges a delete.
type Ack struct {
	ID string `json:"id"`
}

// Option configures a Repository.
type Option func(*Repository)

// WithLatency overrides the simulated latency.
func WithLatency(l Latency) Option {
	return func(r *Repository) { r.latency = l }
}

// WithClock overrides the time source used by SeedIfEmpty.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// Repository persists a profile's transactions as one JSON array under
// kvstore.KeyTransactions. The mutex serialises read-modify-write cycles
// within this process.
type Repository struct {
	mu      sync.Mutex
	kv      *kvstore.Store
	latency Latency
	now     func() time.Time
}

// NewRepository returns a repository over kv with demo latency.
func NewRepository(kv *kvstore.Store, opts ...Option) *Repository {
	r := &Repository{
		kv:      kv,
		latency: DemoLatency(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FetchAll returns the collection in insertion order. A context that is
// already done, or is cancelled while the simulated delay runs, yields
// ErrCancelled instead of data.
func (r *Repository) FetchAll(ctx context.Context) ([]Record, error) {
	if ctx.Err() != nil {
		return nil, apperrors.Wrap(apperrors.ErrCancelled, ctx.Err())
	}
	if err := pause(ctx, r.latency.Fetch); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCancelled, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(ctx)
}

// Get returns a single record.
func (r *Repository) Get(ctx context.Context, id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.loadLocked(ctx)
	if err != nil {
		return Record{}, err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return Record{}, apperrors.ErrTransactionNotFound
	}
	return list[idx], nil
}

// Create appends a record with a fresh identifier and returns it.
func (r *Repository) Create(ctx context.Context, f Fields) (Record, error) {
	if err := f.Validate(); err != nil {
		return Record{}, err
	}
	ctx = context.WithoutCancel(ctx)
	_ = pause(ctx, r.latency.Create)

	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.loadLocked(ctx)
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		ID:         ids.New(),
		Amount:     f.Amount,
		Category:   f.Category,
		Date:       f.Date,
		Notes:      f.Notes,
		ReceiptURL: f.ReceiptURL,
	}
	list = append(list, rec)
	if err := r.saveLocked(ctx, list); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Update merges p over the record with the given id. A missing id is
// ErrTransactionNotFound and leaves the collection untouched.
func (r *Repository) Update(ctx context.Context, id string, p Patch) (Record, error) {
	if err := p.Validate(); err != nil {
		return Record{}, err
	}
	ctx = context.WithoutCancel(ctx)
	_ = pause(ctx, r.latency.Update)

	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.loadLocked(ctx)
	if err != nil {
		return Record{}, err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return Record{}, apperrors.ErrTransactionNotFound
	}
	list[idx] = p.Apply(list[idx])
	if err := r.saveLocked(ctx, list); err != nil {
		return Record{}, err
	}
	return list[idx], nil
}

// Delete removes the record with the given id. Deleting an absent id
// succeeds.
func (r *Repository) Delete(ctx context.Context, id string) (Ack, error) {
	ctx = context.WithoutCancel(ctx)
	_ = pause(ctx, r.latency.Delete)

	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.loadLocked(ctx)
	if err != nil {
		return Ack{}, err
	}
	next := list[:0]
	for _, rec := range list {
		if rec.ID != id {
			next = append(next, rec)
		}
	}
	if err := r.saveLocked(ctx, next); err != nil {
		return Ack{}, err
	}
	return Ack{ID: id}, nil
}

// SeedIfEmpty stores the demo records when the collection is empty and
// reports whether it did.
func (r *Repository) SeedIfEmpty(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.loadLocked(ctx)
	if err != nil {
		return false, err
	}
	if len(list) > 0 {
		return false, nil
	}
	if err := r.saveLocked(ctx, DemoRecords(r.now())); err != nil {
		return false, err
	}
	logger.Named("transactions").Infow("seeded demo transactions", "namespace", r.kv.Namespace())
	return true, nil
}

func (r *Repository) loadLocked(ctx context.Context) ([]Record, error) {
	list, err := kvstore.Load[[]Record](ctx, r.kv, kvstore.KeyTransactions, nil)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Record{}
	}
	return list, nil
}

func (r *Repository) saveLocked(ctx context.Context, list []Record) error {
	return r.kv.SetJSON(ctx, kvstore.KeyTransactions, list)
}

func indexOf(list []Record, id string) int {
	for i, rec := range list {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// pause waits for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
