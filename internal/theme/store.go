package theme

import (
	"context"
	"sync"

	apperrors "expensely/internal/errors"
	"expensely/internal/kvstore"
	"expensely/internal/logger"
)

// Store owns a profile's theme preference. It subscribes to the OS signal
// once at construction and unsubscribes on Close.
type Store struct {
	mu         sync.Mutex
	kv         *kvstore.Store
	doc        Document
	pref       Preference
	systemDark bool
	unsub      func()
}

// NewStore loads the persisted preference (defaulting to light), reads the
// current OS preference and reconciles doc.
func NewStore(ctx context.Context, kv *kvstore.Store, signal Signal, doc Document) (*Store, error) {
	stored, err := kvstore.Load(ctx, kv, kvstore.KeyTheme, Default)
	if err != nil {
		return nil, err
	}
	if !stored.Valid() {
		logger.Named("theme").Warnw("ignoring unknown stored theme",
			"namespace", kv.Namespace(),
			"value", string(stored),
		)
		stored = Default
	}

	s := &Store{
		kv:         kv,
		doc:        doc,
		pref:       stored,
		systemDark: signal.PrefersDark(),
	}
	s.unsub = signal.Subscribe(s.onSystemChange)

	s.mu.Lock()
	s.reconcileLocked()
	s.mu.Unlock()
	return s, nil
}

// Preference returns the persisted preference.
func (s *Store) Preference() Preference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pref
}

// SystemPrefersDark returns the last observed OS preference.
func (s *Store) SystemPrefersDark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.systemDark
}

// EffectiveTheme resolves the preference against the observed OS preference.
func (s *Store) EffectiveTheme() Effective {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Resolve(s.pref, s.systemDark)
}

// SetTheme persists p and reconciles the document.
func (s *Store) SetTheme(ctx context.Context, p Preference) error {
	if !p.Valid() {
		return apperrors.ErrInvalidTheme
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(ctx, p)
}

// ToggleTheme advances light -> dark -> system -> light and returns the new
// preference.
func (s *Store) ToggleTheme(ctx context.Context) (Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.pref.Next()
	if err := s.setLocked(ctx, next); err != nil {
		return s.pref, err
	}
	return next, nil
}

// Close tears down the OS signal subscription.
func (s *Store) Close() {
	if s.unsub != nil {
		s.unsub()
	}
}

func (s *Store) setLocked(ctx context.Context, p Preference) error {
	if err := s.kv.SetJSON(ctx, kvstore.KeyTheme, p); err != nil {
		return err
	}
	s.pref = p
	s.reconcileLocked()
	return nil
}

func (s *Store) onSystemChange(dark bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systemDark = dark
	s.reconcileLocked()
}

// reconcileLocked removes the dark marker, then adds it back only when the
// effective theme is dark, so the marker is never present twice.
func (s *Store) reconcileLocked() {
	s.doc.RemoveClass(DarkClass)
	if Resolve(s.pref, s.systemDark) == EffectiveDark {
		s.doc.AddClass(DarkClass)
	}
}
