// Package preferences stores the profile and settings of one user.
package preferences

import (
	"context"
	"sync"

	"expensely/internal/kvstore"
	"expensely/internal/theme"
	"expensely/internal/validator"
)

// Preferences are the user-editable settings.
type Preferences struct {
	Name          string           `json:"name" validate:"omitempty,min=2"`
	Email         string           `json:"email" validate:"omitempty,email"`
	Currency      string           `json:"currency" validate:"required,iso4217"`
	Theme         theme.Preference `json:"theme" validate:"required,theme_preference"`
	Notifications bool             `json:"notifications"`
	EmailReports  bool             `json:"emailReports"`
	AutoBackup    bool             `json:"autoBackup"`
}

// Defaults returns the settings of a new user.
func Defaults() Preferences {
	return Preferences{
		Currency:      "USD",
		Theme:         theme.Default,
		Notifications: true,
		EmailReports:  false,
		AutoBackup:    true,
	}
}

// ThemeSync is the part of the theme store preferences depend on. The theme
// store owns the theme; preferences only mirror it.
type ThemeSync interface {
	Preference() theme.Preference
	SetTheme(ctx context.Context, p theme.Preference) error
}

// Store persists Preferences under kvstore.KeyPreferences.
type Store struct {
	mu     sync.Mutex
	kv     *kvstore.Store
	themes ThemeSync
}

// NewStore returns a preferences store bound to kv and the theme store.
func NewStore(kv *kvstore.Store, themes ThemeSync) *Store {
	return &Store{kv: kv, themes: themes}
}

// Load returns the stored preferences, or the defaults when none are
// stored or the stored value is corrupt. Theme always reflects the theme
// store.
func (s *Store) Load(ctx context.Context) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) (Preferences, error) {
	p, err := kvstore.Load(ctx, s.kv, kvstore.KeyPreferences, Defaults())
	if err != nil {
		return Preferences{}, err
	}
	if p.Currency == "" {
		p.Currency = Defaults().Currency
	}
	p.Theme = s.themes.Preference()
	return p, nil
}

// Save validates and persists p, then applies its theme to the theme store.
func (s *Store) Save(ctx context.Context, p Preferences) (Preferences, error) {
	if err := validator.Struct(p); err != nil {
		return Preferences{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.SetJSON(ctx, kvstore.KeyPreferences, p); err != nil {
		return Preferences{}, err
	}
	if p.Theme != s.themes.Preference() {
		if err := s.themes.SetTheme(ctx, p.Theme); err != nil {
			return Preferences{}, err
		}
	}
	return p, nil
}

// Reset discards the stored preferences; the theme store is left alone.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Delete(ctx, kvstore.KeyPreferences)
}
