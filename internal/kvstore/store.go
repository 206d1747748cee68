package kvstore

import (
	"context"
	"encoding/json"

	apperrors "expensely/internal/errors"
	"expensely/internal/logger"
)

// Well-known keys.
const (
	KeySession      = "auth_session"
	KeyTheme        = "theme"
	KeyTransactions = "et_transactions_v1"
	KeyPreferences  = "userPreferences"
	KeyBudgets      = "et_budgets_v1"
)

// Store is a Backend bound to one namespace.
type Store struct {
	backend   Backend
	namespace string
}

// New binds backend to namespace.
func New(backend Backend, namespace string) *Store {
	return &Store{backend: backend, namespace: namespace}
}

// Namespace returns the profile namespace of the store.
func (s *Store) Namespace() string { return s.namespace }

// Get returns the raw stored text for key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	return s.backend.Get(ctx, s.namespace, key)
}

// Set stores raw text under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.backend.Set(ctx, s.namespace, key, value)
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, s.namespace, key)
}

// GetJSON decodes the value under key into dst. It reports false when the
// key is absent or the stored text does not parse; a parse failure is
// logged and otherwise swallowed so corrupted state never reaches callers.
func (s *Store) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		logger.Named("kvstore").Warnw("discarding unparsable stored value",
			"code", apperrors.ErrStorageCorrupt.Code,
			"namespace", s.namespace,
			"key", key,
			"error", err,
		)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func (s *Store) SetJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.Set(ctx, key, string(data))
}

// Load returns the value under key, or def when it is absent or corrupt.
func Load[T any](ctx context.Context, s *Store, key string, def T) (T, error) {
	var v T
	ok, err := s.GetJSON(ctx, key, &v)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}
