// Package kvstore is the keyed persistent store every other component sits
// on: a flat namespace of string keys to string values, one namespace per
// profile, with JSON helpers that fail soft on corrupted values.
package kvstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "expensely/internal/errors"
	"expensely/internal/models"
)

// Backend is the storage medium. Implementations must be safe for
// concurrent use; they give no isolation across keys.
type Backend interface {
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
}

// MemoryBackend keeps every cell in process memory.
type MemoryBackend struct {
	mu    sync.RWMutex
	cells map[string]map[string]string
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{cells: make(map[string]map[string]string)}
}

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, namespace, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.cells[namespace][key]
	return v, ok, nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(_ context.Context, namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.cells[namespace]
	if !ok {
		ns = make(map[string]string)
		m.cells[namespace] = ns
	}
	ns[key] = value
	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cells[namespace], key)
	return nil
}

// GormBackend stores cells in the kv_entries table through gorm, so the
// same code runs on postgres in production and sqlite in the CLI and tests.
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend wraps an opened gorm handle.
func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

// Get implements Backend.
func (g *GormBackend) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	var entry models.KVEntry
	err := g.db.WithContext(ctx).
		Where("namespace = ? AND entry_key = ?", namespace, key).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entry.Value, true, nil
}

// Set implements Backend as an upsert on (namespace, entry_key).
func (g *GormBackend) Set(ctx context.Context, namespace, key, value string) error {
	entry := models.KVEntry{
		Namespace: namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Delete implements Backend. Deleting an absent key is not an error.
func (g *GormBackend) Delete(ctx context.Context, namespace, key string) error {
	err := g.db.WithContext(ctx).
		Where("namespace = ? AND entry_key = ?", namespace, key).
		Delete(&models.KVEntry{}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
