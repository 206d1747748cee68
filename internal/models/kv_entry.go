package models

import "time"

// KVEntry is one cell of the keyed storage medium. Namespace scopes the
// cell to a single profile; the pair (Namespace, Key) is unique.
type KVEntry struct {
	Namespace string    `gorm:"primaryKey;size:64;column:namespace"`
	Key       string    `gorm:"primaryKey;size:128;column:entry_key"`
	Value     string    `gorm:"type:text;not null;column:entry_value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName pins the table name shared with the SQL migrations.
func (KVEntry) TableName() string { return "kv_entries" }

// All lists every model managed by AutoMigrate.
func All() []interface{} {
	return []interface{}{&User{}, &KVEntry{}, &AuditLog{}}
}
