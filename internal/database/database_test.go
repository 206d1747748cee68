package database

import (
	"path/filepath"
	"testing"

	"expensely/internal/config"
	"expensely/internal/logger"
	"expensely/internal/models"
)

func init() {
	logger.Init("test")
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(&config.Config{
		DBDriver:   "postgres",
		DBHost:     "db",
		DBPort:     "5433",
		DBUser:     "u",
		DBPassword: "p",
		DBName:     "expensely",
		DBSSLMode:  "require",
	})

	wantDSN := "host=db port=5433 user=u password=p dbname=expensely sslmode=require"
	if got := cfg.DSN(); got != wantDSN {
		t.Errorf("DSN = %q, want %q", got, wantDSN)
	}
	wantURL := "postgres://u:p@db:5433/expensely?sslmode=require"
	if got := cfg.MigrateURL(); got != wantURL {
		t.Errorf("MigrateURL = %q, want %q", got, wantURL)
	}
}

func TestManager_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profile.db")
	m, err := NewManager(SQLiteConfig(path))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	if err := m.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	if err := m.RunMigrations(); err != nil {
		t.Fatalf("second RunMigrations: %v", err)
	}

	entry := models.KVEntry{Namespace: "local", Key: "theme", Value: `"dark"`}
	if err := m.DB().Create(&entry).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	var got models.KVEntry
	if err := m.DB().First(&got, "namespace = ? AND entry_key = ?", "local", "theme").Error; err != nil {
		t.Fatalf("select: %v", err)
	}
	if got.Value != `"dark"` {
		t.Errorf("value = %q", got.Value)
	}
}

func TestNewManager_UnknownDriver(t *testing.T) {
	if _, err := NewManager(&Config{Driver: "mysql"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
