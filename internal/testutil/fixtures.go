package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"expensely/internal/kvstore"
	"expensely/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		FullName: "Test User",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// NewMemoryStore returns a store over a fresh in-memory backend with a
// unique namespace.
func NewMemoryStore(t *testing.T) *kvstore.Store {
	t.Helper()
	return kvstore.New(kvstore.NewMemoryBackend(), fmt.Sprintf("test-%d", nextID()))
}

// SetRaw writes raw text under key, bypassing JSON encoding. Used to plant
// corrupted values.
func SetRaw(t *testing.T, s *kvstore.Store, key, value string) {
	t.Helper()
	if err := s.Set(context.Background(), key, value); err != nil {
		t.Fatalf("failed to set %q: %v", key, err)
	}
}
