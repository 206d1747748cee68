// Package ids generates the opaque identifiers used for transactions,
// budgets, notifications and users.
package ids

import (
	googleuuid "github.com/google/uuid"
)

// New returns a time-ordered UUIDv7 string. Ordering only helps storage
// locality; callers must treat the value as opaque.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Fallback to a random UUIDv4 if the v7 generator fails
		return googleuuid.New().String()
	}
	return id.String()
}

// Parse validates and normalises an identifier.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid identifier.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
