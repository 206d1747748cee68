// Package session keeps the local "signed in" flag in step with the remote
// authentication API. The flag is a routing hint only; the server's cookies
// are what actually authorise requests.
package session

import (
	"context"

	"expensely/internal/kvstore"
	"expensely/internal/logger"
)

const flagValue = "1"

// Store owns the session flag of one profile.
type Store struct {
	kv   *kvstore.Store
	auth AuthClient
}

// NewStore returns a session store over kv that authenticates through auth.
func NewStore(kv *kvstore.Store, auth AuthClient) *Store {
	return &Store{kv: kv, auth: auth}
}

// Login authenticates and marks the profile signed in. On failure the flag
// is left as it was.
func (s *Store) Login(ctx context.Context, creds Credentials) (*Info, error) {
	info, err := s.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, kvstore.KeySession, flagValue); err != nil {
		return nil, err
	}
	logger.Named("session").Infow("signed in", "profile", s.kv.Namespace(), "user_id", info.ID)
	return info, nil
}

// Register creates an account. It does not sign in.
func (s *Store) Register(ctx context.Context, r Registration) (*Info, error) {
	return s.auth.Register(ctx, r)
}

// Logout asks the server to drop its session and clears the flag whether or
// not the server was reachable.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		logger.Named("session").Warnw("remote logout failed", "profile", s.kv.Namespace(), "error", err)
	}
	return s.kv.Delete(context.WithoutCancel(ctx), kvstore.KeySession)
}

// IsAuthenticated reports whether the flag is set. It never contacts the
// server.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	v, ok, err := s.kv.Get(ctx, kvstore.KeySession)
	if err != nil {
		logger.Named("session").Warnw("reading session flag failed", "error", err)
		return false
	}
	return ok && v == flagValue
}

// Me returns the signed-in user as the server sees it.
func (s *Store) Me(ctx context.Context) (*Info, error) {
	return s.auth.Me(ctx)
}
