// Package service contains application services for credentials and conversations.
package service

import (
	"context"
	"slices"

	"github.com/and161185/privchat/internal/errs"
	"github.com/and161185/privchat/internal/model"
	"github.com/and161185/privchat/internal/storage"
)

// Credentials maps usernames to password scalars and maintains the global
// directory of registered usernames. Passwords are stored as opaque values;
// any hardening is the store's responsibility.
type Credentials struct {
	store *storage.Adapter
}

// NewCredentials constructs the credential service.
func NewCredentials(store *storage.Adapter) *Credentials {
	return &Credentials{store: store}
}

// Signup registers a new username. The auth record and the directory entry
// are written sequentially with no transaction; two racing signups for the
// same unclaimed name can both pass the existence check, in which case the
// directory append deduplicates and one password write silently wins.
func (s *Credentials) Signup(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errs.ErrValidation
	}
	if s.store.ReadValue(ctx, model.AuthKey(username), true) != nil {
		return errs.ErrAlreadyExists
	}
	s.store.WriteValue(ctx, model.AuthKey(username), password, true)

	users := storage.Decode(s.store.ReadValue(ctx, model.AllUsersKey, true), []string{})
	if !slices.Contains(users, username) {
		users = append(users, username)
		s.store.WriteValue(ctx, model.AllUsersKey, storage.Encode(users), true)
	}
	return nil
}

// Login verifies the stored password by plain equality. A missing account
// and a wrong password produce the same error so callers cannot enumerate
// users.
func (s *Credentials) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errs.ErrValidation
	}
	v := s.store.ReadValue(ctx, model.AuthKey(username), true)
	stored, ok := asString(v)
	if !ok || stored != password {
		return errs.ErrInvalidCredentials
	}
	return nil
}

// AllUsers returns the directory of registered usernames, empty when the
// directory record is absent or unreadable.
func (s *Credentials) AllUsers(ctx context.Context) []string {
	return storage.Decode(s.store.ReadValue(ctx, model.AllUsersKey, true), []string{})
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	default:
		return "", false
	}
}
