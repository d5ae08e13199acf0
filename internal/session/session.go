// ABOUTME: Session store holding the bearer token and its derived role.
// ABOUTME: Persists the token to a file and decodes claims without verification.

package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the caller's inferred role, used by frontends for control gating.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Claims is the decoded token payload. ExpiresAt is zero when the token
// carries no expiry claim.
type Claims struct {
	Subject   string
	IsAdmin   bool
	ExpiresAt time.Time
}

// Store holds the active bearer token and mirrors it to a token file.
// The zero value is unusable; use New.
type Store struct {
	mu    sync.RWMutex
	path  string
	token string
}

// New creates a session store backed by the token file at path.
// The file is not read until LoadFromDisk is called.
func New(path string) *Store {
	return &Store{path: path}
}

// LoadFromDisk reads a previously persisted token. A missing file means an
// anonymous session and is not an error.
func (s *Store) LoadFromDisk() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading token file: %w", err)
	}

	s.mu.Lock()
	s.token = strings.TrimSpace(string(data))
	s.mu.Unlock()
	return nil
}

// SetToken replaces the active credential and persists it. An empty token
// clears the session, same as Clear.
func (s *Store) SetToken(token string) error {
	if token == "" {
		return s.Clear()
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Clear removes the persisted token and the in-memory credential. Safe to
// call on an already anonymous session.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// Token returns the active token. ok is false for an anonymous session.
func (s *Store) Token() (token string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Role derives the caller's role from the token claims. Any decode failure,
// a missing token, or a falsy is_admin claim all degrade to RoleCustomer;
// Role never returns an error.
func (s *Store) Role() Role {
	claims, ok := s.Claims()
	if !ok || !claims.IsAdmin {
		return RoleCustomer
	}
	return RoleAdmin
}

// Claims decodes the token payload without verifying the signature.
// ok is false when no token is present or the payload cannot be decoded.
func (s *Store) Claims() (Claims, bool) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return Claims{}, false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, false
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, false
	}

	var claims Claims
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if isAdmin, ok := mapClaims["is_admin"].(bool); ok {
		claims.IsAdmin = isAdmin
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, true
}
