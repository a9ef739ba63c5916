// Package auth implements the session-backed gate in front of admin
// operations: password verification on login, an in-memory session registry,
// and unconditional invalidation on logout.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dawntoweb/agency/internal/store"
)

// ErrInvalidCredentials covers both an unknown username and a wrong
// password, so login failures do not reveal which accounts exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	store    store.Store
	sessions *Sessions
}

func NewService(st store.Store, sessions *Sessions) *Service {
	return &Service{store: st, sessions: sessions}
}

// Login verifies username/password against the stored bcrypt hash and, on
// success, establishes a session and returns the user plus its token.
func (s *Service) Login(username, password string) (store.User, string, error) {
	user, err := s.store.GetUserByUsername(username)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return store.User{}, "", fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return store.User{}, "", ErrInvalidCredentials
	}

	token := s.sessions.Create(user.ID, user.Username)
	return user, token, nil
}

// Logout destroys the session for token. Unknown tokens are ignored.
func (s *Service) Logout(token string) {
	s.sessions.Destroy(token)
}

// Session resolves a token to its session, if valid and unexpired.
func (s *Service) Session(token string) (Session, bool) {
	return s.sessions.Get(token)
}

// HashPassword derives the opaque hash stored on a user record. The store
// itself never hashes or verifies passwords.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(b), nil
}
