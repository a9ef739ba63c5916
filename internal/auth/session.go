package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Session is the authenticated identity carried by a login token. The same
// token yields the same user until logout or expiry.
type Session struct {
	UserID    string
	Username  string
	ExpiresAt time.Time
}

// Sessions is an in-memory registry of login tokens. Tokens are opaque
// 256-bit random values; expiry is enforced on lookup and reaped by Sweep.
type Sessions struct {
	mu  sync.Mutex
	ttl time.Duration
	set map[string]Session
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl: ttl,
		set: make(map[string]Session),
	}
}

func newToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Create establishes a session for the user and returns its token.
func (s *Sessions) Create(userID, username string) string {
	token := newToken()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set[token] = Session{
		UserID:    userID,
		Username:  username,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	return token
}

// Get returns the session for token, or false if the token is unknown or
// expired. Expired sessions are removed on lookup.
func (s *Sessions) Get(token string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.set[token]
	if !ok {
		return Session{}, false
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.set, token)
		return Session{}, false
	}
	return sess, true
}

// Destroy invalidates token unconditionally. Destroying an unknown token is
// a no-op.
func (s *Sessions) Destroy(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.set, token)
}

// Sweep removes expired sessions every interval until ctx is done.
func (s *Sessions) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for token, sess := range s.set {
				if now.After(sess.ExpiresAt) {
					delete(s.set, token)
				}
			}
			s.mu.Unlock()
		}
	}
}
