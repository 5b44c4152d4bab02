// Package connect holds shared pieces of the OAuth connection flows: the
// pending-handshake store used by OAuth1 providers and the redirect channel
// that reports handshake outcomes back to the frontend.
package connect

import (
	"sync"
	"time"
)

// Handshake is a pending OAuth1 request-token record. The request-token
// secret must be re-presented at the callback step but is not safely
// transmittable through the redirect, so it is parked here in between.
type Handshake struct {
	Secret    string
	UserID    string
	CreatedAt time.Time
}

// HandshakeStore parks pending handshakes keyed by request token.
// Take must be an atomic remove-and-return: a handshake is consumed at most
// once even when callbacks race.
type HandshakeStore interface {
	Put(token string, h Handshake)
	Take(token string) (Handshake, bool)
}

// DefaultHandshakeTTL bounds how long an abandoned handshake is kept.
const DefaultHandshakeTTL = 15 * time.Minute

// MemoryHandshakeStore is a mutex-guarded in-process HandshakeStore.
// Expired entries are swept lazily on Put so abandoned logins cannot grow
// the map without bound.
type MemoryHandshakeStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[string]Handshake
}

// NewMemoryHandshakeStore creates a store with the given TTL.
// A non-positive TTL falls back to DefaultHandshakeTTL.
func NewMemoryHandshakeStore(ttl time.Duration) *MemoryHandshakeStore {
	if ttl <= 0 {
		ttl = DefaultHandshakeTTL
	}
	return &MemoryHandshakeStore{
		ttl:     ttl,
		pending: make(map[string]Handshake),
	}
}

// Put stores a pending handshake, replacing any previous entry for the token.
func (s *MemoryHandshakeStore) Put(token string, h Handshake) {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.pending[token] = h
}

// Take removes and returns the handshake for token. The second return is
// false for unknown, already-consumed, or expired tokens.
func (s *MemoryHandshakeStore) Take(token string) (Handshake, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.pending[token]
	if !ok {
		return Handshake{}, false
	}
	delete(s.pending, token)
	if time.Since(h.CreatedAt) > s.ttl {
		return Handshake{}, false
	}
	return h, true
}

// Len reports the number of pending handshakes, expired ones included.
func (s *MemoryHandshakeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *MemoryHandshakeStore) sweepLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for token, h := range s.pending {
		if h.CreatedAt.Before(cutoff) {
			delete(s.pending, token)
		}
	}
}
