package auth

import (
	"sync"
	"time"
)

// Blacklist revokes access tokens on logout. It is process-wide, in-memory
// state and therefore only correct for single-instance deployment; a
// multi-instance setup needs a shared store behind the same interface.
// Entries expire with the token itself, so the map cannot grow past the
// access-token window.
type Blacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time // token -> expiry
}

func NewBlacklist() *Blacklist {
	b := &Blacklist{tokens: make(map[string]time.Time)}
	go b.cleanup()
	return b
}

// Revoke marks a token invalid until its natural expiry.
func (b *Blacklist) Revoke(token string, expiresAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = expiresAt
}

func (b *Blacklist) Revoked(token string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	exp, ok := b.tokens[token]
	return ok && time.Now().Before(exp)
}

func (b *Blacklist) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		b.mu.Lock()
		for t, exp := range b.tokens {
			if now.After(exp) {
				delete(b.tokens, t)
			}
		}
		b.mu.Unlock()
	}
}
