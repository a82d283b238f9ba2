package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store used when no Redis is configured.
// Sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

type memorySession struct {
	accountID int
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memorySession)}
}

func (s *MemoryStore) SaveRefreshSession(ctx context.Context, tokenHash string, accountID int, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[tokenHash] = memorySession{
		accountID: accountID,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) LookupRefreshSession(ctx context.Context, tokenHash string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[tokenHash]
	if !ok {
		return 0, ErrNotFound
	}
	if time.Now().After(sess.expiresAt) {
		delete(s.sessions, tokenHash)
		return 0, ErrNotFound
	}
	return sess.accountID, nil
}

func (s *MemoryStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenHash)
	return nil
}
