package session

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-process store used when no Redis
// address is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context, s Session) error {
	if s.ID == "" {
		return fmt.Errorf("session: missing session id")
	}
	m.put(s)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !m.now().Before(s.ExpiresAt) {
		_ = m.Delete(ctx, sessionID)
		return nil, nil
	}

	s.Values = maps.Clone(s.Values)
	if s.Values == nil {
		s.Values = map[string]string{}
	}
	return &s, nil
}

func (m *MemoryStore) Update(ctx context.Context, s Session) error {
	if s.ID == "" {
		return fmt.Errorf("session: missing session id")
	}
	if !m.now().Before(s.ExpiresAt) {
		return m.Delete(ctx, s.ID)
	}
	m.put(s)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) put(s Session) {
	s.Values = maps.Clone(s.Values)
	s.isNew = false
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
}
