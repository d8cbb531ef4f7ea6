package session

import (
	"sync"
	"time"
)

// Store keeps conversation sessions keyed by chat id.
type Store interface {
	Get(chatID int64) Session
	Put(chatID int64, s Session)
	Clear(chatID int64)
}

type entry struct {
	session    Session
	lastAccess time.Time
}

// MemoryStore is an in-memory TTL session store. Idle sessions are evicted
// by a janitor goroutine so the map stays bounded.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[int64]entry

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewMemoryStore constructs a store with the given idle lifetime.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[int64]entry),
		stopCh:   make(chan struct{}),
	}
}

// Get returns the chat's session, or a zero session when absent or expired.
func (s *MemoryStore) Get(chatID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[chatID]
	if !ok {
		return Session{}
	}
	if s.now().Sub(e.lastAccess) > s.ttl {
		delete(s.sessions, chatID)
		return Session{}
	}
	e.lastAccess = s.now()
	s.sessions[chatID] = e
	return e.session
}

// Put stores the chat's session and refreshes its lifetime.
func (s *MemoryStore) Put(chatID int64, session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = entry{session: session, lastAccess: s.now()}
}

// Clear removes the chat's session.
func (s *MemoryStore) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

// Len reports the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// StartJanitor launches periodic eviction of expired sessions.
func (s *MemoryStore) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.evictExpired()
			}
		}
	}()
}

// Stop terminates the janitor goroutine.
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *MemoryStore) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	for chatID, e := range s.sessions {
		if e.lastAccess.Before(cutoff) {
			delete(s.sessions, chatID)
		}
	}
}
