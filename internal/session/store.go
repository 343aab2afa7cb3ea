package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"persona-tutor/internal/services"
)

// ExpireCallback is called for each session the janitor removes.
type ExpireCallback func(id uuid.UUID)

// Store keeps sessions in memory. Nothing survives a restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore returns a store whose sessions expire after ttl without activity.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *Store) Create() *Session {
	sess := newSession(s.now())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns the session and marks it as active.
func (s *Store) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, &services.NotFoundError{Message: "Session not found or expired"}
	}
	sess.touch(s.now())
	return sess, nil
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartJanitor sweeps idle sessions every interval until ctx is done.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration, onExpire ExpireCallback) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		log.Printf("Session janitor started (interval=%s, ttl=%s)", interval, s.ttl)

		for {
			select {
			case <-ticker.C:
				expired := s.sweep()
				if len(expired) > 0 {
					log.Printf("Session janitor removed %d idle sessions", len(expired))
				}
				if onExpire != nil {
					for _, id := range expired {
						onExpire(id)
					}
				}
			case <-ctx.Done():
				log.Printf("Session janitor stopped: %v", ctx.Err())
				return
			}
		}
	}()
}

// sweep removes sessions idle for longer than the TTL. A session in the middle
// of an interaction is kept until the next sweep.
func (s *Store) sweep() []uuid.UUID {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []uuid.UUID
	for id, sess := range s.sessions {
		if !sess.LastSeen().Before(cutoff) {
			continue
		}
		if !sess.busy.TryLock() {
			continue
		}
		sess.busy.Unlock()
		delete(s.sessions, id)
		expired = append(expired, id)
	}
	return expired
}
