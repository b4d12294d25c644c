package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Rrens/nl2sql/internal/domain"
	"github.com/Rrens/nl2sql/internal/observability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSessionNotFound is returned for unknown or expired correction sessions
var ErrSessionNotFound = errors.New("correction session not found")

type storedSession struct {
	// mu serialises calls on the session
	mu       sync.Mutex
	session  *CorrectionSession
	lastUsed time.Time
}

// CorrectionStore keeps correction sessions between requests and expires idle ones
type CorrectionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*storedSession
	ttl      time.Duration
	now      func() time.Time
}

// NewCorrectionStore creates a new session store; ttl <= 0 keeps sessions until deleted
func NewCorrectionStore(ttl time.Duration) *CorrectionStore {
	return &CorrectionStore{
		sessions: make(map[uuid.UUID]*storedSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Add stores a session
func (s *CorrectionStore) Add(session *CorrectionSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = &storedSession{session: session, lastUsed: s.now()}
	observability.SetActiveCorrectionSessions(len(s.sessions))
}

func (s *CorrectionStore) lookup(id uuid.UUID) (*storedSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.expired(entry) {
		delete(s.sessions, id)
		observability.SetActiveCorrectionSessions(len(s.sessions))
		return nil, ErrSessionNotFound
	}
	entry.lastUsed = s.now()
	return entry, nil
}

func (s *CorrectionStore) expired(entry *storedSession) bool {
	return s.ttl > 0 && s.now().Sub(entry.lastUsed) > s.ttl
}

// Do runs fn with exclusive access to the session
func (s *CorrectionStore) Do(id uuid.UUID, fn func(*CorrectionSession) error) error {
	entry, err := s.lookup(id)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

// Info returns a snapshot of a session
func (s *CorrectionStore) Info(id uuid.UUID) (domain.CorrectionSessionInfo, error) {
	var info domain.CorrectionSessionInfo
	err := s.Do(id, func(cs *CorrectionSession) error {
		info = cs.Info()
		return nil
	})
	return info, err
}

// Delete removes a session
func (s *CorrectionStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	observability.SetActiveCorrectionSessions(len(s.sessions))
	return nil
}

// Len returns the number of stored sessions
func (s *CorrectionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed
func (s *CorrectionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.sessions {
		if s.expired(entry) {
			delete(s.sessions, id)
			removed++
		}
	}
	observability.SetActiveCorrectionSessions(len(s.sessions))
	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is done
func (s *CorrectionStore) RunJanitor(ctx context.Context, interval time.Duration, logger zerolog.Logger) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Info().Int("removed", n).Msg("expired correction sessions removed")
			}
		}
	}
}
