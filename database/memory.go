package database

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"clinic-assistant/models"
)

const memorySweepInterval = time.Minute

// MemoryStore keeps sessions in process memory. Values are copied in and
// out so callers never share state with the store.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]models.ConversationSession
	messages  map[string][]models.Message
	now       func() time.Time
	lastSweep time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock replaces the wall clock used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]models.ConversationSession),
		messages: make(map[string][]models.Message),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) GetSession(ctx context.Context, sessionID string) (*models.ConversationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok || expired(session, s.now()) {
		return nil, ErrSessionNotFound
	}
	out := session.Clone()
	return &out, nil
}

func (s *MemoryStore) SaveSession(ctx context.Context, session *models.ConversationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	s.sessions[session.SessionID] = session.Clone()
	return nil
}

// DeleteSession removes a session and its messages. Messages are removed
// even when the session itself is already gone.
func (s *MemoryStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, sessionID)
	session, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	if expired(session, s.now()) {
		return ErrSessionNotFound
	}
	return nil
}

func (s *MemoryStore) SaveMessage(ctx context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	stored := *message
	stored.Entities = message.Entities.Clone()
	stored.Suggestions = append([]string(nil), message.Suggestions...)
	s.messages[message.SessionID] = append(s.messages[message.SessionID], stored)
	return nil
}

func (s *MemoryStore) GetMessages(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.messages[sessionID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]models.Message, 0, len(all))
	for _, m := range all {
		m.Entities = m.Entities.Clone()
		m.Suggestions = append([]string(nil), m.Suggestions...)
		out = append(out, m)
	}
	return out, nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// sweepLocked drops expired sessions and their messages, at most once per
// sweep interval. s.mu must be held for writing.
func (s *MemoryStore) sweepLocked() {
	now := s.now()
	if now.Sub(s.lastSweep) < memorySweepInterval {
		return
	}
	s.lastSweep = now

	for id, session := range s.sessions {
		if expired(session, now) {
			delete(s.sessions, id)
			delete(s.messages, id)
		}
	}
}

func expired(session models.ConversationSession, now time.Time) bool {
	return !session.ExpiresAt.IsZero() && now.After(session.ExpiresAt)
}
