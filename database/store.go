package database

import (
	"context"
	"errors"

	"clinic-assistant/models"
)

// ErrSessionNotFound is returned when no session exists for an ID.
var ErrSessionNotFound = errors.New("session not found")

// Store persists conversation sessions and the turns exchanged in them.
type Store interface {
	GetSession(ctx context.Context, sessionID string) (*models.ConversationSession, error)
	SaveSession(ctx context.Context, session *models.ConversationSession) error
	// DeleteSession removes a session and all of its messages. Leftover
	// messages are cleared even when it reports ErrSessionNotFound.
	DeleteSession(ctx context.Context, sessionID string) error

	SaveMessage(ctx context.Context, message *models.Message) error
	// GetMessages returns up to limit of the most recent messages of a
	// session, oldest first. limit <= 0 means no limit.
	GetMessages(ctx context.Context, sessionID string, limit int) ([]models.Message, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
