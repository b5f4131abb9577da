package session

import (
	"context"
	"errors"
	"time"

	"aviachat/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session does not exist or its TTL has
// expired. Expiry is how a browsing session dies; there is no durable copy.
var ErrNotFound = errors.New("booking session not found or expired")

// Store keeps one BookingSession per widget session, TTL-bound.
type Store interface {
	Get(ctx context.Context, sessionID string) (*models.BookingSession, error)
	Put(ctx context.Context, s *models.BookingSession) error
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

// New creates a fresh session at the search stage with a new session ID
// and all collections cleared.
func New() *models.BookingSession {
	now := time.Now().UTC()
	return &models.BookingSession{
		SessionID: "web-" + uuid.New().String(),
		Stage:     models.StageSearch,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
