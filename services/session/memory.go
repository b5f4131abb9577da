package session

import (
	"context"
	"encoding/json"
	"time"

	"aviachat/models"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory with the same TTL
// semantics as the Redis store. Default for single-node deployments and
// for tests. Sessions are stored as JSON so callers never alias the
// stored value.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: gocache.New(ttl, 2*ttl)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*models.BookingSession, error) {
	v, ok := s.cache.Get(sessionID)
	if !ok {
		return nil, ErrNotFound
	}
	var sess models.BookingSession
	if err := json.Unmarshal(v.([]byte), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *MemoryStore) Put(_ context.Context, sess *models.BookingSession) error {
	sess.UpdatedAt = time.Now().UTC()
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	s.cache.SetDefault(sess.SessionID, b)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.cache.Delete(sessionID)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
