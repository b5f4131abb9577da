package session

import (
	"context"
	"encoding/json"
	"time"

	"aviachat/models"

	"github.com/go-redis/redis/v8"
)

const sessionPrefix = "chat:session:"

// RedisStore keeps sessions in Redis so the wizard survives a process
// restart and can run behind more than one instance.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	data, err := s.client.Get(ctx, sessionPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess models.BookingSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisStore) Put(ctx context.Context, sess *models.BookingSession) error {
	sess.UpdatedAt = time.Now().UTC()
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	// Every write renews the TTL; an idle session expires as a whole.
	return s.client.Set(ctx, sessionPrefix+sess.SessionID, b, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionPrefix+sessionID).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
