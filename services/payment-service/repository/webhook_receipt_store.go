package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const receiptKeyPrefix = "payments:webhook:"

// WebhookReceiptStore remembers provider event ids that have already been
// applied so redeliveries can be answered without another write.
type WebhookReceiptStore interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Remember(ctx context.Context, eventID string) error
}

type redisKV interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type redisReceiptStore struct {
	client redisKV
	ttl    time.Duration
}

func NewRedisWebhookReceiptStore(client redisKV, ttl time.Duration) WebhookReceiptStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisReceiptStore{client: client, ttl: ttl}
}

func (s *redisReceiptStore) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, receiptKeyPrefix+eventID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisReceiptStore) Remember(ctx context.Context, eventID string) error {
	return s.client.Set(ctx, receiptKeyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), s.ttl).Err()
}
