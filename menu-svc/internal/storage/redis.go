package storage

import (
	"context"
	"errors"
	"time"

	"qrmenu/menu-svc/internal/service"

	"github.com/redis/go-redis/v9"
)

const DraftTTL = 7 * 24 * time.Hour

type RedisDraftStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{Client: client, TTL: ttl}
}

var _ service.DraftStore = (*RedisDraftStore)(nil)

func (s *RedisDraftStore) DraftKey(restaurantID string) string {
	return "draft:" + restaurantID
}

// GetDraft returns nil without an error when nothing is stored.
func (s *RedisDraftStore) GetDraft(ctx context.Context, restaurantID string) ([]byte, error) {
	data, err := s.Client.Get(ctx, s.DraftKey(restaurantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (s *RedisDraftStore) PutDraft(ctx context.Context, restaurantID string, data []byte) error {
	return s.Client.Set(ctx, s.DraftKey(restaurantID), data, s.TTL).Err()
}

func (s *RedisDraftStore) DeleteDraft(ctx context.Context, restaurantID string) error {
	return s.Client.Del(ctx, s.DraftKey(restaurantID)).Err()
}
