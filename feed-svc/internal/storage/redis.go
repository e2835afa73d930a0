package storage

import (
	"context"
	"time"

	"qrmenu/feed-svc/internal/service"
	"qrmenu/pkg/events"
	"qrmenu/pkg/popularity"

	"github.com/redis/go-redis/v9"
)

type PopularityStore struct {
	Client *redis.Client
}

func NewPopularityStore(client *redis.Client) *PopularityStore {
	return &PopularityStore{Client: client}
}

var _ service.PopularityStore = (*PopularityStore)(nil)

// RecordOrder adds each line's quantity to the item's daily and all-time
// scores in one round trip. Lines whose menu item is gone are skipped.
func (s *PopularityStore) RecordOrder(ctx context.Context, restaurantID string, at time.Time, items []events.OrderItem) error {
	dailyKey := popularity.DailyKey(restaurantID, at)
	allTimeKey := popularity.AllTimeKey(restaurantID)

	pipe := s.Client.TxPipeline()
	n := 0
	for _, it := range items {
		if it.MenuItemID == "" || it.Quantity <= 0 {
			continue
		}
		pipe.ZIncrBy(ctx, dailyKey, float64(it.Quantity), it.MenuItemID)
		pipe.ZIncrBy(ctx, allTimeKey, float64(it.Quantity), it.MenuItemID)
		n++
	}
	if n == 0 {
		return nil
	}
	pipe.Expire(ctx, dailyKey, popularity.DailyTTL)
	_, err := pipe.Exec(ctx)
	return err
}
