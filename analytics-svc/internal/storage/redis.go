package storage

import (
	"context"
	"time"

	"qrmenu/analytics-svc/internal/domain"
	"qrmenu/pkg/popularity"

	"github.com/redis/go-redis/v9"
)

type PopularityReader struct {
	Client *redis.Client
}

func NewPopularityReader(client *redis.Client) *PopularityReader {
	return &PopularityReader{Client: client}
}

// Top returns the highest ranked item ids with their ordered quantity. Names
// are left empty for the caller to fill in.
func (p *PopularityReader) Top(ctx context.Context, restaurantID string, period domain.Period, at time.Time, limit int) ([]domain.ItemStat, error) {
	key := popularity.AllTimeKey(restaurantID)
	if period == domain.PeriodToday {
		key = popularity.DailyKey(restaurantID, at)
	}
	members, err := p.Client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	stats := make([]domain.ItemStat, 0, len(members))
	for _, m := range members {
		id, ok := m.Member.(string)
		if !ok || id == "" {
			continue
		}
		stats = append(stats, domain.ItemStat{MenuItemID: id, Quantity: int64(m.Score)})
	}
	return stats, nil
}
