package service

import (
	"context"
	"errors"
	"time"

	"qrmenu/analytics-svc/internal/domain"

	"go.uber.org/zap"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50

	SourceRedis    = "redis"
	SourcePostgres = "postgres"
)

var ErrInvalidLimit = errors.New("limit must be between 1 and 50")

type AnalyticsService struct {
	popularity PopularityReader
	repo       Repository
	log        *zap.SugaredLogger
	now        func() time.Time
}

func NewAnalyticsService(popularity PopularityReader, repo Repository, log *zap.SugaredLogger) *AnalyticsService {
	return &AnalyticsService{popularity: popularity, repo: repo, log: log, now: time.Now}
}

// WithClock replaces the clock used to pick the daily ranking.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// TopItems reads the ranking from Redis and falls back to aggregating order
// history when Redis is unreachable or has nothing for the period.
func (s *AnalyticsService) TopItems(ctx context.Context, restaurantID string, period domain.Period, limit int) (*domain.TopItems, error) {
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return nil, ErrInvalidLimit
	}
	now := s.now()
	result := &domain.TopItems{RestaurantID: restaurantID, Period: period, Source: SourceRedis}

	ranked, err := s.popularity.Top(ctx, restaurantID, period, now, limit)
	if err != nil {
		s.log.Warnw("popularity ranking unavailable, using order history", "restaurant_id", restaurantID, "error", err)
	}
	if len(ranked) > 0 {
		items, err := s.named(ctx, restaurantID, ranked)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			result.Items = items
			return result, nil
		}
	}

	var since *time.Time
	if period == domain.PeriodToday {
		start := domain.StartOfDay(now)
		since = &start
	}
	items, err := s.repo.TopItems(ctx, restaurantID, since, limit)
	if err != nil {
		return nil, err
	}
	result.Source = SourcePostgres
	result.Items = items
	return result, nil
}

// named fills item names in ranking order and drops items no longer on the menu.
func (s *AnalyticsService) named(ctx context.Context, restaurantID string, ranked []domain.ItemStat) ([]domain.ItemStat, error) {
	ids := make([]string, len(ranked))
	for i, stat := range ranked {
		ids[i] = stat.MenuItemID
	}
	names, err := s.repo.ItemNames(ctx, restaurantID, ids)
	if err != nil {
		return nil, err
	}
	items := make([]domain.ItemStat, 0, len(ranked))
	for _, stat := range ranked {
		name, ok := names[stat.MenuItemID]
		if !ok {
			continue
		}
		stat.Name = name
		items = append(items, stat)
	}
	return items, nil
}

func (s *AnalyticsService) StatusSummary(ctx context.Context, restaurantID string) (*domain.StatusSummary, error) {
	counts, err := s.repo.StatusCounts(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	summary := &domain.StatusSummary{RestaurantID: restaurantID, Counts: make(map[string]int, len(domain.Statuses))}
	for _, status := range domain.Statuses {
		summary.Counts[status] = counts[status]
		summary.Total += counts[status]
	}
	return summary, nil
}
