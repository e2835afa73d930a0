package service

import (
	"context"
	"time"

	"qrmenu/analytics-svc/internal/domain"
	"qrmenu/analytics-svc/internal/storage"
)

type PopularityReader interface {
	Top(ctx context.Context, restaurantID string, period domain.Period, at time.Time, limit int) ([]domain.ItemStat, error)
}

type Repository interface {
	ItemNames(ctx context.Context, restaurantID string, ids []string) (map[string]string, error)
	TopItems(ctx context.Context, restaurantID string, since *time.Time, limit int) ([]domain.ItemStat, error)
	StatusCounts(ctx context.Context, restaurantID string) (map[string]int, error)
}

type AnalyticsInterface interface {
	TopItems(ctx context.Context, restaurantID string, period domain.Period, limit int) (*domain.TopItems, error)
	StatusSummary(ctx context.Context, restaurantID string) (*domain.StatusSummary, error)
}

var (
	_ PopularityReader   = (*storage.PopularityReader)(nil)
	_ Repository         = (*storage.PostgresRepository)(nil)
	_ AnalyticsInterface = (*AnalyticsService)(nil)
)
