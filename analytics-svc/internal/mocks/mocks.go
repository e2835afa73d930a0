package mocks

import (
	"context"
	"time"

	"qrmenu/analytics-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type PopularityReader struct {
	mock.Mock
}

func (_m *PopularityReader) Top(ctx context.Context, restaurantID string, period domain.Period, at time.Time, limit int) ([]domain.ItemStat, error) {
	ret := _m.Called(ctx, restaurantID, period, at, limit)
	var stats []domain.ItemStat
	if v := ret.Get(0); v != nil {
		stats = v.([]domain.ItemStat)
	}
	return stats, ret.Error(1)
}

type Repository struct {
	mock.Mock
}

func (_m *Repository) ItemNames(ctx context.Context, restaurantID string, ids []string) (map[string]string, error) {
	ret := _m.Called(ctx, restaurantID, ids)
	var names map[string]string
	if v := ret.Get(0); v != nil {
		names = v.(map[string]string)
	}
	return names, ret.Error(1)
}

func (_m *Repository) TopItems(ctx context.Context, restaurantID string, since *time.Time, limit int) ([]domain.ItemStat, error) {
	ret := _m.Called(ctx, restaurantID, since, limit)
	var stats []domain.ItemStat
	if v := ret.Get(0); v != nil {
		stats = v.([]domain.ItemStat)
	}
	return stats, ret.Error(1)
}

func (_m *Repository) StatusCounts(ctx context.Context, restaurantID string) (map[string]int, error) {
	ret := _m.Called(ctx, restaurantID)
	var counts map[string]int
	if v := ret.Get(0); v != nil {
		counts = v.(map[string]int)
	}
	return counts, ret.Error(1)
}
