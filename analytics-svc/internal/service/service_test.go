package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"qrmenu/analytics-svc/internal/domain"
	"qrmenu/analytics-svc/internal/mocks"
	"qrmenu/analytics-svc/internal/service"
	"qrmenu/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	restID = "6f1c1c52-5d7e-4c53-9a36-1f6f0c1f2a01"
	burger = "a3c4d5e6-1111-4a2b-9c3d-000000000001"
	fries  = "a3c4d5e6-1111-4a2b-9c3d-000000000002"
	gone   = "a3c4d5e6-1111-4a2b-9c3d-000000000003"
)

var (
	ctx = context.Background()
	now = time.Date(2026, 10, 16, 14, 30, 0, 0, time.UTC)
)

func newService() (*service.AnalyticsService, *mocks.PopularityReader, *mocks.Repository) {
	pop := new(mocks.PopularityReader)
	repo := new(mocks.Repository)
	svc := service.NewAnalyticsService(pop, repo, logger.NewNop()).WithClock(func() time.Time { return now })
	return svc, pop, repo
}

func TestTopItems(t *testing.T) {
	midnight := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	fromHistory := []domain.ItemStat{{MenuItemID: fries, Name: "Fries", Quantity: 4}}

	tests := []struct {
		name       string
		period     domain.Period
		limit      int
		setupMocks func(*mocks.PopularityReader, *mocks.Repository)
		wantSource string
		wantItems  []domain.ItemStat
		wantErr    error
	}{
		{
			name:   "ranking from redis with names",
			period: domain.PeriodAll,
			setupMocks: func(p *mocks.PopularityReader, r *mocks.Repository) {
				p.On("Top", ctx, restID, domain.PeriodAll, now, service.DefaultLimit).
					Return([]domain.ItemStat{{MenuItemID: fries, Quantity: 30}, {MenuItemID: gone, Quantity: 20}, {MenuItemID: burger, Quantity: 12}}, nil)
				r.On("ItemNames", ctx, restID, []string{fries, gone, burger}).
					Return(map[string]string{fries: "Fries", burger: "Burger"}, nil)
			},
			wantSource: service.SourceRedis,
			wantItems: []domain.ItemStat{
				{MenuItemID: fries, Name: "Fries", Quantity: 30},
				{MenuItemID: burger, Name: "Burger", Quantity: 12},
			},
		},
		{
			name:   "empty daily ranking falls back to today's orders",
			period: domain.PeriodToday,
			limit:  5,
			setupMocks: func(p *mocks.PopularityReader, r *mocks.Repository) {
				p.On("Top", ctx, restID, domain.PeriodToday, now, 5).Return([]domain.ItemStat{}, nil)
				r.On("TopItems", ctx, restID, &midnight, 5).Return(fromHistory, nil)
			},
			wantSource: service.SourcePostgres,
			wantItems:  fromHistory,
		},
		{
			name:   "redis failure falls back to all orders",
			period: domain.PeriodAll,
			setupMocks: func(p *mocks.PopularityReader, r *mocks.Repository) {
				p.On("Top", ctx, restID, domain.PeriodAll, now, service.DefaultLimit).Return(nil, errors.New("connection refused"))
				r.On("TopItems", ctx, restID, (*time.Time)(nil), service.DefaultLimit).Return(fromHistory, nil)
			},
			wantSource: service.SourcePostgres,
			wantItems:  fromHistory,
		},
		{
			name:   "ranking of deleted items falls back",
			period: domain.PeriodAll,
			setupMocks: func(p *mocks.PopularityReader, r *mocks.Repository) {
				p.On("Top", ctx, restID, domain.PeriodAll, now, service.DefaultLimit).
					Return([]domain.ItemStat{{MenuItemID: gone, Quantity: 1}}, nil)
				r.On("ItemNames", ctx, restID, []string{gone}).Return(map[string]string{}, nil)
				r.On("TopItems", ctx, restID, (*time.Time)(nil), service.DefaultLimit).Return(fromHistory, nil)
			},
			wantSource: service.SourcePostgres,
			wantItems:  fromHistory,
		},
		{
			name:       "limit above maximum",
			period:     domain.PeriodAll,
			limit:      service.MaxLimit + 1,
			setupMocks: func(*mocks.PopularityReader, *mocks.Repository) {},
			wantErr:    service.ErrInvalidLimit,
		},
		{
			name:   "history failure surfaces",
			period: domain.PeriodAll,
			setupMocks: func(p *mocks.PopularityReader, r *mocks.Repository) {
				p.On("Top", mock.Anything, restID, domain.PeriodAll, now, service.DefaultLimit).Return(nil, nil)
				r.On("TopItems", mock.Anything, restID, (*time.Time)(nil), service.DefaultLimit).Return(nil, errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			svc, pop, repo := newService()
			testCase.setupMocks(pop, repo)

			top, err := svc.TopItems(ctx, restID, testCase.period, testCase.limit)
			if testCase.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, testCase.wantErr.Error(), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, restID, top.RestaurantID)
			assert.Equal(t, testCase.period, top.Period)
			assert.Equal(t, testCase.wantSource, top.Source)
			assert.Equal(t, testCase.wantItems, top.Items)
			pop.AssertExpectations(t)
			repo.AssertExpectations(t)
		})
	}
}

func TestStatusSummaryFillsEveryStatus(t *testing.T) {
	svc, _, repo := newService()
	repo.On("StatusCounts", ctx, restID).Return(map[string]int{"placed": 3, "ready": 2}, nil)

	summary, err := svc.StatusSummary(ctx, restID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"placed": 3, "preparing": 0, "ready": 2, "completed": 0}, summary.Counts)
	assert.Equal(t, 5, summary.Total)
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		raw     string
		want    domain.Period
		wantErr bool
	}{
		{"", domain.PeriodAll, false},
		{"all", domain.PeriodAll, false},
		{"today", domain.PeriodToday, false},
		{"week", "", true},
	}
	for _, testCase := range tests {
		got, err := domain.ParsePeriod(testCase.raw)
		if testCase.wantErr {
			assert.ErrorIs(t, err, domain.ErrUnknownPeriod)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, testCase.want, got)
	}
}
