package storage

import (
	"context"
	"testing"
	"time"

	"qrmenu/pkg/events"
	"qrmenu/pkg/popularity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOrder(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewPopularityStore(client)
	ctx := context.Background()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	items := []events.OrderItem{
		{MenuItemID: "tea", Quantity: 2},
		{MenuItemID: "cake", Quantity: 1},
		{MenuItemID: "", ItemName: "deleted", Quantity: 5},
	}
	require.NoError(t, store.RecordOrder(ctx, "r1", at, items))
	require.NoError(t, store.RecordOrder(ctx, "r1", at, items[:1]))

	daily := popularity.DailyKey("r1", at)
	score, err := mr.ZScore(daily, "tea")
	require.NoError(t, err)
	assert.Equal(t, 4.0, score)

	score, err = mr.ZScore(popularity.AllTimeKey("r1"), "cake")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	members, err := mr.ZMembers(daily)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tea", "cake"}, members)
	assert.Equal(t, popularity.DailyTTL, mr.TTL(daily))
	assert.Equal(t, time.Duration(0), mr.TTL(popularity.AllTimeKey("r1")))
}

func TestRecordOrderWithoutItemsWritesNothing(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewPopularityStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	require.NoError(t, store.RecordOrder(context.Background(), "r1", time.Now(), nil))
	assert.Empty(t, mr.Keys())
}
