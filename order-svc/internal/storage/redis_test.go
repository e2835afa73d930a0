package storage

import (
	"testing"
	"time"

	"qrmenu/order-svc/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestDeviceRegistration(t *testing.T) {
	store, mr := newRedisStore(t)

	id, err := store.Register(ctx)
	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.Equal(t, DeviceTTL, mr.TTL(DeviceKey(id)))

	mr.FastForward(24 * time.Hour)
	ok, err := store.Touch(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, DeviceTTL, mr.TTL(DeviceKey(id)))

	ok, err = store.Touch(ctx, "never-registered")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(DeviceTTL + time.Second)
	ok, err = store.Touch(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCartRoundTripAndExpiry(t *testing.T) {
	store, mr := newRedisStore(t)

	cart, err := store.GetCart(ctx, deviceID, restID)
	require.NoError(t, err)
	assert.Nil(t, cart)

	cart = domain.NewCart(deviceID, restID)
	_, err = cart.Add(domain.CartLine{ItemID: itemID, AddonOptionIDs: []string{optionID}, Quantity: 2})
	require.NoError(t, err)
	require.NoError(t, store.PutCart(ctx, cart))
	assert.Equal(t, CartTTL, mr.TTL(CartKey(deviceID, restID)))

	got, err := store.GetCart(ctx, deviceID, restID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, cart.Lines[0].Key, got.Lines[0].Key)
	assert.Equal(t, 2, got.Lines[0].Quantity)

	mr.FastForward(CartTTL + time.Second)
	got, err = store.GetCart(ctx, deviceID, restID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestForgetDeviceDropsEverything(t *testing.T) {
	store, mr := newRedisStore(t)
	otherDevice := "d1e2f3a4-0000-4000-8000-000000000002"

	id, err := store.Register(ctx)
	require.NoError(t, err)
	for _, rid := range []string{restID, "rest-2"} {
		require.NoError(t, store.PutCart(ctx, domain.NewCart(id, rid)))
	}
	require.NoError(t, store.PutCart(ctx, domain.NewCart(otherDevice, restID)))

	require.NoError(t, store.DeleteDeviceCarts(ctx, id))
	require.NoError(t, store.Forget(ctx, id))

	assert.False(t, mr.Exists(CartKey(id, restID)))
	assert.False(t, mr.Exists(CartKey(id, "rest-2")))
	assert.False(t, mr.Exists(DeviceKey(id)))
	assert.False(t, mr.Exists(DeviceCartsKey(id)))
	assert.True(t, mr.Exists(CartKey(otherDevice, restID)))

	require.NoError(t, store.DeleteDeviceCarts(ctx, "nobody"))
}

func TestDeleteDeviceCartsIgnoresGlobPatterns(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, store.PutCart(ctx, domain.NewCart(deviceID, restID)))

	for _, id := range []string{"*", "?*", "[a-z]*", deviceID[:8] + "*"} {
		require.NoError(t, store.DeleteDeviceCarts(ctx, id))
	}
	assert.True(t, mr.Exists(CartKey(deviceID, restID)))
}

func TestDeleteCart(t *testing.T) {
	store, mr := newRedisStore(t)

	require.NoError(t, store.PutCart(ctx, domain.NewCart(deviceID, restID)))
	require.NoError(t, store.DeleteCart(ctx, deviceID, restID))
	assert.False(t, mr.Exists(CartKey(deviceID, restID)))
	assert.False(t, mr.Exists(DeviceCartsKey(deviceID)))
}
