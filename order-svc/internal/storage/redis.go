package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"qrmenu/order-svc/internal/domain"
	"qrmenu/order-svc/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DeviceTTL = 30 * 24 * time.Hour
	CartTTL   = 24 * time.Hour
)

type RedisStore struct {
	Client    *redis.Client
	DeviceTTL time.Duration
	CartTTL   time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client, DeviceTTL: DeviceTTL, CartTTL: CartTTL}
}

var (
	_ service.DeviceStore = (*RedisStore)(nil)
	_ service.CartStore   = (*RedisStore)(nil)
)

func DeviceKey(deviceID string) string {
	return "device:" + deviceID
}

func CartKey(deviceID, restaurantID string) string {
	return fmt.Sprintf("cart:%s:%s", deviceID, restaurantID)
}

// DeviceCartsKey names the set of cart keys a device has written.
func DeviceCartsKey(deviceID string) string {
	return "device:" + deviceID + ":carts"
}

func (s *RedisStore) Register(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := s.Client.Set(ctx, DeviceKey(id), time.Now().UTC().Format(time.RFC3339), s.DeviceTTL).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// Touch extends the device's TTL and reports whether it is still registered.
func (s *RedisStore) Touch(ctx context.Context, deviceID string) (bool, error) {
	return s.Client.Expire(ctx, DeviceKey(deviceID), s.DeviceTTL).Result()
}

func (s *RedisStore) Forget(ctx context.Context, deviceID string) error {
	return s.Client.Del(ctx, DeviceKey(deviceID)).Err()
}

func (s *RedisStore) GetCart(ctx context.Context, deviceID, restaurantID string) (*domain.Cart, error) {
	data, err := s.Client.Get(ctx, CartKey(deviceID, restaurantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &cart, nil
}

func (s *RedisStore) PutCart(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	key := CartKey(cart.DeviceID, cart.RestaurantID)
	index := DeviceCartsKey(cart.DeviceID)
	pipe := s.Client.TxPipeline()
	pipe.Set(ctx, key, data, s.CartTTL)
	pipe.SAdd(ctx, index, key)
	pipe.Expire(ctx, index, s.CartTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) DeleteCart(ctx context.Context, deviceID, restaurantID string) error {
	key := CartKey(deviceID, restaurantID)
	pipe := s.Client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, DeviceCartsKey(deviceID), key)
	_, err := pipe.Exec(ctx)
	return err
}

// DeleteDeviceCarts removes the device's carts for every restaurant. Only keys
// recorded in the device's cart index are touched.
func (s *RedisStore) DeleteDeviceCarts(ctx context.Context, deviceID string) error {
	index := DeviceCartsKey(deviceID)
	keys, err := s.Client.SMembers(ctx, index).Result()
	if err != nil {
		return err
	}
	return s.Client.Del(ctx, append(keys, index)...).Err()
}
