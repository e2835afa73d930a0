// Package mocks holds testify mocks for the order-svc stores and the event
// publisher.
package mocks

import (
	"context"

	"qrmenu/order-svc/internal/domain"
	"qrmenu/pkg/events"

	"github.com/stretchr/testify/mock"
)

type OrderRepository struct {
	mock.Mock
}

func (_m *OrderRepository) LoadCatalog(ctx context.Context, restaurantID string, itemIDs []string) (*domain.Catalog, error) {
	ret := _m.Called(ctx, restaurantID, itemIDs)
	var c *domain.Catalog
	if v := ret.Get(0); v != nil {
		c = v.(*domain.Catalog)
	}
	return c, ret.Error(1)
}

func (_m *OrderRepository) GetTableID(ctx context.Context, restaurantID string, number int) (string, error) {
	ret := _m.Called(ctx, restaurantID, number)
	return ret.String(0), ret.Error(1)
}

func (_m *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	ret := _m.Called(ctx, order)
	return ret.Error(0)
}

func (_m *OrderRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ret := _m.Called(ctx, id)
	var o *domain.Order
	if v := ret.Get(0); v != nil {
		o = v.(*domain.Order)
	}
	return o, ret.Error(1)
}

func (_m *OrderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	ret := _m.Called(ctx, filter)
	var orders []domain.Order
	if v := ret.Get(0); v != nil {
		orders = v.([]domain.Order)
	}
	return orders, ret.Error(1)
}

func (_m *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) (*domain.Order, error) {
	ret := _m.Called(ctx, id, from, to)
	var o *domain.Order
	if v := ret.Get(0); v != nil {
		o = v.(*domain.Order)
	}
	return o, ret.Error(1)
}

func (_m *OrderRepository) DeleteTableOrders(ctx context.Context, restaurantID string, number int) ([]string, error) {
	ret := _m.Called(ctx, restaurantID, number)
	var ids []string
	if v := ret.Get(0); v != nil {
		ids = v.([]string)
	}
	return ids, ret.Error(1)
}

func (_m *OrderRepository) DeleteDeviceOrders(ctx context.Context, deviceID string) ([]domain.Order, error) {
	ret := _m.Called(ctx, deviceID)
	var orders []domain.Order
	if v := ret.Get(0); v != nil {
		orders = v.([]domain.Order)
	}
	return orders, ret.Error(1)
}

type DeviceStore struct {
	mock.Mock
}

func (_m *DeviceStore) Register(ctx context.Context) (string, error) {
	ret := _m.Called(ctx)
	return ret.String(0), ret.Error(1)
}

func (_m *DeviceStore) Touch(ctx context.Context, deviceID string) (bool, error) {
	ret := _m.Called(ctx, deviceID)
	return ret.Bool(0), ret.Error(1)
}

func (_m *DeviceStore) Forget(ctx context.Context, deviceID string) error {
	ret := _m.Called(ctx, deviceID)
	return ret.Error(0)
}

type CartStore struct {
	mock.Mock
}

func (_m *CartStore) GetCart(ctx context.Context, deviceID, restaurantID string) (*domain.Cart, error) {
	ret := _m.Called(ctx, deviceID, restaurantID)
	var c *domain.Cart
	if v := ret.Get(0); v != nil {
		c = v.(*domain.Cart)
	}
	return c, ret.Error(1)
}

func (_m *CartStore) PutCart(ctx context.Context, cart *domain.Cart) error {
	ret := _m.Called(ctx, cart)
	return ret.Error(0)
}

func (_m *CartStore) DeleteCart(ctx context.Context, deviceID, restaurantID string) error {
	ret := _m.Called(ctx, deviceID, restaurantID)
	return ret.Error(0)
}

func (_m *CartStore) DeleteDeviceCarts(ctx context.Context, deviceID string) error {
	ret := _m.Called(ctx, deviceID)
	return ret.Error(0)
}

type Publisher struct {
	mock.Mock
}

func (_m *Publisher) Publish(ctx context.Context, e events.Event) error {
	ret := _m.Called(ctx, e)
	return ret.Error(0)
}
