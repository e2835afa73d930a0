package service

import (
	"context"

	"qrmenu/order-svc/internal/domain"
)

// OrderRepository returns sql.ErrNoRows for missing rows and for
// conditional updates that matched nothing.
type OrderRepository interface {
	LoadCatalog(ctx context.Context, restaurantID string, itemIDs []string) (*domain.Catalog, error)
	GetTableID(ctx context.Context, restaurantID string, number int) (string, error)
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.Status) (*domain.Order, error)
	DeleteTableOrders(ctx context.Context, restaurantID string, number int) ([]string, error)
	DeleteDeviceOrders(ctx context.Context, deviceID string) ([]domain.Order, error)
}

type DeviceStore interface {
	Register(ctx context.Context) (string, error)
	Touch(ctx context.Context, deviceID string) (bool, error)
	Forget(ctx context.Context, deviceID string) error
}

// CartStore returns a nil cart without an error when none is stored.
type CartStore interface {
	GetCart(ctx context.Context, deviceID, restaurantID string) (*domain.Cart, error)
	PutCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, deviceID, restaurantID string) error
	DeleteDeviceCarts(ctx context.Context, deviceID string) error
}

type DeviceServiceInterface interface {
	Register(ctx context.Context) (string, error)
	Cleanup(ctx context.Context, deviceID string) (int, error)
}

type CartServiceInterface interface {
	Get(ctx context.Context, deviceID, restaurantID string) (*CartView, error)
	AddLine(ctx context.Context, deviceID, restaurantID string, line domain.CartLine) (*CartView, error)
	SetQuantity(ctx context.Context, deviceID, restaurantID, key string, qty int) (*CartView, error)
	Clear(ctx context.Context, deviceID, restaurantID string) error
}

type OrderServiceInterface interface {
	Place(ctx context.Context, in PlaceOrderInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListForDevice(ctx context.Context, deviceID, restaurantID string) ([]domain.Order, error)
	ListForRestaurant(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	ByTable(ctx context.Context, restaurantID string) ([]domain.TableGroup, error)
	Advance(ctx context.Context, restaurantID, orderID string) (*domain.Order, error)
	SetStatus(ctx context.Context, restaurantID, orderID string, status domain.Status) (*domain.Order, error)
	DeleteTableOrders(ctx context.Context, restaurantID string, number int) (int, error)
}

var (
	_ DeviceServiceInterface = (*DeviceService)(nil)
	_ CartServiceInterface   = (*CartService)(nil)
	_ OrderServiceInterface  = (*OrderService)(nil)
)
