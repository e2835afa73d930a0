package service

import (
	"context"
	"fmt"

	"qrmenu/order-svc/internal/domain"
	"qrmenu/pkg/events"

	"go.uber.org/zap"
)

type DeviceService struct {
	devices   DeviceStore
	carts     CartStore
	orders    OrderRepository
	publisher events.Publisher
	log       *zap.SugaredLogger
}

func NewDeviceService(devices DeviceStore, carts CartStore, orders OrderRepository, publisher events.Publisher, log *zap.SugaredLogger) *DeviceService {
	return &DeviceService{devices: devices, carts: carts, orders: orders, publisher: publisher, log: log}
}

func (s *DeviceService) Register(ctx context.Context) (string, error) {
	return s.devices.Register(ctx)
}

// Cleanup forgets a device after checkout: its orders, carts and the id
// itself. The next visit from that browser gets a fresh device id.
func (s *DeviceService) Cleanup(ctx context.Context, deviceID string) (int, error) {
	deleted, err := s.orders.DeleteDeviceOrders(ctx, deviceID)
	if err != nil {
		return 0, fmt.Errorf("delete device orders: %w", err)
	}
	if err := s.carts.DeleteDeviceCarts(ctx, deviceID); err != nil {
		return 0, fmt.Errorf("delete device carts: %w", err)
	}
	if err := s.devices.Forget(ctx, deviceID); err != nil {
		return 0, fmt.Errorf("forget device: %w", err)
	}

	for restaurantID, ids := range byRestaurant(deleted) {
		publish(ctx, s.publisher, s.log, events.Event{
			Type:         events.OrdersCleared,
			RestaurantID: restaurantID,
			DeviceID:     deviceID,
			OrderIDs:     ids,
		})
	}
	return len(deleted), nil
}

func byRestaurant(orders []domain.Order) map[string][]string {
	out := map[string][]string{}
	for _, o := range orders {
		out[o.RestaurantID] = append(out[o.RestaurantID], o.ID)
	}
	return out
}

// publish is best effort: the order change is already committed.
func publish(ctx context.Context, p events.Publisher, log *zap.SugaredLogger, e events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		log.Warnw("failed to publish order event", "type", e.Type, "restaurant_id", e.RestaurantID, "error", err)
	}
}

func snapshot(o *domain.Order) *events.OrderSnapshot {
	items := make([]events.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, events.OrderItem{
			MenuItemID:  it.MenuItemID,
			ItemName:    it.ItemName,
			VariantName: it.VariantName,
			AddonNames:  it.AddonNames,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return &events.OrderSnapshot{
		ID:          o.ID,
		TableNumber: o.TableNumber,
		DeviceID:    o.DeviceID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		Note:        o.Note,
		CreatedAt:   o.CreatedAt,
		Items:       items,
	}
}
