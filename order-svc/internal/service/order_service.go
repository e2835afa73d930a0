package service

import (
	"context"
	"errors"
	"fmt"

	"qrmenu/order-svc/internal/domain"
	"qrmenu/pkg/events"

	"go.uber.org/zap"
)

type PlaceOrderInput struct {
	RestaurantID string
	DeviceID     string
	TableNumber  *int
	Note         string
	// Items overrides the stored cart when non-empty.
	Items []domain.CartLine
}

type OrderService struct {
	orders    OrderRepository
	devices   DeviceStore
	carts     CartStore
	publisher events.Publisher
	log       *zap.SugaredLogger
}

func NewOrderService(orders OrderRepository, devices DeviceStore, carts CartStore, publisher events.Publisher, log *zap.SugaredLogger) *OrderService {
	return &OrderService{orders: orders, devices: devices, carts: carts, publisher: publisher, log: log}
}

// Place prices the lines against the current menu and stores the order with
// all of its items in one transaction. The cart is cleared only afterwards,
// so a failed placement leaves it intact.
func (s *OrderService) Place(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	if err := checkDevice(ctx, s.devices, in.DeviceID); err != nil {
		return nil, err
	}

	fromCart := len(in.Items) == 0
	cart := domain.NewCart(in.DeviceID, in.RestaurantID)
	if fromCart {
		stored, err := s.carts.GetCart(ctx, in.DeviceID, in.RestaurantID)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			cart = stored
		}
	} else {
		for _, line := range in.Items {
			if _, err := cart.Add(line); err != nil {
				return nil, err
			}
		}
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	catalog, err := s.orders.LoadCatalog(ctx, in.RestaurantID, itemIDs(cart.Lines))
	if err != nil {
		return nil, err
	}
	quote, err := catalog.Price(cart.Lines)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		RestaurantID: in.RestaurantID,
		TableNumber:  in.TableNumber,
		DeviceID:     in.DeviceID,
		Status:       domain.StatusPlaced,
		TotalAmount:  quote.Total,
		Note:         in.Note,
		Items:        quote.OrderItems(),
	}
	if in.TableNumber != nil {
		tableID, err := s.orders.GetTableID(ctx, in.RestaurantID, *in.TableNumber)
		if err != nil {
			return nil, notFound(err, ErrTableNotFound)
		}
		order.TableID = &tableID
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if fromCart {
		if err := s.carts.DeleteCart(ctx, in.DeviceID, in.RestaurantID); err != nil {
			s.log.Warnw("failed to clear cart after order", "order_id", order.ID, "device_id", in.DeviceID, "error", err)
		}
	}
	publish(ctx, s.publisher, s.log, events.Event{
		Type:         events.OrderPlaced,
		RestaurantID: order.RestaurantID,
		TableNumber:  order.TableNumber,
		DeviceID:     order.DeviceID,
		Order:        snapshot(order),
	})
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return order, nil
}

func (s *OrderService) ListForDevice(ctx context.Context, deviceID, restaurantID string) ([]domain.Order, error) {
	if deviceID == "" {
		return nil, ErrUnknownDevice
	}
	return s.orders.ListOrders(ctx, domain.OrderFilter{DeviceID: deviceID, RestaurantID: restaurantID})
}

func (s *OrderService) ListForRestaurant(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx, filter)
}

func (s *OrderService) ByTable(ctx context.Context, restaurantID string) ([]domain.TableGroup, error) {
	orders, err := s.orders.ListOrders(ctx, domain.OrderFilter{RestaurantID: restaurantID})
	if err != nil {
		return nil, err
	}
	return domain.GroupByTable(orders), nil
}

func (s *OrderService) Advance(ctx context.Context, restaurantID, orderID string) (*domain.Order, error) {
	return s.move(ctx, restaurantID, orderID, func(current domain.Status) (domain.Status, error) {
		next, ok := current.Next()
		if !ok {
			return "", fmt.Errorf("%w: order is already %s", domain.ErrInvalidTransition, current)
		}
		return next, nil
	})
}

func (s *OrderService) SetStatus(ctx context.Context, restaurantID, orderID string, status domain.Status) (*domain.Order, error) {
	return s.move(ctx, restaurantID, orderID, func(current domain.Status) (domain.Status, error) {
		return status, domain.Transition(current, status)
	})
}

// move applies a one-step transition with a conditional update, so two staff
// members pressing the button at once cannot skip a status.
func (s *OrderService) move(ctx context.Context, restaurantID, orderID string, target func(domain.Status) (domain.Status, error)) (*domain.Order, error) {
	current, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	if current.RestaurantID != restaurantID {
		return nil, ErrOrderNotFound
	}
	to, err := target(current.Status)
	if err != nil {
		return nil, err
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, current.Status, to)
	if err != nil {
		return nil, notFound(err, ErrStatusConflict)
	}
	publish(ctx, s.publisher, s.log, events.Event{
		Type:         events.OrderStatusChanged,
		RestaurantID: updated.RestaurantID,
		TableNumber:  updated.TableNumber,
		DeviceID:     updated.DeviceID,
		Order:        snapshot(updated),
	})
	return updated, nil
}

func (s *OrderService) DeleteTableOrders(ctx context.Context, restaurantID string, number int) (int, error) {
	if number < 1 {
		return 0, ErrTableNotFound
	}
	ids, err := s.orders.DeleteTableOrders(ctx, restaurantID, number)
	if err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		publish(ctx, s.publisher, s.log, events.Event{
			Type:         events.OrdersCleared,
			RestaurantID: restaurantID,
			TableNumber:  &number,
			OrderIDs:     ids,
		})
	}
	return len(ids), nil
}

// IsClientError reports whether err was caused by the request rather than
// by the service.
func IsClientError(err error) bool {
	for _, target := range []error{
		domain.ErrEmptyCart, domain.ErrInvalidQuantity, domain.ErrLineNotFound,
		domain.ErrUnknownItem, domain.ErrItemUnavailable, domain.ErrUnknownVariant,
		domain.ErrUnknownAddon, domain.ErrAddonSelection, ErrUnknownDevice,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
