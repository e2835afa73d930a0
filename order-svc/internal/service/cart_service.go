package service

import (
	"context"

	"qrmenu/order-svc/internal/domain"
)

// CartView is a cart priced against the current menu. Lines that no longer
// resolve (item hidden, option removed) are listed under Invalid and left
// out of the total so the diner can fix them.
type CartView struct {
	DeviceID     string              `json:"device_id"`
	RestaurantID string              `json:"restaurant_id"`
	Lines        []domain.PricedLine `json:"lines"`
	Invalid      []InvalidLine       `json:"invalid_lines,omitempty"`
	Total        float64             `json:"total"`
}

type InvalidLine struct {
	domain.CartLine
	Reason string `json:"reason"`
}

type CartService struct {
	devices DeviceStore
	carts   CartStore
	orders  OrderRepository
}

func NewCartService(devices DeviceStore, carts CartStore, orders OrderRepository) *CartService {
	return &CartService{devices: devices, carts: carts, orders: orders}
}

func (s *CartService) load(ctx context.Context, deviceID, restaurantID string) (*domain.Cart, error) {
	if err := checkDevice(ctx, s.devices, deviceID); err != nil {
		return nil, err
	}
	cart, err := s.carts.GetCart(ctx, deviceID, restaurantID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = domain.NewCart(deviceID, restaurantID)
	}
	return cart, nil
}

func (s *CartService) Get(ctx context.Context, deviceID, restaurantID string) (*CartView, error) {
	cart, err := s.load(ctx, deviceID, restaurantID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// AddLine rejects selections the menu cannot price before storing them.
func (s *CartService) AddLine(ctx context.Context, deviceID, restaurantID string, line domain.CartLine) (*CartView, error) {
	cart, err := s.load(ctx, deviceID, restaurantID)
	if err != nil {
		return nil, err
	}
	added, err := cart.Add(line)
	if err != nil {
		return nil, err
	}
	catalog, err := s.orders.LoadCatalog(ctx, restaurantID, []string{added.ItemID})
	if err != nil {
		return nil, err
	}
	if _, err := catalog.Price([]domain.CartLine{added}); err != nil {
		return nil, err
	}
	if err := s.carts.PutCart(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *CartService) SetQuantity(ctx context.Context, deviceID, restaurantID, key string, qty int) (*CartView, error) {
	cart, err := s.load(ctx, deviceID, restaurantID)
	if err != nil {
		return nil, err
	}
	if err := cart.SetQuantity(key, qty); err != nil {
		return nil, err
	}
	if err := s.carts.PutCart(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *CartService) Clear(ctx context.Context, deviceID, restaurantID string) error {
	if err := checkDevice(ctx, s.devices, deviceID); err != nil {
		return err
	}
	return s.carts.DeleteCart(ctx, deviceID, restaurantID)
}

func (s *CartService) view(ctx context.Context, cart *domain.Cart) (*CartView, error) {
	v := &CartView{DeviceID: cart.DeviceID, RestaurantID: cart.RestaurantID, Lines: []domain.PricedLine{}}
	if cart.IsEmpty() {
		return v, nil
	}
	catalog, err := s.orders.LoadCatalog(ctx, cart.RestaurantID, itemIDs(cart.Lines))
	if err != nil {
		return nil, err
	}
	for _, line := range cart.Lines {
		q, err := catalog.Price([]domain.CartLine{line})
		if err != nil {
			v.Invalid = append(v.Invalid, InvalidLine{CartLine: line, Reason: err.Error()})
			continue
		}
		v.Lines = append(v.Lines, q.Lines[0])
		v.Total += q.Total
	}
	v.Total = domain.Round2(v.Total)
	return v, nil
}

func checkDevice(ctx context.Context, devices DeviceStore, deviceID string) error {
	if deviceID == "" {
		return ErrUnknownDevice
	}
	ok, err := devices.Touch(ctx, deviceID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownDevice
	}
	return nil
}

func itemIDs(lines []domain.CartLine) []string {
	seen := map[string]struct{}{}
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ItemID]; ok {
			continue
		}
		seen[l.ItemID] = struct{}{}
		ids = append(ids, l.ItemID)
	}
	return ids
}
