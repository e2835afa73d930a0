package domain

import (
	"math"
	"time"
)

type Order struct {
	ID           string      `json:"id"`
	RestaurantID string      `json:"restaurant_id"`
	TableID      *string     `json:"table_id,omitempty"`
	TableNumber  *int        `json:"table_number,omitempty"`
	DeviceID     string      `json:"device_id"`
	Status       Status      `json:"status"`
	TotalAmount  float64     `json:"total_amount"`
	Note         string      `json:"note"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Items        []OrderItem `json:"items"`
}

// OrderItem is a copy of the menu line at order time. MenuItemID becomes
// empty once the menu item is deleted.
type OrderItem struct {
	ID          string   `json:"id"`
	OrderID     string   `json:"order_id"`
	MenuItemID  string   `json:"menu_item_id,omitempty"`
	ItemName    string   `json:"item_name"`
	VariantName string   `json:"variant_name,omitempty"`
	AddonNames  []string `json:"addon_names"`
	Quantity    int      `json:"quantity"`
	UnitPrice   float64  `json:"unit_price"`
}

func (i OrderItem) LineTotal() float64 {
	return Round2(i.UnitPrice * float64(i.Quantity))
}

// OrderFilter narrows order listings. Zero values mean "any".
type OrderFilter struct {
	RestaurantID string
	DeviceID     string
	Status       Status
	TableNumber  *int
	Limit        int
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Total sums the rounded line totals.
func Total(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.LineTotal()
	}
	return Round2(total)
}
