package domain

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxLineQuantity = 99

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrEmptyCart       = errors.New("cart is empty")
)

// cartLineSpace namespaces the name-based line keys.
var cartLineSpace = uuid.MustParse("8f4cf0a2-54f4-4c8e-9d0b-3f1f0e6b7a10")

// CartLine is one selection. Two selections of the same item, variant and
// add-on set share a key and are merged.
type CartLine struct {
	Key            string   `json:"key"`
	ItemID         string   `json:"item_id"`
	VariantID      string   `json:"variant_id,omitempty"`
	AddonOptionIDs []string `json:"addon_option_ids"`
	Quantity       int      `json:"quantity"`
}

// normalize lowercases ids, sorts and dedupes add-ons and derives the key.
func (l *CartLine) normalize() {
	l.ItemID = strings.ToLower(l.ItemID)
	l.VariantID = strings.ToLower(l.VariantID)
	addons := make([]string, 0, len(l.AddonOptionIDs))
	for _, id := range l.AddonOptionIDs {
		addons = append(addons, strings.ToLower(id))
	}
	slices.Sort(addons)
	l.AddonOptionIDs = slices.Compact(addons)
	l.Key = LineKey(l.ItemID, l.VariantID, l.AddonOptionIDs)
}

func LineKey(itemID, variantID string, addonIDs []string) string {
	name := itemID + "|" + variantID + "|" + strings.Join(addonIDs, ",")
	return uuid.NewSHA1(cartLineSpace, []byte(name)).String()
}

// Cart belongs to one device at one restaurant.
type Cart struct {
	DeviceID     string     `json:"device_id"`
	RestaurantID string     `json:"restaurant_id"`
	Lines        []CartLine `json:"lines"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func NewCart(deviceID, restaurantID string) *Cart {
	return &Cart{DeviceID: deviceID, RestaurantID: restaurantID, Lines: []CartLine{}}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) find(key string) int {
	return slices.IndexFunc(c.Lines, func(l CartLine) bool { return l.Key == key })
}

// Add merges line into the cart and returns the resulting line.
func (c *Cart) Add(line CartLine) (CartLine, error) {
	if line.Quantity < 1 || line.Quantity > MaxLineQuantity {
		return CartLine{}, ErrInvalidQuantity
	}
	line.normalize()
	if i := c.find(line.Key); i >= 0 {
		qty := c.Lines[i].Quantity + line.Quantity
		if qty > MaxLineQuantity {
			return CartLine{}, ErrInvalidQuantity
		}
		c.Lines[i].Quantity = qty
		c.touch()
		return c.Lines[i], nil
	}
	c.Lines = append(c.Lines, line)
	c.touch()
	return line, nil
}

// SetQuantity replaces a line's quantity. Zero removes the line.
func (c *Cart) SetQuantity(key string, qty int) error {
	if qty < 0 || qty > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	i := c.find(key)
	if i < 0 {
		return ErrLineNotFound
	}
	if qty == 0 {
		c.Lines = slices.Delete(c.Lines, i, i+1)
	} else {
		c.Lines[i].Quantity = qty
	}
	c.touch()
	return nil
}

func (c *Cart) Remove(key string) error {
	return c.SetQuantity(key, 0)
}

func (c *Cart) Clear() {
	c.Lines = []CartLine{}
	c.touch()
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
