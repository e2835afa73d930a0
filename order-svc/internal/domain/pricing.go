package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownItem     = errors.New("menu item not found")
	ErrItemUnavailable = errors.New("menu item is not available")
	ErrUnknownVariant  = errors.New("variant does not belong to the item")
	ErrUnknownAddon    = errors.New("add-on option is not offered for the item")
	ErrAddonSelection  = errors.New("add-on selection does not satisfy the group limits")
)

// Catalog is the slice of a restaurant's menu needed to price some lines.
type Catalog struct {
	Items   map[string]CatalogItem
	Groups  map[string]CatalogGroup
	Options map[string]CatalogOption
}

type CatalogItem struct {
	ID          string
	Name        string
	Price       float64
	IsAvailable bool
	IsVisible   bool
	Variants    map[string]CatalogVariant
	GroupIDs    []string
}

type CatalogVariant struct {
	ID    string
	Name  string
	Price float64
}

type CatalogGroup struct {
	ID        string
	Name      string
	MinSelect int
	MaxSelect int
}

type CatalogOption struct {
	ID      string
	GroupID string
	Name    string
	Price   float64
}

func NewCatalog() *Catalog {
	return &Catalog{
		Items:   map[string]CatalogItem{},
		Groups:  map[string]CatalogGroup{},
		Options: map[string]CatalogOption{},
	}
}

// PricedLine is a cart line resolved against the menu.
type PricedLine struct {
	CartLine
	ItemName    string   `json:"item_name"`
	VariantName string   `json:"variant_name,omitempty"`
	AddonNames  []string `json:"addon_names"`
	UnitPrice   float64  `json:"unit_price"`
	LineTotal   float64  `json:"line_total"`
}

type Quote struct {
	Lines []PricedLine `json:"lines"`
	Total float64      `json:"total"`
}

// OrderItems converts the quote into order item snapshots.
func (q Quote) OrderItems() []OrderItem {
	items := make([]OrderItem, 0, len(q.Lines))
	for _, l := range q.Lines {
		items = append(items, OrderItem{
			MenuItemID:  l.ItemID,
			ItemName:    l.ItemName,
			VariantName: l.VariantName,
			AddonNames:  l.AddonNames,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return items
}

// Price resolves every line. Unit price is the variant price when a variant
// is chosen, otherwise the item price, plus the chosen add-on prices.
func (c *Catalog) Price(lines []CartLine) (Quote, error) {
	q := Quote{Lines: make([]PricedLine, 0, len(lines))}
	for _, line := range lines {
		pl, err := c.priceLine(line)
		if err != nil {
			return Quote{}, err
		}
		q.Lines = append(q.Lines, pl)
		q.Total += pl.LineTotal
	}
	q.Total = Round2(q.Total)
	return q, nil
}

func (c *Catalog) priceLine(line CartLine) (PricedLine, error) {
	if line.Quantity < 1 || line.Quantity > MaxLineQuantity {
		return PricedLine{}, ErrInvalidQuantity
	}
	item, ok := c.Items[line.ItemID]
	if !ok || !item.IsVisible {
		return PricedLine{}, fmt.Errorf("%w: %s", ErrUnknownItem, line.ItemID)
	}
	if !item.IsAvailable {
		return PricedLine{}, fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
	}

	pl := PricedLine{CartLine: line, ItemName: item.Name, AddonNames: []string{}}
	unit := item.Price
	if line.VariantID != "" {
		v, ok := item.Variants[line.VariantID]
		if !ok {
			return PricedLine{}, fmt.Errorf("%w: %s", ErrUnknownVariant, line.VariantID)
		}
		pl.VariantName = v.Name
		unit = v.Price
	}

	attached := make(map[string]int, len(item.GroupIDs))
	for _, gid := range item.GroupIDs {
		attached[gid] = 0
	}
	for _, oid := range line.AddonOptionIDs {
		opt, ok := c.Options[oid]
		if !ok {
			return PricedLine{}, fmt.Errorf("%w: %s", ErrUnknownAddon, oid)
		}
		if _, ok := attached[opt.GroupID]; !ok {
			return PricedLine{}, fmt.Errorf("%w: %s", ErrUnknownAddon, oid)
		}
		attached[opt.GroupID]++
		pl.AddonNames = append(pl.AddonNames, opt.Name)
		unit += opt.Price
	}
	for _, gid := range item.GroupIDs {
		g := c.Groups[gid]
		n := attached[gid]
		if n < g.MinSelect || (g.MaxSelect > 0 && n > g.MaxSelect) {
			return PricedLine{}, fmt.Errorf("%w: %s", ErrAddonSelection, g.Name)
		}
	}

	pl.UnitPrice = Round2(unit)
	pl.LineTotal = Round2(pl.UnitPrice * float64(line.Quantity))
	return pl, nil
}
