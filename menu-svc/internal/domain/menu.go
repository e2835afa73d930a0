package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidMenu = errors.New("invalid menu")

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func invalid(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidMenu, path, fmt.Sprintf(format, args...))
}

type idSet map[string]struct{}

func (s idSet) claim(path, id string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return "", invalid(path, "id %q is not a uuid", id)
	} else {
		id = strings.ToLower(id)
	}
	if _, dup := s[id]; dup {
		return "", invalid(path, "duplicate id %s", id)
	}
	s[id] = struct{}{}
	return id, nil
}

func cleanName(path, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid(path, "name is required")
	}
	return name, nil
}

func cleanPrice(path string, price float64) (float64, error) {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, invalid(path, "price must be a non-negative number")
	}
	return Round2(price), nil
}

// Normalize validates a menu document in place. Parent ids and positions are
// derived from document order, missing ids are generated and prices are
// rounded to cents.
func Normalize(restaurantID string, m *Menu) error {
	groupIDs, optionIDs := idSet{}, idSet{}
	for gi := range m.AddonGroups {
		g := &m.AddonGroups[gi]
		path := fmt.Sprintf("addon_groups[%d]", gi)
		var err error
		if g.ID, err = groupIDs.claim(path, g.ID); err != nil {
			return err
		}
		if g.Name, err = cleanName(path, g.Name); err != nil {
			return err
		}
		if g.MinSelect < 0 || g.MaxSelect < 0 {
			return invalid(path, "selection limits must not be negative")
		}
		if g.IsRequired && g.MinSelect == 0 {
			g.MinSelect = 1
		}
		if g.MaxSelect > 0 && g.MinSelect > g.MaxSelect {
			return invalid(path, "min_select %d exceeds max_select %d", g.MinSelect, g.MaxSelect)
		}
		g.RestaurantID = restaurantID
		g.Position = gi

		for oi := range g.Options {
			o := &g.Options[oi]
			opath := fmt.Sprintf("%s.options[%d]", path, oi)
			if o.ID, err = optionIDs.claim(opath, o.ID); err != nil {
				return err
			}
			if o.Name, err = cleanName(opath, o.Name); err != nil {
				return err
			}
			if o.Price, err = cleanPrice(opath, o.Price); err != nil {
				return err
			}
			o.GroupID = g.ID
			o.Position = oi
		}
	}

	categoryIDs, itemIDs, variantIDs := idSet{}, idSet{}, idSet{}
	for ci := range m.Categories {
		c := &m.Categories[ci]
		path := fmt.Sprintf("categories[%d]", ci)
		var err error
		if c.ID, err = categoryIDs.claim(path, c.ID); err != nil {
			return err
		}
		if c.Name, err = cleanName(path, c.Name); err != nil {
			return err
		}
		c.RestaurantID = restaurantID
		c.Position = ci

		for ii := range c.Items {
			it := &c.Items[ii]
			ipath := fmt.Sprintf("%s.items[%d]", path, ii)
			if it.ID, err = itemIDs.claim(ipath, it.ID); err != nil {
				return err
			}
			if it.Name, err = cleanName(ipath, it.Name); err != nil {
				return err
			}
			if it.Price, err = cleanPrice(ipath, it.Price); err != nil {
				return err
			}
			if it.OldPrice != nil {
				old, err := cleanPrice(ipath+".old_price", *it.OldPrice)
				if err != nil {
					return err
				}
				if old == 0 {
					it.OldPrice = nil
				} else {
					it.OldPrice = &old
				}
			}
			it.Description = strings.TrimSpace(it.Description)
			it.CategoryID = c.ID
			it.Position = ii

			seen := idSet{}
			for gi, gid := range it.AddonGroupIDs {
				gid = strings.ToLower(gid)
				if _, ok := groupIDs[gid]; !ok {
					return invalid(fmt.Sprintf("%s.addon_group_ids[%d]", ipath, gi), "unknown add-on group %s", gid)
				}
				if _, dup := seen[gid]; dup {
					return invalid(ipath, "add-on group %s attached twice", gid)
				}
				seen[gid] = struct{}{}
				it.AddonGroupIDs[gi] = gid
			}

			for vi := range it.Variants {
				v := &it.Variants[vi]
				vpath := fmt.Sprintf("%s.variants[%d]", ipath, vi)
				if v.ID, err = variantIDs.claim(vpath, v.ID); err != nil {
					return err
				}
				if v.Name, err = cleanName(vpath, v.Name); err != nil {
					return err
				}
				if v.Price, err = cleanPrice(vpath, v.Price); err != nil {
					return err
				}
				v.ItemID = it.ID
				v.Position = vi
			}
		}
	}
	return nil
}

// VisibleOnly returns a copy of m without hidden items. Unavailable items
// stay listed so guests can see them greyed out.
func VisibleOnly(m *Menu) *Menu {
	out := *m
	out.Categories = make([]Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		items := make([]Item, 0, len(c.Items))
		for _, it := range c.Items {
			if it.IsVisible {
				items = append(items, it)
			}
		}
		c.Items = items
		out.Categories = append(out.Categories, c)
	}
	return &out
}
