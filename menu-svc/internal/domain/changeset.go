package domain

type EntityChanges[T any] struct {
	Added   []T
	Updated []T
	Removed []string
}

func (c EntityChanges[T]) Len() int {
	return len(c.Added) + len(c.Updated) + len(c.Removed)
}

// Link attaches an add-on group to an item.
type Link struct {
	ItemID   string
	GroupID  string
	Position int
}

func (l Link) key() string { return l.ItemID + "/" + l.GroupID }

type LinkChanges struct {
	Added   []Link
	Updated []Link
	Removed []Link
}

// ChangeSet is the minimal set of writes that turns the stored menu into the
// submitted one.
type ChangeSet struct {
	Categories   EntityChanges[Category]
	Items        EntityChanges[Item]
	Variants     EntityChanges[Variant]
	AddonGroups  EntityChanges[AddonGroup]
	AddonOptions EntityChanges[AddonOption]
	Links        LinkChanges
}

func (cs ChangeSet) Empty() bool {
	r := cs.Result()
	return r.Added+r.Updated+r.Removed == 0
}

func (cs ChangeSet) Result() SaveResult {
	return SaveResult{
		Added: len(cs.Categories.Added) + len(cs.Items.Added) + len(cs.Variants.Added) +
			len(cs.AddonGroups.Added) + len(cs.AddonOptions.Added) + len(cs.Links.Added),
		Updated: len(cs.Categories.Updated) + len(cs.Items.Updated) + len(cs.Variants.Updated) +
			len(cs.AddonGroups.Updated) + len(cs.AddonOptions.Updated) + len(cs.Links.Updated),
		Removed: len(cs.Categories.Removed) + len(cs.Items.Removed) + len(cs.Variants.Removed) +
			len(cs.AddonGroups.Removed) + len(cs.AddonOptions.Removed) + len(cs.Links.Removed),
	}
}

type flatMenu struct {
	categories []Category
	items      []Item
	variants   []Variant
	groups     []AddonGroup
	options    []AddonOption
	links      []Link
}

func flatten(m *Menu) flatMenu {
	var f flatMenu
	if m == nil {
		return f
	}
	for _, g := range m.AddonGroups {
		f.options = append(f.options, g.Options...)
		g.Options = nil
		f.groups = append(f.groups, g)
	}
	for _, c := range m.Categories {
		for _, it := range c.Items {
			f.variants = append(f.variants, it.Variants...)
			for pos, gid := range it.AddonGroupIDs {
				f.links = append(f.links, Link{ItemID: it.ID, GroupID: gid, Position: pos})
			}
			it.Variants = nil
			it.AddonGroupIDs = nil
			f.items = append(f.items, it)
		}
		c.Items = nil
		f.categories = append(f.categories, c)
	}
	return f
}

func diff[T any](current, desired []T, id func(T) string, same func(a, b T) bool) EntityChanges[T] {
	var out EntityChanges[T]
	existing := make(map[string]T, len(current))
	for _, e := range current {
		existing[id(e)] = e
	}
	kept := make(map[string]struct{}, len(desired))
	for _, e := range desired {
		kept[id(e)] = struct{}{}
		old, ok := existing[id(e)]
		switch {
		case !ok:
			out.Added = append(out.Added, e)
		case !same(old, e):
			out.Updated = append(out.Updated, e)
		}
	}
	for _, e := range current {
		if _, ok := kept[id(e)]; !ok {
			out.Removed = append(out.Removed, id(e))
		}
	}
	return out
}

func samePrice(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Round2(*a) == Round2(*b)
}

// Diff compares a stored menu with a normalized document.
func Diff(current, desired *Menu) ChangeSet {
	cur, want := flatten(current), flatten(desired)

	var cs ChangeSet
	cs.Categories = diff(cur.categories, want.categories,
		func(c Category) string { return c.ID },
		func(a, b Category) bool { return a.Name == b.Name && a.Position == b.Position })
	cs.Items = diff(cur.items, want.items,
		func(i Item) string { return i.ID },
		func(a, b Item) bool {
			return a.CategoryID == b.CategoryID && a.Name == b.Name && a.Description == b.Description &&
				Round2(a.Price) == Round2(b.Price) && samePrice(a.OldPrice, b.OldPrice) &&
				a.ImageURL == b.ImageURL && a.IsAvailable == b.IsAvailable && a.IsVisible == b.IsVisible &&
				a.Position == b.Position
		})
	cs.Variants = diff(cur.variants, want.variants,
		func(v Variant) string { return v.ID },
		func(a, b Variant) bool {
			return a.ItemID == b.ItemID && a.Name == b.Name && Round2(a.Price) == Round2(b.Price) && a.Position == b.Position
		})
	cs.AddonGroups = diff(cur.groups, want.groups,
		func(g AddonGroup) string { return g.ID },
		func(a, b AddonGroup) bool {
			return a.Name == b.Name && a.MinSelect == b.MinSelect && a.MaxSelect == b.MaxSelect &&
				a.IsRequired == b.IsRequired && a.Position == b.Position
		})
	cs.AddonOptions = diff(cur.options, want.options,
		func(o AddonOption) string { return o.ID },
		func(a, b AddonOption) bool {
			return a.GroupID == b.GroupID && a.Name == b.Name && Round2(a.Price) == Round2(b.Price) && a.Position == b.Position
		})

	links := diff(cur.links, want.links, Link.key, func(a, b Link) bool { return a.Position == b.Position })
	cs.Links.Added, cs.Links.Updated = links.Added, links.Updated
	byKey := make(map[string]Link, len(cur.links))
	for _, l := range cur.links {
		byKey[l.key()] = l
	}
	for _, k := range links.Removed {
		cs.Links.Removed = append(cs.Links.Removed, byKey[k])
	}
	return cs
}
