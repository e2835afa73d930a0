package storage

import (
	"context"
	"database/sql"

	"qrmenu/menu-svc/internal/domain"
	"qrmenu/schema"

	"github.com/lib/pq"
)

func (r *PostgresRepository) each(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return schema.Translate(err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

const (
	selectCategories = `
		SELECT id, restaurant_id, name, position
		FROM menu_categories
		WHERE restaurant_id = $1
		ORDER BY position, created_at`
	selectItems = `
		SELECT i.id, i.category_id, i.name, i.description, i.price, i.old_price, i.image_url,
		       i.is_available, i.is_visible, i.position
		FROM menu_items i
		JOIN menu_categories c ON c.id = i.category_id
		WHERE c.restaurant_id = $1
		ORDER BY i.position, i.created_at`
	selectVariants = `
		SELECT v.id, v.item_id, v.name, v.price, v.position
		FROM menu_item_variants v
		JOIN menu_items i ON i.id = v.item_id
		JOIN menu_categories c ON c.id = i.category_id
		WHERE c.restaurant_id = $1
		ORDER BY v.position`
	selectLinks = `
		SELECT l.item_id, l.group_id
		FROM menu_item_addon_groups l
		JOIN addon_groups g ON g.id = l.group_id
		WHERE g.restaurant_id = $1
		ORDER BY l.position`
	selectGroups = `
		SELECT id, restaurant_id, name, min_select, max_select, is_required, position
		FROM addon_groups
		WHERE restaurant_id = $1
		ORDER BY position`
	selectOptions = `
		SELECT o.id, o.group_id, o.name, o.price, o.position
		FROM addon_options o
		JOIN addon_groups g ON g.id = o.group_id
		WHERE g.restaurant_id = $1
		ORDER BY o.position`
)

type itemRef struct{ category, item int }

func (r *PostgresRepository) LoadMenu(ctx context.Context, restaurantID string) (*domain.Menu, error) {
	menu := &domain.Menu{Categories: []domain.Category{}, AddonGroups: []domain.AddonGroup{}}
	args := []any{restaurantID}

	categories := map[string]int{}
	err := r.each(ctx, selectCategories, args, func(rows *sql.Rows) error {
		c := domain.Category{Items: []domain.Item{}}
		if err := rows.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.Position); err != nil {
			return err
		}
		categories[c.ID] = len(menu.Categories)
		menu.Categories = append(menu.Categories, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	items := map[string]itemRef{}
	err = r.each(ctx, selectItems, args, func(rows *sql.Rows) error {
		it := domain.Item{Variants: []domain.Variant{}, AddonGroupIDs: []string{}}
		var oldPrice sql.NullFloat64
		if err := rows.Scan(&it.ID, &it.CategoryID, &it.Name, &it.Description, &it.Price, &oldPrice, &it.ImageURL,
			&it.IsAvailable, &it.IsVisible, &it.Position); err != nil {
			return err
		}
		if oldPrice.Valid {
			it.OldPrice = &oldPrice.Float64
		}
		ci, ok := categories[it.CategoryID]
		if !ok {
			return nil
		}
		items[it.ID] = itemRef{category: ci, item: len(menu.Categories[ci].Items)}
		menu.Categories[ci].Items = append(menu.Categories[ci].Items, it)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.each(ctx, selectVariants, args, func(rows *sql.Rows) error {
		var v domain.Variant
		if err := rows.Scan(&v.ID, &v.ItemID, &v.Name, &v.Price, &v.Position); err != nil {
			return err
		}
		if ref, ok := items[v.ItemID]; ok {
			it := &menu.Categories[ref.category].Items[ref.item]
			it.Variants = append(it.Variants, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.each(ctx, selectLinks, args, func(rows *sql.Rows) error {
		var itemID, groupID string
		if err := rows.Scan(&itemID, &groupID); err != nil {
			return err
		}
		if ref, ok := items[itemID]; ok {
			it := &menu.Categories[ref.category].Items[ref.item]
			it.AddonGroupIDs = append(it.AddonGroupIDs, groupID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	groups := map[string]int{}
	err = r.each(ctx, selectGroups, args, func(rows *sql.Rows) error {
		g := domain.AddonGroup{Options: []domain.AddonOption{}}
		if err := rows.Scan(&g.ID, &g.RestaurantID, &g.Name, &g.MinSelect, &g.MaxSelect, &g.IsRequired, &g.Position); err != nil {
			return err
		}
		groups[g.ID] = len(menu.AddonGroups)
		menu.AddonGroups = append(menu.AddonGroups, g)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.each(ctx, selectOptions, args, func(rows *sql.Rows) error {
		var o domain.AddonOption
		if err := rows.Scan(&o.ID, &o.GroupID, &o.Name, &o.Price, &o.Position); err != nil {
			return err
		}
		if gi, ok := groups[o.GroupID]; ok {
			menu.AddonGroups[gi].Options = append(menu.AddonGroups[gi].Options, o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return menu, nil
}

// Batched writes. Each statement unnests parallel arrays so a save costs a
// fixed number of round trips regardless of menu size.
const (
	insertGroups = `
		INSERT INTO addon_groups (id, name, min_select, max_select, is_required, position, restaurant_id)
		SELECT u.id, u.name, u.min_select, u.max_select, u.is_required, u.position, $7
		FROM unnest($1::uuid[], $2::text[], $3::int[], $4::int[], $5::bool[], $6::int[])
		     AS u(id, name, min_select, max_select, is_required, position)`
	updateGroups = `
		UPDATE addon_groups g
		SET name = u.name, min_select = u.min_select, max_select = u.max_select,
		    is_required = u.is_required, position = u.position
		FROM unnest($1::uuid[], $2::text[], $3::int[], $4::int[], $5::bool[], $6::int[])
		     AS u(id, name, min_select, max_select, is_required, position)
		WHERE g.id = u.id AND g.restaurant_id = $7`
	insertOptions = `
		INSERT INTO addon_options (id, group_id, name, price, position)
		SELECT * FROM unnest($1::uuid[], $2::uuid[], $3::text[], $4::numeric[], $5::int[])`
	updateOptions = `
		UPDATE addon_options o
		SET group_id = u.group_id, name = u.name, price = u.price, position = u.position
		FROM unnest($1::uuid[], $2::uuid[], $3::text[], $4::numeric[], $5::int[])
		     AS u(id, group_id, name, price, position)
		WHERE o.id = u.id`
	insertCategories = `
		INSERT INTO menu_categories (id, name, position, restaurant_id)
		SELECT u.id, u.name, u.position, $4
		FROM unnest($1::uuid[], $2::text[], $3::int[]) AS u(id, name, position)`
	updateCategories = `
		UPDATE menu_categories c
		SET name = u.name, position = u.position
		FROM unnest($1::uuid[], $2::text[], $3::int[]) AS u(id, name, position)
		WHERE c.id = u.id AND c.restaurant_id = $4`
	insertItems = `
		INSERT INTO menu_items (id, category_id, name, description, price, old_price, image_url,
		                        is_available, is_visible, position)
		SELECT u.id, u.category_id, u.name, u.description, u.price, NULLIF(u.old_price, 0), u.image_url,
		       u.is_available, u.is_visible, u.position
		FROM unnest($1::uuid[], $2::uuid[], $3::text[], $4::text[], $5::numeric[], $6::numeric[], $7::text[],
		            $8::bool[], $9::bool[], $10::int[])
		     AS u(id, category_id, name, description, price, old_price, image_url, is_available, is_visible, position)`
	updateItems = `
		UPDATE menu_items m
		SET category_id = u.category_id, name = u.name, description = u.description, price = u.price,
		    old_price = NULLIF(u.old_price, 0), image_url = u.image_url, is_available = u.is_available,
		    is_visible = u.is_visible, position = u.position, updated_at = now()
		FROM unnest($1::uuid[], $2::uuid[], $3::text[], $4::text[], $5::numeric[], $6::numeric[], $7::text[],
		            $8::bool[], $9::bool[], $10::int[])
		     AS u(id, category_id, name, description, price, old_price, image_url, is_available, is_visible, position)
		WHERE m.id = u.id`
	insertVariants = `
		INSERT INTO menu_item_variants (id, item_id, name, price, position)
		SELECT * FROM unnest($1::uuid[], $2::uuid[], $3::text[], $4::numeric[], $5::int[])`
	updateVariants = `
		UPDATE menu_item_variants v
		SET item_id = u.item_id, name = u.name, price = u.price, position = u.position
		FROM unnest($1::uuid[], $2::uuid[], $3::text[], $4::numeric[], $5::int[])
		     AS u(id, item_id, name, price, position)
		WHERE v.id = u.id`
	insertLinks = `
		INSERT INTO menu_item_addon_groups (item_id, group_id, position)
		SELECT * FROM unnest($1::uuid[], $2::uuid[], $3::int[])`
	updateLinks = `
		UPDATE menu_item_addon_groups l
		SET position = u.position
		FROM unnest($1::uuid[], $2::uuid[], $3::int[]) AS u(item_id, group_id, position)
		WHERE l.item_id = u.item_id AND l.group_id = u.group_id`
	deleteLinks = `
		DELETE FROM menu_item_addon_groups l
		USING unnest($1::uuid[], $2::uuid[], $3::int[]) AS u(item_id, group_id, position)
		WHERE l.item_id = u.item_id AND l.group_id = u.group_id`
	deleteVariants   = `DELETE FROM menu_item_variants WHERE id = ANY($1::uuid[])`
	deleteItems      = `DELETE FROM menu_items WHERE id = ANY($1::uuid[])`
	deleteCategories = `DELETE FROM menu_categories WHERE id = ANY($1::uuid[]) AND restaurant_id = $2`
	deleteOptions    = `DELETE FROM addon_options WHERE id = ANY($1::uuid[])`
	deleteGroups     = `DELETE FROM addon_groups WHERE id = ANY($1::uuid[]) AND restaurant_id = $2`
)

func groupColumns(gs []domain.AddonGroup) []any {
	ids, names := make([]string, len(gs)), make([]string, len(gs))
	mins, maxs, positions := make([]int64, len(gs)), make([]int64, len(gs)), make([]int64, len(gs))
	required := make([]bool, len(gs))
	for i, g := range gs {
		ids[i], names[i] = g.ID, g.Name
		mins[i], maxs[i], positions[i] = int64(g.MinSelect), int64(g.MaxSelect), int64(g.Position)
		required[i] = g.IsRequired
	}
	return []any{pq.Array(ids), pq.Array(names), pq.Array(mins), pq.Array(maxs), pq.Array(required), pq.Array(positions)}
}

func optionColumns(opts []domain.AddonOption) []any {
	ids, groupIDs, names := make([]string, len(opts)), make([]string, len(opts)), make([]string, len(opts))
	prices, positions := make([]float64, len(opts)), make([]int64, len(opts))
	for i, o := range opts {
		ids[i], groupIDs[i], names[i] = o.ID, o.GroupID, o.Name
		prices[i], positions[i] = domain.Round2(o.Price), int64(o.Position)
	}
	return []any{pq.Array(ids), pq.Array(groupIDs), pq.Array(names), pq.Array(prices), pq.Array(positions)}
}

func categoryColumns(cs []domain.Category) []any {
	ids, names, positions := make([]string, len(cs)), make([]string, len(cs)), make([]int64, len(cs))
	for i, c := range cs {
		ids[i], names[i], positions[i] = c.ID, c.Name, int64(c.Position)
	}
	return []any{pq.Array(ids), pq.Array(names), pq.Array(positions)}
}

func itemColumns(items []domain.Item) []any {
	n := len(items)
	ids, categoryIDs, names, descriptions, imageURLs := make([]string, n), make([]string, n), make([]string, n), make([]string, n), make([]string, n)
	prices, oldPrices := make([]float64, n), make([]float64, n)
	available, visible := make([]bool, n), make([]bool, n)
	positions := make([]int64, n)
	for i, it := range items {
		ids[i], categoryIDs[i], names[i], descriptions[i], imageURLs[i] = it.ID, it.CategoryID, it.Name, it.Description, it.ImageURL
		prices[i] = domain.Round2(it.Price)
		if it.OldPrice != nil {
			oldPrices[i] = domain.Round2(*it.OldPrice)
		}
		available[i], visible[i] = it.IsAvailable, it.IsVisible
		positions[i] = int64(it.Position)
	}
	return []any{pq.Array(ids), pq.Array(categoryIDs), pq.Array(names), pq.Array(descriptions), pq.Array(prices),
		pq.Array(oldPrices), pq.Array(imageURLs), pq.Array(available), pq.Array(visible), pq.Array(positions)}
}

func variantColumns(vs []domain.Variant) []any {
	ids, itemIDs, names := make([]string, len(vs)), make([]string, len(vs)), make([]string, len(vs))
	prices, positions := make([]float64, len(vs)), make([]int64, len(vs))
	for i, v := range vs {
		ids[i], itemIDs[i], names[i] = v.ID, v.ItemID, v.Name
		prices[i], positions[i] = domain.Round2(v.Price), int64(v.Position)
	}
	return []any{pq.Array(ids), pq.Array(itemIDs), pq.Array(names), pq.Array(prices), pq.Array(positions)}
}

func linkColumns(ls []domain.Link) []any {
	itemIDs, groupIDs, positions := make([]string, len(ls)), make([]string, len(ls)), make([]int64, len(ls))
	for i, l := range ls {
		itemIDs[i], groupIDs[i], positions[i] = l.ItemID, l.GroupID, int64(l.Position)
	}
	return []any{pq.Array(itemIDs), pq.Array(groupIDs), pq.Array(positions)}
}

type batch struct {
	query string
	n     int
	args  []any
}

// ApplyChanges writes parents before children, then deletes children before
// parents, so items may move into a category created in the same save.
func (r *PostgresRepository) ApplyChanges(ctx context.Context, restaurantID string, cs domain.ChangeSet) error {
	with := func(args []any, extra ...any) []any { return append(args, extra...) }

	batches := []batch{
		{insertGroups, len(cs.AddonGroups.Added), with(groupColumns(cs.AddonGroups.Added), restaurantID)},
		{updateGroups, len(cs.AddonGroups.Updated), with(groupColumns(cs.AddonGroups.Updated), restaurantID)},
		{insertOptions, len(cs.AddonOptions.Added), optionColumns(cs.AddonOptions.Added)},
		{updateOptions, len(cs.AddonOptions.Updated), optionColumns(cs.AddonOptions.Updated)},
		{insertCategories, len(cs.Categories.Added), with(categoryColumns(cs.Categories.Added), restaurantID)},
		{updateCategories, len(cs.Categories.Updated), with(categoryColumns(cs.Categories.Updated), restaurantID)},
		{insertItems, len(cs.Items.Added), itemColumns(cs.Items.Added)},
		{updateItems, len(cs.Items.Updated), itemColumns(cs.Items.Updated)},
		{insertVariants, len(cs.Variants.Added), variantColumns(cs.Variants.Added)},
		{updateVariants, len(cs.Variants.Updated), variantColumns(cs.Variants.Updated)},
		{deleteLinks, len(cs.Links.Removed), linkColumns(cs.Links.Removed)},
		{insertLinks, len(cs.Links.Added), linkColumns(cs.Links.Added)},
		{updateLinks, len(cs.Links.Updated), linkColumns(cs.Links.Updated)},
		{deleteVariants, len(cs.Variants.Removed), []any{pq.Array(cs.Variants.Removed)}},
		{deleteItems, len(cs.Items.Removed), []any{pq.Array(cs.Items.Removed)}},
		{deleteCategories, len(cs.Categories.Removed), []any{pq.Array(cs.Categories.Removed), restaurantID}},
		{deleteOptions, len(cs.AddonOptions.Removed), []any{pq.Array(cs.AddonOptions.Removed)}},
		{deleteGroups, len(cs.AddonGroups.Removed), []any{pq.Array(cs.AddonGroups.Removed), restaurantID}},
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, b := range batches {
			if b.n == 0 {
				continue
			}
			if _, err := tx.ExecContext(ctx, b.query, b.args...); err != nil {
				return err
			}
		}
		return nil
	})
}

const (
	compactCategories = `
		UPDATE menu_categories c
		SET position = o.rn - 1
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY position, created_at) AS rn
			FROM menu_categories
			WHERE restaurant_id = $1
		) o
		WHERE c.id = o.id AND c.position <> o.rn - 1`
	compactItems = `
		UPDATE menu_items i
		SET position = o.rn - 1
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY position, created_at) AS rn
			FROM menu_items
			WHERE category_id = $1
		) o
		WHERE i.id = o.id AND i.position <> o.rn - 1`
)

func (r *PostgresRepository) DeleteCategory(ctx context.Context, restaurantID, categoryID string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM menu_categories WHERE id = $1 AND restaurant_id = $2", categoryID, restaurantID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return sql.ErrNoRows
		}
		_, err = tx.ExecContext(ctx, compactCategories, restaurantID)
		return err
	})
}

func (r *PostgresRepository) DeleteItem(ctx context.Context, restaurantID, itemID string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		var categoryID string
		err := tx.QueryRowContext(ctx, `
			DELETE FROM menu_items i
			USING menu_categories c
			WHERE i.id = $1 AND c.id = i.category_id AND c.restaurant_id = $2
			RETURNING i.category_id`, itemID, restaurantID).Scan(&categoryID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, compactItems, categoryID)
		return err
	})
}

func (r *PostgresRepository) ReorderCategories(ctx context.Context, restaurantID string, ids []string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE menu_categories c
			SET position = u.ord - 1
			FROM unnest($2::uuid[]) WITH ORDINALITY AS u(id, ord)
			WHERE c.id = u.id AND c.restaurant_id = $1`, restaurantID, pq.Array(ids))
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n != int64(len(ids)) {
			return sql.ErrNoRows
		}
		return nil
	})
}

func (r *PostgresRepository) ReorderItems(ctx context.Context, restaurantID, categoryID string, ids []string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE menu_items i
			SET position = u.ord - 1, updated_at = now()
			FROM unnest($3::uuid[]) WITH ORDINALITY AS u(id, ord), menu_categories c
			WHERE i.id = u.id AND i.category_id = $2 AND c.id = i.category_id AND c.restaurant_id = $1`,
			restaurantID, categoryID, pq.Array(ids))
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n != int64(len(ids)) {
			return sql.ErrNoRows
		}
		return nil
	})
}

func (r *PostgresRepository) SetItemFlags(ctx context.Context, restaurantID, itemID string, available, visible *bool) (*domain.Item, error) {
	var it domain.Item
	var oldPrice sql.NullFloat64
	err := r.DB.QueryRowContext(ctx, `
		UPDATE menu_items i
		SET is_available = COALESCE($3::boolean, i.is_available),
		    is_visible = COALESCE($4::boolean, i.is_visible),
		    updated_at = now()
		FROM menu_categories c
		WHERE i.id = $2 AND c.id = i.category_id AND c.restaurant_id = $1
		RETURNING i.id, i.category_id, i.name, i.description, i.price, i.old_price, i.image_url,
		          i.is_available, i.is_visible, i.position`,
		restaurantID, itemID, available, visible).
		Scan(&it.ID, &it.CategoryID, &it.Name, &it.Description, &it.Price, &oldPrice, &it.ImageURL,
			&it.IsAvailable, &it.IsVisible, &it.Position)
	if err != nil {
		return nil, schema.Translate(err)
	}
	if oldPrice.Valid {
		it.OldPrice = &oldPrice.Float64
	}
	return &it, nil
}
