package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"qrmenu/order-svc/internal/domain"
	"qrmenu/order-svc/internal/service"
	"qrmenu/schema"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

var _ service.OrderRepository = (*PostgresRepository)(nil)

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
	catalogItems = `
		SELECT i.id, i.name, i.price, i.is_available, i.is_visible
		FROM menu_items i
		JOIN menu_categories c ON c.id = i.category_id
		WHERE c.restaurant_id = $1 AND i.id = ANY($2::uuid[])`
	catalogVariants = `
		SELECT id, item_id, name, price
		FROM menu_item_variants
		WHERE item_id = ANY($1::uuid[])`
	catalogLinks = `
		SELECT l.item_id, g.id, g.name, g.min_select, g.max_select
		FROM menu_item_addon_groups l
		JOIN addon_groups g ON g.id = l.group_id
		WHERE g.restaurant_id = $1 AND l.item_id = ANY($2::uuid[])
		ORDER BY l.position`
	catalogOptions = `
		SELECT o.id, o.group_id, o.name, o.price
		FROM addon_options o
		JOIN menu_item_addon_groups l ON l.group_id = o.group_id
		WHERE l.item_id = ANY($1::uuid[])`
)

// LoadCatalog reads the items, variants and add-ons needed to price lines
// referencing itemIDs. Items of other restaurants are simply absent.
func (r *PostgresRepository) LoadCatalog(ctx context.Context, restaurantID string, itemIDs []string) (*domain.Catalog, error) {
	catalog := domain.NewCatalog()
	ids := pq.Array(itemIDs)

	err := r.each(ctx, catalogItems, []any{restaurantID, ids}, func(rows *sql.Rows) error {
		it := domain.CatalogItem{Variants: map[string]domain.CatalogVariant{}}
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &it.IsAvailable, &it.IsVisible); err != nil {
			return err
		}
		catalog.Items[it.ID] = it
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	if len(catalog.Items) == 0 {
		return catalog, nil
	}

	err = r.each(ctx, catalogVariants, []any{ids}, func(rows *sql.Rows) error {
		var v domain.CatalogVariant
		var itemID string
		if err := rows.Scan(&v.ID, &itemID, &v.Name, &v.Price); err != nil {
			return err
		}
		if it, ok := catalog.Items[itemID]; ok {
			it.Variants[v.ID] = v
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}

	err = r.each(ctx, catalogLinks, []any{restaurantID, ids}, func(rows *sql.Rows) error {
		var g domain.CatalogGroup
		var itemID string
		if err := rows.Scan(&itemID, &g.ID, &g.Name, &g.MinSelect, &g.MaxSelect); err != nil {
			return err
		}
		catalog.Groups[g.ID] = g
		if it, ok := catalog.Items[itemID]; ok {
			it.GroupIDs = append(it.GroupIDs, g.ID)
			catalog.Items[itemID] = it
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load addon groups: %w", err)
	}
	if len(catalog.Groups) == 0 {
		return catalog, nil
	}

	err = r.each(ctx, catalogOptions, []any{ids}, func(rows *sql.Rows) error {
		var o domain.CatalogOption
		if err := rows.Scan(&o.ID, &o.GroupID, &o.Name, &o.Price); err != nil {
			return err
		}
		catalog.Options[o.ID] = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load addon options: %w", err)
	}
	return catalog, nil
}

func (r *PostgresRepository) GetTableID(ctx context.Context, restaurantID string, number int) (string, error) {
	var id string
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM restaurant_tables WHERE restaurant_id = $1 AND table_number = $2",
		restaurantID, number).Scan(&id)
	return id, schema.Translate(err)
}

const insertItem = `
	INSERT INTO order_items (order_id, menu_item_id, item_name, variant_name, addon_names, quantity, unit_price, position)
	VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8)
	RETURNING id`

// CreateOrder inserts the order and its items in one transaction and fills
// in the generated ids and timestamps.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return schema.Translate(err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (restaurant_id, table_id, table_number, device_id, status, total_amount, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		order.RestaurantID, order.TableID, order.TableNumber, order.DeviceID, order.Status, order.TotalAmount, order.Note,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return schema.Translate(err)
	}

	stmt, err := tx.PrepareContext(ctx, insertItem)
	if err != nil {
		return schema.Translate(err)
	}
	defer stmt.Close()

	for i := range order.Items {
		it := &order.Items[i]
		it.OrderID = order.ID
		if it.AddonNames == nil {
			it.AddonNames = []string{}
		}
		err := stmt.QueryRowContext(ctx, order.ID, it.MenuItemID, it.ItemName, it.VariantName,
			pq.Array(it.AddonNames), it.Quantity, it.UnitPrice, i).Scan(&it.ID)
		if err != nil {
			return schema.Translate(err)
		}
	}
	return schema.Translate(tx.Commit())
}

const orderColumns = "id, restaurant_id, table_id, table_number, device_id, status, total_amount, note, created_at, updated_at"

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var o domain.Order
	var tableID sql.NullString
	var tableNumber sql.NullInt64
	err := row.Scan(&o.ID, &o.RestaurantID, &tableID, &tableNumber, &o.DeviceID, &o.Status,
		&o.TotalAmount, &o.Note, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, err
	}
	if tableID.Valid {
		o.TableID = &tableID.String
	}
	if tableNumber.Valid {
		n := int(tableNumber.Int64)
		o.TableNumber = &n
	}
	o.Items = []domain.OrderItem{}
	return o, nil
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.DB.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if err != nil {
		return nil, schema.Translate(err)
	}
	orders := []domain.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListOrders returns matching orders newest first, each with its items.
func (r *PostgresRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.RestaurantID != "" {
		add("restaurant_id = $%d", filter.RestaurantID)
	}
	if filter.DeviceID != "" {
		add("device_id = $%d", filter.DeviceID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.TableNumber != nil {
		add("table_number = $%d", *filter.TableNumber)
	}

	query := "SELECT " + orderColumns + " FROM orders"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	orders := []domain.Order{}
	err := r.each(ctx, query, args, func(rows *sql.Rows) error {
		o, err := scanOrder(rows)
		if err != nil {
			return err
		}
		orders = append(orders, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	index := make(map[string]int, len(orders))
	ids := make([]string, len(orders))
	for i, o := range orders {
		index[o.ID] = i
		ids[i] = o.ID
	}
	return r.each(ctx, `
		SELECT id, order_id, menu_item_id, item_name, variant_name, addon_names, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position`,
		[]any{pq.Array(ids)}, func(rows *sql.Rows) error {
			var it domain.OrderItem
			var menuItemID sql.NullString
			var addons pq.StringArray
			if err := rows.Scan(&it.ID, &it.OrderID, &menuItemID, &it.ItemName, &it.VariantName,
				&addons, &it.Quantity, &it.UnitPrice); err != nil {
				return err
			}
			it.MenuItemID = menuItemID.String
			it.AddonNames = []string(addons)
			if it.AddonNames == nil {
				it.AddonNames = []string{}
			}
			if i, ok := index[it.OrderID]; ok {
				orders[i].Items = append(orders[i].Items, it)
			}
			return nil
		})
}

// UpdateStatus moves the order only if it is still in status from.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) (*domain.Order, error) {
	o, err := scanOrder(r.DB.QueryRowContext(ctx, `
		UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+orderColumns, id, from, to))
	if err != nil {
		return nil, schema.Translate(err)
	}
	orders := []domain.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *PostgresRepository) DeleteTableOrders(ctx context.Context, restaurantID string, number int) ([]string, error) {
	ids := []string{}
	err := r.each(ctx,
		"DELETE FROM orders WHERE restaurant_id = $1 AND table_number = $2 RETURNING id",
		[]any{restaurantID, number}, func(rows *sql.Rows) error {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
			return nil
		})
	return ids, err
}

// DeleteDeviceOrders removes every order of the device across restaurants.
func (r *PostgresRepository) DeleteDeviceOrders(ctx context.Context, deviceID string) ([]domain.Order, error) {
	orders := []domain.Order{}
	err := r.each(ctx, "DELETE FROM orders WHERE device_id = $1 RETURNING "+orderColumns,
		[]any{deviceID}, func(rows *sql.Rows) error {
			o, err := scanOrder(rows)
			if err != nil {
				return err
			}
			orders = append(orders, o)
			return nil
		})
	return orders, err
}
