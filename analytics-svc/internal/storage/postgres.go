package storage

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"qrmenu/analytics-svc/internal/domain"
	"qrmenu/schema"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func (r *PostgresRepository) ItemNames(ctx context.Context, restaurantID string, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT i.id, i.name
		FROM menu_items i
		JOIN menu_categories c ON c.id = i.category_id
		WHERE c.restaurant_id = $1 AND i.id = ANY($2::uuid[])`,
		restaurantID, pq.Array(ids))
	if err != nil {
		return nil, schema.Translate(err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// TopItems ranks items by ordered quantity straight from order history. A
// non-nil since restricts the aggregate to orders created at or after it.
func (r *PostgresRepository) TopItems(ctx context.Context, restaurantID string, since *time.Time, limit int) ([]domain.ItemStat, error) {
	query := `
		SELECT oi.menu_item_id, MAX(oi.item_name), SUM(oi.quantity) AS total
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.restaurant_id = $1 AND oi.menu_item_id IS NOT NULL`
	args := []any{restaurantID}
	if since != nil {
		args = append(args, *since)
		query += ` AND o.created_at >= $2`
	}
	args = append(args, limit)
	query += `
		GROUP BY oi.menu_item_id
		ORDER BY total DESC, 2
		LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, schema.Translate(err)
	}
	defer rows.Close()

	stats := []domain.ItemStat{}
	for rows.Next() {
		var s domain.ItemStat
		if err := rows.Scan(&s.MenuItemID, &s.Name, &s.Quantity); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *PostgresRepository) StatusCounts(ctx context.Context, restaurantID string) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM orders WHERE restaurant_id = $1 GROUP BY status`, restaurantID)
	if err != nil {
		return nil, schema.Translate(err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
