package storage

import (
	"context"
	"database/sql"

	"qrmenu/menu-svc/internal/domain"
	"qrmenu/schema"
)

func (r *PostgresRepository) ListTables(ctx context.Context, restaurantID string) ([]domain.Table, error) {
	return listTables(ctx, r.DB, restaurantID)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listTables(ctx context.Context, q querier, restaurantID string) ([]domain.Table, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, restaurant_id, table_number, created_at
		FROM restaurant_tables
		WHERE restaurant_id = $1
		ORDER BY table_number`, restaurantID)
	if err != nil {
		return nil, schema.Translate(err)
	}
	defer rows.Close()

	tables := []domain.Table{}
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.Number, &t.CreatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (r *PostgresRepository) GetTable(ctx context.Context, restaurantID string, number int) (*domain.Table, error) {
	var t domain.Table
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, restaurant_id, table_number, created_at
		FROM restaurant_tables
		WHERE restaurant_id = $1 AND table_number = $2`, restaurantID, number).
		Scan(&t.ID, &t.RestaurantID, &t.Number, &t.CreatedAt)
	if err != nil {
		return nil, schema.Translate(err)
	}
	return &t, nil
}

// ResizeTables reconciles the table rows to exactly 1..count in one
// transaction. Rows that already exist keep their ids, so orders referencing
// them stay attached.
func (r *PostgresRepository) ResizeTables(ctx context.Context, restaurantID string, count int) ([]domain.Table, error) {
	var tables []domain.Table
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE restaurants SET table_count = $2, updated_at = now() WHERE id = $1", restaurantID, count)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return sql.ErrNoRows
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM restaurant_tables WHERE restaurant_id = $1 AND table_number > $2", restaurantID, count); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO restaurant_tables (restaurant_id, table_number)
			SELECT $1, n FROM generate_series(1, $2::int) AS n
			ON CONFLICT (restaurant_id, table_number) DO NOTHING`, restaurantID, count); err != nil {
			return err
		}
		tables, err = listTables(ctx, tx, restaurantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}
