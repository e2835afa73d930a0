package storage

import (
	"context"
	"database/sql"

	"qrmenu/menu-svc/internal/domain"
	"qrmenu/menu-svc/internal/service"
	"qrmenu/schema"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

var (
	_ service.OwnerRepository      = (*PostgresRepository)(nil)
	_ service.RestaurantRepository = (*PostgresRepository)(nil)
	_ service.MenuRepository       = (*PostgresRepository)(nil)
	_ service.TableRepository      = (*PostgresRepository)(nil)
)

// inTx runs fn in a transaction and translates driver errors on the way out.
func (r *PostgresRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return schema.Translate(err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return schema.Translate(err)
	}
	return schema.Translate(tx.Commit())
}

func (r *PostgresRepository) CreateOwnerWithRestaurant(ctx context.Context, owner *domain.Owner, rest *domain.Restaurant) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			"INSERT INTO owners (email, password_hash) VALUES ($1, $2) RETURNING id, created_at",
			owner.Email, owner.PasswordHash,
		).Scan(&owner.ID, &owner.CreatedAt); err != nil {
			return err
		}
		rest.OwnerID = owner.ID
		return tx.QueryRowContext(ctx,
			"INSERT INTO restaurants (owner_id, name, currency) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at",
			rest.OwnerID, rest.Name, rest.Currency,
		).Scan(&rest.ID, &rest.CreatedAt, &rest.UpdatedAt)
	})
}

func (r *PostgresRepository) GetOwnerByEmail(ctx context.Context, email string) (*domain.Owner, string, error) {
	var owner domain.Owner
	var restaurantID string
	err := r.DB.QueryRowContext(ctx, `
		SELECT o.id, o.email, o.password_hash, o.created_at, r.id
		FROM owners o
		JOIN restaurants r ON r.owner_id = o.id
		WHERE o.email = $1
		ORDER BY r.created_at
		LIMIT 1`, email).
		Scan(&owner.ID, &owner.Email, &owner.PasswordHash, &owner.CreatedAt, &restaurantID)
	if err != nil {
		return nil, "", schema.Translate(err)
	}
	return &owner, restaurantID, nil
}

const restaurantColumns = `id, owner_id, name, description, image_url, cover_image_url, phone, email,
		address, opening_hours, currency, table_count, created_at, updated_at`

func scanRestaurant(row interface{ Scan(...any) error }, rest *domain.Restaurant) error {
	return row.Scan(&rest.ID, &rest.OwnerID, &rest.Name, &rest.Description, &rest.ImageURL, &rest.CoverImageURL,
		&rest.Phone, &rest.Email, &rest.Address, &rest.OpeningHours, &rest.Currency, &rest.TableCount,
		&rest.CreatedAt, &rest.UpdatedAt)
}

func (r *PostgresRepository) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	row := r.DB.QueryRowContext(ctx, "SELECT "+restaurantColumns+" FROM restaurants WHERE id = $1", id)
	if err := scanRestaurant(row, &rest); err != nil {
		return nil, schema.Translate(err)
	}
	return &rest, nil
}

func (r *PostgresRepository) UpdateRestaurant(ctx context.Context, rest *domain.Restaurant) error {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE restaurants
		SET name = $2, description = $3, image_url = $4, cover_image_url = $5, phone = $6, email = $7,
		    address = $8, opening_hours = $9, currency = $10, updated_at = now()
		WHERE id = $1
		RETURNING `+restaurantColumns,
		rest.ID, rest.Name, rest.Description, rest.ImageURL, rest.CoverImageURL, rest.Phone, rest.Email,
		rest.Address, rest.OpeningHours, rest.Currency)
	return schema.Translate(scanRestaurant(row, rest))
}
