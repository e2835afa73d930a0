package service

import (
	"context"
	"io"

	"qrmenu/menu-svc/internal/domain"
)

type OwnerRepository interface {
	CreateOwnerWithRestaurant(ctx context.Context, owner *domain.Owner, rest *domain.Restaurant) error
	GetOwnerByEmail(ctx context.Context, email string) (*domain.Owner, string, error)
}

type RestaurantRepository interface {
	GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error)
	UpdateRestaurant(ctx context.Context, rest *domain.Restaurant) error
}

// MenuRepository returns sql.ErrNoRows for entities outside the restaurant.
type MenuRepository interface {
	LoadMenu(ctx context.Context, restaurantID string) (*domain.Menu, error)
	ApplyChanges(ctx context.Context, restaurantID string, cs domain.ChangeSet) error
	DeleteCategory(ctx context.Context, restaurantID, categoryID string) error
	DeleteItem(ctx context.Context, restaurantID, itemID string) error
	ReorderCategories(ctx context.Context, restaurantID string, ids []string) error
	ReorderItems(ctx context.Context, restaurantID, categoryID string, ids []string) error
	SetItemFlags(ctx context.Context, restaurantID, itemID string, available, visible *bool) (*domain.Item, error)
}

type TableRepository interface {
	ListTables(ctx context.Context, restaurantID string) ([]domain.Table, error)
	GetTable(ctx context.Context, restaurantID string, number int) (*domain.Table, error)
	ResizeTables(ctx context.Context, restaurantID string, count int) ([]domain.Table, error)
}

type DraftStore interface {
	GetDraft(ctx context.Context, restaurantID string) ([]byte, error)
	PutDraft(ctx context.Context, restaurantID string, data []byte) error
	DeleteDraft(ctx context.Context, restaurantID string) error
}

type ImageStore interface {
	PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

type AuthServiceInterface interface {
	Signup(ctx context.Context, email, password, restaurantName string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
}

type RestaurantServiceInterface interface {
	Get(ctx context.Context, id string) (*domain.Restaurant, error)
	Update(ctx context.Context, rest *domain.Restaurant) error
}

type MenuServiceInterface interface {
	Preview(ctx context.Context, restaurantID string, table *int) (*domain.Menu, error)
	Editor(ctx context.Context, restaurantID string) (*domain.Menu, error)
	Save(ctx context.Context, restaurantID string, doc *domain.Menu) (domain.SaveResult, error)
	DeleteCategory(ctx context.Context, restaurantID, categoryID string) error
	DeleteItem(ctx context.Context, restaurantID, itemID string) error
	ReorderCategories(ctx context.Context, restaurantID string, ids []string) error
	ReorderItems(ctx context.Context, restaurantID, categoryID string, ids []string) error
	SetItemFlags(ctx context.Context, restaurantID, itemID string, available, visible *bool) (*domain.Item, error)
}

type TableServiceInterface interface {
	List(ctx context.Context, restaurantID string) ([]domain.Table, error)
	Get(ctx context.Context, restaurantID string, number int) (*domain.Table, error)
	Resize(ctx context.Context, restaurantID string, count int) ([]domain.Table, error)
}

type QRServiceInterface interface {
	MenuLink(restaurantID string) string
	TableLink(restaurantID string, number int) string
	MenuQR(ctx context.Context, restaurantID string, size int) ([]byte, error)
	TableQR(ctx context.Context, restaurantID string, number, size int) ([]byte, error)
}

type DraftServiceInterface interface {
	Get(ctx context.Context, restaurantID string) ([]byte, error)
	Put(ctx context.Context, restaurantID string, data []byte) error
	Delete(ctx context.Context, restaurantID string) error
}

type ImageServiceInterface interface {
	Upload(ctx context.Context, restaurantID string, body io.Reader, size int64) (string, error)
}

var (
	_ AuthServiceInterface       = (*AuthService)(nil)
	_ RestaurantServiceInterface = (*RestaurantService)(nil)
	_ MenuServiceInterface       = (*MenuService)(nil)
	_ TableServiceInterface      = (*TableService)(nil)
	_ QRServiceInterface         = (*QRService)(nil)
	_ DraftServiceInterface      = (*DraftService)(nil)
	_ ImageServiceInterface      = (*ImageService)(nil)
)
