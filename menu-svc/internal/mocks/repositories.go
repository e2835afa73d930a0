// Package mocks holds testify mocks for the menu-svc repository interfaces.
package mocks

import (
	"context"
	"io"

	"qrmenu/menu-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type OwnerRepository struct {
	mock.Mock
}

func (_m *OwnerRepository) CreateOwnerWithRestaurant(ctx context.Context, owner *domain.Owner, rest *domain.Restaurant) error {
	ret := _m.Called(ctx, owner, rest)
	return ret.Error(0)
}

func (_m *OwnerRepository) GetOwnerByEmail(ctx context.Context, email string) (*domain.Owner, string, error) {
	ret := _m.Called(ctx, email)
	var owner *domain.Owner
	if v := ret.Get(0); v != nil {
		owner = v.(*domain.Owner)
	}
	return owner, ret.String(1), ret.Error(2)
}

type RestaurantRepository struct {
	mock.Mock
}

func (_m *RestaurantRepository) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	ret := _m.Called(ctx, id)
	var rest *domain.Restaurant
	if v := ret.Get(0); v != nil {
		rest = v.(*domain.Restaurant)
	}
	return rest, ret.Error(1)
}

func (_m *RestaurantRepository) UpdateRestaurant(ctx context.Context, rest *domain.Restaurant) error {
	ret := _m.Called(ctx, rest)
	return ret.Error(0)
}

type MenuRepository struct {
	mock.Mock
}

func (_m *MenuRepository) LoadMenu(ctx context.Context, restaurantID string) (*domain.Menu, error) {
	ret := _m.Called(ctx, restaurantID)
	var menu *domain.Menu
	if v := ret.Get(0); v != nil {
		menu = v.(*domain.Menu)
	}
	return menu, ret.Error(1)
}

func (_m *MenuRepository) ApplyChanges(ctx context.Context, restaurantID string, cs domain.ChangeSet) error {
	ret := _m.Called(ctx, restaurantID, cs)
	return ret.Error(0)
}

func (_m *MenuRepository) DeleteCategory(ctx context.Context, restaurantID, categoryID string) error {
	ret := _m.Called(ctx, restaurantID, categoryID)
	return ret.Error(0)
}

func (_m *MenuRepository) DeleteItem(ctx context.Context, restaurantID, itemID string) error {
	ret := _m.Called(ctx, restaurantID, itemID)
	return ret.Error(0)
}

func (_m *MenuRepository) ReorderCategories(ctx context.Context, restaurantID string, ids []string) error {
	ret := _m.Called(ctx, restaurantID, ids)
	return ret.Error(0)
}

func (_m *MenuRepository) ReorderItems(ctx context.Context, restaurantID, categoryID string, ids []string) error {
	ret := _m.Called(ctx, restaurantID, categoryID, ids)
	return ret.Error(0)
}

func (_m *MenuRepository) SetItemFlags(ctx context.Context, restaurantID, itemID string, available, visible *bool) (*domain.Item, error) {
	ret := _m.Called(ctx, restaurantID, itemID, available, visible)
	var item *domain.Item
	if v := ret.Get(0); v != nil {
		item = v.(*domain.Item)
	}
	return item, ret.Error(1)
}

type TableRepository struct {
	mock.Mock
}

func (_m *TableRepository) ListTables(ctx context.Context, restaurantID string) ([]domain.Table, error) {
	ret := _m.Called(ctx, restaurantID)
	var tables []domain.Table
	if v := ret.Get(0); v != nil {
		tables = v.([]domain.Table)
	}
	return tables, ret.Error(1)
}

func (_m *TableRepository) GetTable(ctx context.Context, restaurantID string, number int) (*domain.Table, error) {
	ret := _m.Called(ctx, restaurantID, number)
	var table *domain.Table
	if v := ret.Get(0); v != nil {
		table = v.(*domain.Table)
	}
	return table, ret.Error(1)
}

func (_m *TableRepository) ResizeTables(ctx context.Context, restaurantID string, count int) ([]domain.Table, error) {
	ret := _m.Called(ctx, restaurantID, count)
	var tables []domain.Table
	if v := ret.Get(0); v != nil {
		tables = v.([]domain.Table)
	}
	return tables, ret.Error(1)
}

type DraftStore struct {
	mock.Mock
}

func (_m *DraftStore) GetDraft(ctx context.Context, restaurantID string) ([]byte, error) {
	ret := _m.Called(ctx, restaurantID)
	var data []byte
	if v := ret.Get(0); v != nil {
		data = v.([]byte)
	}
	return data, ret.Error(1)
}

func (_m *DraftStore) PutDraft(ctx context.Context, restaurantID string, data []byte) error {
	ret := _m.Called(ctx, restaurantID, data)
	return ret.Error(0)
}

func (_m *DraftStore) DeleteDraft(ctx context.Context, restaurantID string) error {
	ret := _m.Called(ctx, restaurantID)
	return ret.Error(0)
}

type ImageStore struct {
	mock.Mock
}

func (_m *ImageStore) PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	ret := _m.Called(ctx, key, contentType, body, size)
	return ret.String(0), ret.Error(1)
}
