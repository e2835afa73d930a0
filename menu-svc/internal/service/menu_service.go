package service

import (
	"context"
	"errors"
	"strings"

	"qrmenu/menu-svc/internal/domain"
	"qrmenu/schema"
)

type MenuService struct {
	menus       MenuRepository
	restaurants RestaurantRepository
	tables      TableRepository
}

func NewMenuService(menus MenuRepository, restaurants RestaurantRepository, tables TableRepository) *MenuService {
	return &MenuService{menus: menus, restaurants: restaurants, tables: tables}
}

// Preview is the guest view: hidden items are dropped and, when a table
// number is given, it has to exist.
func (s *MenuService) Preview(ctx context.Context, restaurantID string, table *int) (*domain.Menu, error) {
	rest, err := s.restaurants.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, notFound(err, ErrRestaurantNotFound)
	}
	if table != nil {
		if _, err := s.tables.GetTable(ctx, restaurantID, *table); err != nil {
			return nil, notFound(err, ErrTableNotFound)
		}
	}
	menu, err := s.menus.LoadMenu(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	out := domain.VisibleOnly(menu)
	out.Restaurant = rest
	out.TableNumber = table
	return out, nil
}

func (s *MenuService) Editor(ctx context.Context, restaurantID string) (*domain.Menu, error) {
	rest, err := s.restaurants.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, notFound(err, ErrRestaurantNotFound)
	}
	menu, err := s.menus.LoadMenu(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	menu.Restaurant = rest
	return menu, nil
}

// Save writes only the difference between the stored menu and doc.
func (s *MenuService) Save(ctx context.Context, restaurantID string, doc *domain.Menu) (domain.SaveResult, error) {
	if _, err := s.restaurants.GetRestaurant(ctx, restaurantID); err != nil {
		return domain.SaveResult{}, notFound(err, ErrRestaurantNotFound)
	}
	if err := domain.Normalize(restaurantID, doc); err != nil {
		return domain.SaveResult{}, err
	}
	current, err := s.menus.LoadMenu(ctx, restaurantID)
	if err != nil {
		return domain.SaveResult{}, err
	}

	cs := domain.Diff(current, doc)
	if cs.Empty() {
		return domain.SaveResult{}, nil
	}
	if err := s.menus.ApplyChanges(ctx, restaurantID, cs); err != nil {
		if errors.Is(err, schema.ErrForeignKeyViolation) {
			return domain.SaveResult{}, ErrIDConflict
		}
		return domain.SaveResult{}, uniqueViolation(err, ErrIDConflict)
	}
	return cs.Result(), nil
}

func (s *MenuService) DeleteCategory(ctx context.Context, restaurantID, categoryID string) error {
	return notFound(s.menus.DeleteCategory(ctx, restaurantID, categoryID), ErrCategoryNotFound)
}

func (s *MenuService) DeleteItem(ctx context.Context, restaurantID, itemID string) error {
	return notFound(s.menus.DeleteItem(ctx, restaurantID, itemID), ErrItemNotFound)
}

func (s *MenuService) ReorderCategories(ctx context.Context, restaurantID string, ids []string) error {
	menu, err := s.menus.LoadMenu(ctx, restaurantID)
	if err != nil {
		return err
	}
	current := make([]string, 0, len(menu.Categories))
	for _, c := range menu.Categories {
		current = append(current, c.ID)
	}
	if !sameSet(current, ids) {
		return ErrInvalidReorder
	}
	return notFound(s.menus.ReorderCategories(ctx, restaurantID, lower(ids)), ErrInvalidReorder)
}

func (s *MenuService) ReorderItems(ctx context.Context, restaurantID, categoryID string, ids []string) error {
	menu, err := s.menus.LoadMenu(ctx, restaurantID)
	if err != nil {
		return err
	}
	categoryID = strings.ToLower(categoryID)
	for _, c := range menu.Categories {
		if c.ID != categoryID {
			continue
		}
		current := make([]string, 0, len(c.Items))
		for _, it := range c.Items {
			current = append(current, it.ID)
		}
		if !sameSet(current, ids) {
			return ErrInvalidReorder
		}
		return notFound(s.menus.ReorderItems(ctx, restaurantID, categoryID, lower(ids)), ErrInvalidReorder)
	}
	return ErrCategoryNotFound
}

func (s *MenuService) SetItemFlags(ctx context.Context, restaurantID, itemID string, available, visible *bool) (*domain.Item, error) {
	item, err := s.menus.SetItemFlags(ctx, restaurantID, itemID, available, visible)
	if err != nil {
		return nil, notFound(err, ErrItemNotFound)
	}
	return item, nil
}

func lower(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strings.ToLower(id)
	}
	return out
}

// sameSet reports whether ids is a permutation of current.
func sameSet(current, ids []string) bool {
	if len(current) != len(ids) {
		return false
	}
	want := make(map[string]struct{}, len(current))
	for _, id := range current {
		want[id] = struct{}{}
	}
	for _, id := range ids {
		id = strings.ToLower(id)
		if _, ok := want[id]; !ok {
			return false
		}
		delete(want, id)
	}
	return true
}
