package service

import (
	"context"

	"qrmenu/menu-svc/internal/domain"
)

const MaxTables = 500

type TableService struct {
	repo TableRepository
}

func NewTableService(repo TableRepository) *TableService {
	return &TableService{repo: repo}
}

func (s *TableService) List(ctx context.Context, restaurantID string) ([]domain.Table, error) {
	return s.repo.ListTables(ctx, restaurantID)
}

func (s *TableService) Get(ctx context.Context, restaurantID string, number int) (*domain.Table, error) {
	if number < 1 {
		return nil, ErrTableNotFound
	}
	table, err := s.repo.GetTable(ctx, restaurantID, number)
	if err != nil {
		return nil, notFound(err, ErrTableNotFound)
	}
	return table, nil
}

// Resize makes the restaurant have exactly tables 1..count. Repeating the
// same count is a no-op.
func (s *TableService) Resize(ctx context.Context, restaurantID string, count int) ([]domain.Table, error) {
	if count < 0 || count > MaxTables {
		return nil, ErrInvalidTableCount
	}
	tables, err := s.repo.ResizeTables(ctx, restaurantID, count)
	if err != nil {
		return nil, notFound(err, ErrRestaurantNotFound)
	}
	return tables, nil
}
