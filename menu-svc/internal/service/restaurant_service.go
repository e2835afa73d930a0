package service

import (
	"context"

	"qrmenu/menu-svc/internal/domain"
)

type RestaurantService struct {
	repo RestaurantRepository
}

func NewRestaurantService(repo RestaurantRepository) *RestaurantService {
	return &RestaurantService{repo: repo}
}

func (s *RestaurantService) Get(ctx context.Context, id string) (*domain.Restaurant, error) {
	rest, err := s.repo.GetRestaurant(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrRestaurantNotFound)
	}
	return rest, nil
}

// Update replaces the editable metadata. Table count and ownership are only
// changed through their own operations.
func (s *RestaurantService) Update(ctx context.Context, rest *domain.Restaurant) error {
	return notFound(s.repo.UpdateRestaurant(ctx, rest), ErrRestaurantNotFound)
}
