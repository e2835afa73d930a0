package service

import (
	"context"
	"encoding/json"
)

const MaxDraftBytes = 1 << 20

// DraftService keeps the editor's unsaved form state per restaurant.
type DraftService struct {
	store DraftStore
}

func NewDraftService(store DraftStore) *DraftService {
	return &DraftService{store: store}
}

func (s *DraftService) Get(ctx context.Context, restaurantID string) ([]byte, error) {
	data, err := s.store.GetDraft(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrDraftNotFound
	}
	return data, nil
}

func (s *DraftService) Put(ctx context.Context, restaurantID string, data []byte) error {
	if len(data) > MaxDraftBytes {
		return ErrDraftTooLarge
	}
	if !json.Valid(data) {
		return ErrInvalidDraft
	}
	return s.store.PutDraft(ctx, restaurantID, data)
}

func (s *DraftService) Delete(ctx context.Context, restaurantID string) error {
	return s.store.DeleteDraft(ctx, restaurantID)
}
