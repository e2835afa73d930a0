package service

import (
	"database/sql"
	"errors"

	"qrmenu/schema"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrItemNotFound       = errors.New("item not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrIDConflict         = errors.New("menu id is already used by another restaurant")
	ErrInvalidReorder     = errors.New("ids must list every sibling exactly once")
	ErrInvalidTableCount  = errors.New("table count must be between 0 and 500")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDraftNotFound      = errors.New("no draft saved")
	ErrDraftTooLarge      = errors.New("draft exceeds 1 MB")
	ErrInvalidDraft       = errors.New("draft must be a JSON document")
	ErrUnsupportedImage   = errors.New("only JPEG, PNG, GIF and WebP images are accepted")
	ErrImageTooLarge      = errors.New("image exceeds 10 MB")
	ErrInvalidQRSize      = errors.New("size must be between 128 and 1024")
)

func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

func uniqueViolation(err, sentinel error) error {
	if errors.Is(err, schema.ErrUniqueViolation) {
		return sentinel
	}
	return err
}
