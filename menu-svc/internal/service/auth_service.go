package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"qrmenu/menu-svc/internal/domain"
	"qrmenu/pkg/auth"

	"golang.org/x/crypto/bcrypt"
)

type Session struct {
	Token        string    `json:"token"`
	OwnerID      string    `json:"owner_id"`
	RestaurantID string    `json:"restaurant_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthService struct {
	owners OwnerRepository
	secret []byte
	ttl    time.Duration
	cost   int
}

func NewAuthService(owners OwnerRepository, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{owners: owners, secret: secret, ttl: ttl, cost: bcrypt.DefaultCost}
}

// Signup creates the owner together with their restaurant.
func (s *AuthService) Signup(ctx context.Context, email, password, restaurantName string) (*Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	owner := &domain.Owner{Email: normalizeEmail(email), PasswordHash: string(hash)}
	rest := &domain.Restaurant{Name: strings.TrimSpace(restaurantName), Currency: "USD"}
	if err := s.owners.CreateOwnerWithRestaurant(ctx, owner, rest); err != nil {
		return nil, uniqueViolation(err, ErrEmailTaken)
	}
	return s.session(owner.ID, rest.ID)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	owner, restaurantID, err := s.owners.GetOwnerByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(owner.ID, restaurantID)
}

func (s *AuthService) session(ownerID, restaurantID string) (*Session, error) {
	token, err := auth.GenToken(ownerID, restaurantID, s.secret, s.ttl)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:        token,
		OwnerID:      ownerID,
		RestaurantID: restaurantID,
		ExpiresAt:    time.Now().Add(s.ttl).UTC(),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
