package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 256
	MinQRSize     = 128
	MaxQRSize     = 1024
)

type QRGenerator interface {
	Generate(content string, size int) ([]byte, error)
}

type DefaultQRGenerator struct{}

func (DefaultQRGenerator) Generate(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}

type QRService struct {
	baseURL     string
	qrEncoder   QRGenerator
	restaurants RestaurantRepository
	tables      TableRepository
}

func NewQRService(baseURL string, qr QRGenerator, restaurants RestaurantRepository, tables TableRepository) *QRService {
	return &QRService{
		baseURL:     strings.TrimRight(baseURL, "/"),
		qrEncoder:   qr,
		restaurants: restaurants,
		tables:      tables,
	}
}

func (s *QRService) MenuLink(restaurantID string) string {
	return s.baseURL + "/menu-preview/" + url.PathEscape(restaurantID)
}

func (s *QRService) TableLink(restaurantID string, number int) string {
	return s.MenuLink(restaurantID) + "?table=" + strconv.Itoa(number)
}

func (s *QRService) MenuQR(ctx context.Context, restaurantID string, size int) ([]byte, error) {
	size, err := qrSize(size)
	if err != nil {
		return nil, err
	}
	if _, err := s.restaurants.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, notFound(err, ErrRestaurantNotFound)
	}
	return s.qrEncoder.Generate(s.MenuLink(restaurantID), size)
}

func (s *QRService) TableQR(ctx context.Context, restaurantID string, number, size int) ([]byte, error) {
	size, err := qrSize(size)
	if err != nil {
		return nil, err
	}
	if _, err := s.tables.GetTable(ctx, restaurantID, number); err != nil {
		return nil, notFound(err, ErrTableNotFound)
	}
	return s.qrEncoder.Generate(s.TableLink(restaurantID, number), size)
}

func qrSize(size int) (int, error) {
	if size == 0 {
		return DefaultQRSize, nil
	}
	if size < MinQRSize || size > MaxQRSize {
		return 0, ErrInvalidQRSize
	}
	return size, nil
}
