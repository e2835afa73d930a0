package service

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
)

const MaxImageBytes = 10 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type ImageService struct {
	store ImageStore
}

func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

// Upload stores an image under restaurants/{id}/ and returns its public URL.
// The type is sniffed from the content, not taken from the client.
func (s *ImageService) Upload(ctx context.Context, restaurantID string, body io.Reader, size int64) (string, error) {
	if size > MaxImageBytes {
		return "", ErrImageTooLarge
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", ErrUnsupportedImage
	}

	if seeker, ok := body.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return "", err
		}
	} else {
		body = io.MultiReader(bytes.NewReader(head), body)
	}

	key := "restaurants/" + restaurantID + "/" + uuid.NewString() + ext
	return s.store.PutObject(ctx, key, contentType, body, size)
}
