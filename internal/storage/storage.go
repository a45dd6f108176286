// Package storage keeps uploaded media and releases it by public id.
package storage

import (
	"context"

	"chirp/internal/models"
)

// UploadInput is one file received from a client.
type UploadInput struct {
	Filename    string
	ContentType string
	Content     []byte
	Kind        models.ResourceType
}

// Store persists media. Destroy must be called with the same kind the
// media was uploaded as.
type Store interface {
	Upload(ctx context.Context, in UploadInput) (*models.Media, error)
	Destroy(ctx context.Context, publicID string, kind models.ResourceType) error
}
