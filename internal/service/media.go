package service

import (
	"context"
	"strings"

	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/storage"
)

// Attachment is a file sent alongside a tweet, with the client's declared kind.
type Attachment struct {
	File         storage.UploadInput
	ResourceType string
}

// validateAttachment checks the declared kind before anything is uploaded.
func validateAttachment(a *Attachment, missingMessage string) (models.ResourceType, error) {
	kind := models.ResourceType(strings.ToLower(strings.TrimSpace(a.ResourceType)))
	if kind == "" {
		return "", models.NewValidationError(missingMessage)
	}
	if !kind.Valid() {
		return "", models.NewUnsupportedMediaError("File type is not supported")
	}
	return kind, nil
}

// releaseMedia removes a stored object after the database no longer references
// it. Failures leave an orphaned object and are only logged.
func releaseMedia(ctx context.Context, store storage.Store, publicID string, kind models.ResourceType) {
	if store == nil || publicID == "" {
		return
	}
	if err := store.Destroy(ctx, publicID, kind); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to release media", "public_id", publicID, "kind", kind, "error", err)
	}
}

func releaseUserImages(ctx context.Context, store storage.Store, u *models.User) {
	releaseMedia(ctx, store, u.ProfilePicture.PublicID, models.ResourceImage)
	releaseMedia(ctx, store, u.PosterPicture.PublicID, models.ResourceImage)
}
