package repository

import (
	"context"
	"time"

	"chirp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HashtagRepository maintains the trending counters.
type HashtagRepository interface {
	Increment(ctx context.Context, tags []string) error
	Top(ctx context.Context, limit int) ([]models.Hashtag, error)
}

type hashtagRepository struct {
	db *gorm.DB
}

// NewHashtagRepository returns a new HashtagRepository implementation.
func NewHashtagRepository(db *gorm.DB) HashtagRepository {
	return &hashtagRepository{db: db}
}

// Increment bumps each tag's counter, creating it at 1 when new.
func (r *hashtagRepository) Increment(ctx context.Context, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]models.Hashtag, len(tags))
	for i, tag := range tags {
		rows[i] = models.Hashtag{Hashtag: tag, Count: 1, CreatedAt: now, UpdatedAt: now}
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "hashtag"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count":      gorm.Expr("hashtags.count + 1"),
			"updated_at": now,
		}),
	}).Create(&rows).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Top returns the limit most used hashtags, highest count first.
func (r *hashtagRepository) Top(ctx context.Context, limit int) ([]models.Hashtag, error) {
	var tags []models.Hashtag
	err := readDB(r.db).WithContext(ctx).
		Order("count DESC").
		Order("hashtag ASC").
		Limit(limit).
		Find(&tags).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}
