package database

import (
	"chirp/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Tweet{},
		&models.TweetRelation{},
		&models.Follow{},
		&models.ReplyLink{},
		&models.Hashtag{},
	}
}

// AutoMigrate creates or updates every persistent table. Used by tests and
// the auto schema mode.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}
