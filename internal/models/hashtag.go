package models

import "time"

// Hashtag is a trending counter.
type Hashtag struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Hashtag   string    `gorm:"uniqueIndex;not null" json:"hashtag"`
	Count     int64     `gorm:"not null;default:1" json:"count"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
