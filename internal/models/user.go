// Package models contains the persisted domain types and the API error type.
package models

import (
	"time"
)

// Role is a user's privilege level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// SubscriptionStatus tracks whether a user holds an active or verified plan.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionTick     SubscriptionStatus = "tick"
)

// VerifiedType is the colour of a user's verified badge.
type VerifiedType string

const (
	VerifiedBlue  VerifiedType = "blue"
	VerifiedGold  VerifiedType = "gold"
	VerifiedGrey  VerifiedType = "grey"
	VerifiedBlack VerifiedType = "black"
)

// Valid reports whether v is a known badge type.
func (v VerifiedType) Valid() bool {
	switch v {
	case VerifiedBlue, VerifiedGold, VerifiedGrey, VerifiedBlack:
		return true
	}
	return false
}

// DefaultLocation is stored for users who never set one.
const DefaultLocation = "Somewhere in the universe"

// Image references an uploaded picture in object storage.
type Image struct {
	PublicID string `gorm:"column:public_id" json:"public_id"`
	URL      string `gorm:"column:url" json:"url"`
}

// IsZero reports whether no image is attached.
func (i Image) IsZero() bool {
	return i.PublicID == "" && i.URL == ""
}

// User is an account. The relationship collections are projections of the
// edge tables and are only populated by the repository layer on request.
type User struct {
	ID                 uint               `gorm:"primaryKey" json:"id"`
	Name               string             `gorm:"size:50;not null" json:"name"`
	Username           string             `gorm:"size:15;uniqueIndex;not null" json:"username"`
	Email              string             `gorm:"uniqueIndex;not null" json:"email"`
	Password           string             `gorm:"not null" json:"-"`
	Bio                string             `gorm:"type:text" json:"bio"`
	Location           string             `gorm:"default:'Somewhere in the universe'" json:"location"`
	Website            string             `json:"website"`
	ProfilePicture     Image              `gorm:"embedded;embeddedPrefix:profile_picture_" json:"profilePicture"`
	PosterPicture      Image              `gorm:"embedded;embeddedPrefix:poster_picture_" json:"posterPicture"`
	Role               Role               `gorm:"type:varchar(10);not null;default:'user'" json:"role"`
	SubscriptionStatus SubscriptionStatus `gorm:"type:varchar(10);not null;default:'inactive'" json:"subscriptionStatus"`
	SubscriptionID     string             `json:"subscriptionId,omitempty"`
	VerifiedType       VerifiedType       `gorm:"type:varchar(10);not null;default:'blue'" json:"verifiedType"`
	ProfileViews       int64              `gorm:"not null;default:0" json:"profileViews"`

	ResetPasswordToken  string     `gorm:"index" json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Followers []uint      `gorm:"-" json:"followers"`
	Following []uint      `gorm:"-" json:"following"`
	Tweets    []uint      `gorm:"-" json:"tweets"`
	Retweets  []uint      `gorm:"-" json:"retweets"`
	Likes     []uint      `gorm:"-" json:"likes"`
	Bookmarks []uint      `gorm:"-" json:"bookmarks"`
	Replies   []UserReply `gorm:"-" json:"replies"`
}

// UserReply is an entry of User.Replies: the reply and the tweet it answers.
type UserReply struct {
	ID         uint `json:"id"`
	OriginalID uint `json:"originalId"`
}

// IsAdmin reports whether the user holds the admin or owner role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleOwner
}

// BasicUser is the public card shown for a user.
type BasicUser struct {
	ID             uint         `json:"id"`
	Name           string       `json:"name"`
	Username       string       `json:"username"`
	Bio            string       `json:"bio"`
	ProfilePicture Image        `json:"profilePicture"`
	VerifiedType   VerifiedType `json:"verifiedType"`
	Role           Role         `json:"role"`
	Subscription   string       `json:"subscriptionStatus"`
}

// Basic projects u onto its public card.
func (u *User) Basic() BasicUser {
	return BasicUser{
		ID:             u.ID,
		Name:           u.Name,
		Username:       u.Username,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		VerifiedType:   u.VerifiedType,
		Role:           u.Role,
		Subscription:   string(u.SubscriptionStatus),
	}
}
