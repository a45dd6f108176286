package models

import (
	"time"

	"gorm.io/gorm"
)

// ResourceType is the kind of media attached to a tweet. It selects the
// storage deletion mode when the media is released.
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
)

// Valid reports whether r is a supported attachment kind.
func (r ResourceType) Valid() bool {
	return r == ResourceImage || r == ResourceVideo
}

// Media is a tweet attachment.
type Media struct {
	PublicID     string       `json:"public_id"`
	URL          string       `json:"url"`
	ResourceType ResourceType `json:"resourceType"`
}

// Tweet is a root post or, when IsReply is set, a reply to ParentTweet.
type Tweet struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Text          string       `gorm:"type:text;not null" json:"text"`
	PostBy        uint         `gorm:"not null;index" json:"postBy"`
	MediaPublicID string       `json:"-"`
	MediaURL      string       `json:"-"`
	MediaType     ResourceType `gorm:"type:varchar(10)" json:"-"`
	ParentTweet   *uint        `gorm:"index" json:"parentTweet"`
	IsReply       bool         `gorm:"not null;default:false" json:"isReply"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`

	Media     *Media       `gorm:"-" json:"media,omitempty"`
	Likes     []uint       `gorm:"-" json:"likes"`
	Retweets  []uint       `gorm:"-" json:"retweets"`
	Bookmarks []uint       `gorm:"-" json:"bookmarks"`
	Replies   []TweetReply `gorm:"-" json:"replies"`
}

// TweetReply is an entry of Tweet.Replies.
type TweetReply struct {
	UserID  uint `json:"user_id"`
	TweetID uint `json:"tweet_id"`
}

// SetMedia stores m in the flat media columns; nil clears them.
func (t *Tweet) SetMedia(m *Media) {
	if m == nil {
		t.MediaPublicID, t.MediaURL, t.MediaType = "", "", ""
		t.Media = nil
		return
	}
	t.MediaPublicID, t.MediaURL, t.MediaType = m.PublicID, m.URL, m.ResourceType
	t.Media = m
}

// Attachment returns the tweet's media or nil.
func (t *Tweet) Attachment() *Media {
	if t.MediaPublicID == "" {
		return nil
	}
	return &Media{PublicID: t.MediaPublicID, URL: t.MediaURL, ResourceType: t.MediaType}
}

// AfterFind fills the computed Media field.
func (t *Tweet) AfterFind(_ *gorm.DB) error {
	t.Media = t.Attachment()
	return nil
}
