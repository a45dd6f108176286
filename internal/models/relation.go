package models

import "time"

// RelationKind names a user-to-tweet edge.
type RelationKind string

const (
	RelationLike     RelationKind = "like"
	RelationRetweet  RelationKind = "retweet"
	RelationBookmark RelationKind = "bookmark"
)

// TweetRelation is one like, retweet or bookmark. User.Likes and Tweet.Likes
// (and the retweet/bookmark pairs) are both read from this table.
type TweetRelation struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Kind      RelationKind `gorm:"type:varchar(10);not null;uniqueIndex:idx_tweet_relation" json:"kind"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_tweet_relation;index" json:"user_id"`
	TweetID   uint         `gorm:"not null;uniqueIndex:idx_tweet_relation;index" json:"tweet_id"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Follow is a directed follower -> followee edge.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"followee_id"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReplyLink attaches a reply tweet to its parent and its author.
type ReplyLink struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ReplyID   uint      `gorm:"not null;uniqueIndex" json:"reply_id"`
	ParentID  uint      `gorm:"not null;index" json:"parent_id"`
	CreatedAt time.Time `json:"createdAt"`
}
