package repository

import (
	"context"
	"errors"

	"chirp/internal/cache"
	"chirp/internal/models"

	"gorm.io/gorm"
)

// TweetRepository defines persistence operations for tweets.
type TweetRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Tweet, error)
	Create(ctx context.Context, tweet *models.Tweet) error
	CreateReply(ctx context.Context, reply *models.Tweet) error
	Update(ctx context.Context, tweet *models.Tweet) error
	Delete(ctx context.Context, tweet *models.Tweet) error
	ListByFollowed(ctx context.Context, followerID uint, limit, offset int) ([]models.Tweet, error)
}

type tweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository returns a new TweetRepository implementation.
func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

func (r *tweetRepository) GetByID(ctx context.Context, id uint) (*models.Tweet, error) {
	var tweet models.Tweet
	err := cache.Aside(ctx, cache.TweetKey(id), &tweet, cache.TweetTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&tweet, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Tweet not found")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Cached copies only carry the computed Media field.
	if tweet.Media != nil && tweet.MediaPublicID == "" {
		tweet.SetMedia(tweet.Media)
	}
	return &tweet, nil
}

func (r *tweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	if err := r.db.WithContext(ctx).Create(tweet).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CreateReply stores reply and links it to its parent and author in one
// transaction. reply.ParentTweet must be set.
func (r *tweetRepository) CreateReply(ctx context.Context, reply *models.Tweet) error {
	if reply.ParentTweet == nil {
		return models.NewValidationError("Reply must reference a parent tweet")
	}
	reply.IsReply = true

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return tx.Create(&models.ReplyLink{
			UserID:   reply.PostBy,
			ReplyID:  reply.ID,
			ParentID: *reply.ParentTweet,
		}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tweetRepository) Update(ctx context.Context, tweet *models.Tweet) error {
	if err := r.db.WithContext(ctx).Save(tweet).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTweet(ctx, tweet.ID)
	return nil
}

// Delete removes the tweet, the likes/retweets/bookmarks pointing at it and
// its own reply link. Replies to it are left in place.
func (r *tweetRepository) Delete(ctx context.Context, tweet *models.Tweet) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tweet_id = ?", tweet.ID).Delete(&models.TweetRelation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reply_id = ?", tweet.ID).Delete(&models.ReplyLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tweet{}, tweet.ID).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTweet(ctx, tweet.ID)
	return nil
}

// ListByFollowed returns root tweets by accounts followerID follows, newest first.
func (r *tweetRepository) ListByFollowed(ctx context.Context, followerID uint, limit, offset int) ([]models.Tweet, error) {
	var tweets []models.Tweet
	err := readDB(r.db).WithContext(ctx).
		Where("is_reply = ? AND post_by IN (?)", false,
			r.db.Model(&models.Follow{}).Select("followee_id").Where("follower_id = ?", followerID)).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&tweets).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tweets, nil
}
