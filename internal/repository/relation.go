package repository

import (
	"context"

	"chirp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationRepository is the only writer of the user<->tweet and user<->user
// edges. Each edge is a single row, so both sides of a mirrored collection
// always agree.
type RelationRepository interface {
	Toggle(ctx context.Context, kind models.RelationKind, userID, tweetID uint) (added bool, err error)
	UserTweetIDs(ctx context.Context, kind models.RelationKind, userID uint) ([]uint, error)
	TweetUserIDs(ctx context.Context, kind models.RelationKind, tweetID uint) ([]uint, error)
	RootTweetIDs(ctx context.Context, userID uint) ([]uint, error)

	Follow(ctx context.Context, followerID, followeeID uint) (created bool, err error)
	Unfollow(ctx context.Context, followerID, followeeID uint) (removed bool, err error)
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)

	UserReplies(ctx context.Context, userID uint) ([]models.UserReply, error)
	TweetReplies(ctx context.Context, tweetID uint) ([]models.TweetReply, error)

	LoadUserCollections(ctx context.Context, user *models.User) error
	LoadTweetCollections(ctx context.Context, tweet *models.Tweet) error
}

type relationRepository struct {
	db *gorm.DB
}

// NewRelationRepository returns a new RelationRepository implementation.
func NewRelationRepository(db *gorm.DB) RelationRepository {
	return &relationRepository{db: db}
}

// Toggle removes the edge when present and inserts it otherwise, inside one
// transaction. A concurrent insert of the same edge is absorbed by the unique
// index, so repeated calls converge.
func (r *relationRepository) Toggle(ctx context.Context, kind models.RelationKind, userID, tweetID uint) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("kind = ? AND user_id = ? AND tweet_id = ?", kind, userID, tweetID).
			Delete(&models.TweetRelation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			added = false
			return nil
		}

		added = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.TweetRelation{Kind: kind, UserID: userID, TweetID: tweetID}).Error
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return added, nil
}

// UserTweetIDs lists the tweets a user liked, retweeted or bookmarked.
// Retweets are newest first; likes and bookmarks keep insertion order.
func (r *relationRepository) UserTweetIDs(ctx context.Context, kind models.RelationKind, userID uint) ([]uint, error) {
	order := "id ASC"
	if kind == models.RelationRetweet {
		order = "id DESC"
	}
	var ids []uint
	err := readDB(r.db).WithContext(ctx).Model(&models.TweetRelation{}).
		Where("kind = ? AND user_id = ?", kind, userID).
		Order(order).
		Pluck("tweet_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *relationRepository) TweetUserIDs(ctx context.Context, kind models.RelationKind, tweetID uint) ([]uint, error) {
	var ids []uint
	err := readDB(r.db).WithContext(ctx).Model(&models.TweetRelation{}).
		Where("kind = ? AND tweet_id = ?", kind, tweetID).
		Order("id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// RootTweetIDs is the user's tweets collection: root tweets, newest first.
func (r *relationRepository) RootTweetIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := readDB(r.db).WithContext(ctx).Model(&models.Tweet{}).
		Where("post_by = ? AND is_reply = ?", userID, false).
		Order("id DESC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *relationRepository) Follow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID})
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return false, nil
		}
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *relationRepository) Unfollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *relationRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return r.pluckFollow(ctx, "follower_id", "followee_id = ?", userID)
}

func (r *relationRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return r.pluckFollow(ctx, "followee_id", "follower_id = ?", userID)
}

func (r *relationRepository) pluckFollow(ctx context.Context, column, where string, userID uint) ([]uint, error) {
	var ids []uint
	err := readDB(r.db).WithContext(ctx).Model(&models.Follow{}).
		Where(where, userID).
		Order("id ASC").
		Pluck(column, &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *relationRepository) UserReplies(ctx context.Context, userID uint) ([]models.UserReply, error) {
	var links []models.ReplyLink
	err := readDB(r.db).WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&links).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make([]models.UserReply, len(links))
	for i, l := range links {
		out[i] = models.UserReply{ID: l.ReplyID, OriginalID: l.ParentID}
	}
	return out, nil
}

func (r *relationRepository) TweetReplies(ctx context.Context, tweetID uint) ([]models.TweetReply, error) {
	var links []models.ReplyLink
	err := readDB(r.db).WithContext(ctx).Where("parent_id = ?", tweetID).Order("id ASC").Find(&links).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make([]models.TweetReply, len(links))
	for i, l := range links {
		out[i] = models.TweetReply{UserID: l.UserID, TweetID: l.ReplyID}
	}
	return out, nil
}

// LoadUserCollections fills every relationship projection on user.
func (r *relationRepository) LoadUserCollections(ctx context.Context, user *models.User) error {
	var err error
	if user.Followers, err = r.FollowerIDs(ctx, user.ID); err != nil {
		return err
	}
	if user.Following, err = r.FollowingIDs(ctx, user.ID); err != nil {
		return err
	}
	if user.Tweets, err = r.RootTweetIDs(ctx, user.ID); err != nil {
		return err
	}
	if user.Retweets, err = r.UserTweetIDs(ctx, models.RelationRetweet, user.ID); err != nil {
		return err
	}
	if user.Likes, err = r.UserTweetIDs(ctx, models.RelationLike, user.ID); err != nil {
		return err
	}
	if user.Bookmarks, err = r.UserTweetIDs(ctx, models.RelationBookmark, user.ID); err != nil {
		return err
	}
	user.Replies, err = r.UserReplies(ctx, user.ID)
	return err
}

// LoadTweetCollections fills every relationship projection on tweet.
func (r *relationRepository) LoadTweetCollections(ctx context.Context, tweet *models.Tweet) error {
	var err error
	if tweet.Likes, err = r.TweetUserIDs(ctx, models.RelationLike, tweet.ID); err != nil {
		return err
	}
	if tweet.Retweets, err = r.TweetUserIDs(ctx, models.RelationRetweet, tweet.ID); err != nil {
		return err
	}
	if tweet.Bookmarks, err = r.TweetUserIDs(ctx, models.RelationBookmark, tweet.ID); err != nil {
		return err
	}
	tweet.Replies, err = r.TweetReplies(ctx, tweet.ID)
	return err
}
