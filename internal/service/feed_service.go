package service

import (
	"context"
	"math"

	"chirp/internal/featureflags"
	"chirp/internal/models"
	"chirp/internal/repository"
)

// Collection names a user's ordered tweet-id sequence.
type Collection string

const (
	CollectionTweets   Collection = "tweets"
	CollectionLikes    Collection = "likes"
	CollectionRetweets Collection = "retweets"
)

// Page selects a window of a collection: entries [Page*Limit, Page*Limit+Limit).
type Page struct {
	Page  int
	Limit int
}

// MaxPage is the largest page index whose offset fits in an int at any
// limit up to MaxPageLimit.
const (
	MaxPageLimit = 100
	MaxPage      = math.MaxInt / MaxPageLimit
)

func (p Page) bounds(n int) (int, int) {
	if n <= 0 || p.Limit <= 0 || p.Page < 0 || p.Page > (n-1)/p.Limit {
		return n, n
	}
	start := p.Page * p.Limit
	return start, min(start+p.Limit, n)
}

// offset is Page*Limit, or false when that would overflow.
func (p Page) offset() (int, bool) {
	if p.Limit <= 0 || p.Page < 0 || p.Page > math.MaxInt/p.Limit {
		return 0, false
	}
	return p.Page * p.Limit, true
}

// ReplyEntry pairs a reply with the tweet it answers. Either side is nil
// when that tweet has been deleted.
type ReplyEntry struct {
	Reply         *models.Tweet `json:"reply"`
	OriginalTweet *models.Tweet `json:"originalTweet"`
}

// FeedService pages over a user's stored id sequences and resolves each id
// to a tweet. Offsets index into the sequence as it is at read time, so a
// tweet prepended between two page requests shifts later pages by one.
type FeedService struct {
	users     repository.UserRepository
	tweets    repository.TweetRepository
	relations repository.RelationRepository
	flags     *featureflags.Manager
}

func NewFeedService(
	users repository.UserRepository,
	tweets repository.TweetRepository,
	relations repository.RelationRepository,
	flags *featureflags.Manager,
) *FeedService {
	return &FeedService{users: users, tweets: tweets, relations: relations, flags: flags}
}

// Tweets resolves one page of ownerID's tweets, likes or retweets. Deleted
// tweets yield nil entries.
func (s *FeedService) Tweets(ctx context.Context, ownerID uint, c Collection, p Page) ([]*models.Tweet, error) {
	if err := s.ensureOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	var (
		ids []uint
		err error
	)
	switch c {
	case CollectionTweets:
		ids, err = s.relations.RootTweetIDs(ctx, ownerID)
	case CollectionLikes:
		ids, err = s.relations.UserTweetIDs(ctx, models.RelationLike, ownerID)
	case CollectionRetweets:
		ids, err = s.relations.UserTweetIDs(ctx, models.RelationRetweet, ownerID)
	default:
		return nil, models.NewValidationError("Unknown collection")
	}
	if err != nil {
		return nil, err
	}

	start, end := p.bounds(len(ids))
	out := make([]*models.Tweet, 0, end-start)
	for _, id := range ids[start:end] {
		tweet, err := s.resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, tweet)
	}
	return out, nil
}

// Replies resolves one page of ownerID's replies with their original tweets.
func (s *FeedService) Replies(ctx context.Context, ownerID uint, p Page) ([]ReplyEntry, error) {
	if err := s.ensureOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	links, err := s.relations.UserReplies(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	start, end := p.bounds(len(links))
	out := make([]ReplyEntry, 0, end-start)
	for _, link := range links[start:end] {
		reply, err := s.resolve(ctx, link.ID)
		if err != nil {
			return nil, err
		}
		original, err := s.resolve(ctx, link.OriginalID)
		if err != nil {
			return nil, err
		}
		out = append(out, ReplyEntry{Reply: reply, OriginalTweet: original})
	}
	return out, nil
}

// HomeEnabled reports whether userID may read the home timeline.
func (s *FeedService) HomeEnabled(userID uint) bool {
	return s.flags.Enabled(featureflags.HomeTimeline, userID)
}

// Home returns root tweets of accounts userID follows, newest first, paged
// in the database.
func (s *FeedService) Home(ctx context.Context, userID uint, p Page) ([]*models.Tweet, error) {
	if !s.HomeEnabled(userID) {
		return nil, models.NewNotFoundError("Feed is not available")
	}
	offset, ok := p.offset()
	if !ok {
		return []*models.Tweet{}, nil
	}
	tweets, err := s.tweets.ListByFollowed(ctx, userID, p.Limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Tweet, len(tweets))
	for i := range tweets {
		if err := s.relations.LoadTweetCollections(ctx, &tweets[i]); err != nil {
			return nil, err
		}
		out[i] = &tweets[i]
	}
	return out, nil
}

func (s *FeedService) ensureOwner(ctx context.Context, ownerID uint) error {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return models.NewNotFoundError("Invalid user id")
		}
		return err
	}
	return nil
}

func (s *FeedService) resolve(ctx context.Context, id uint) (*models.Tweet, error) {
	tweet, err := s.tweets.GetByID(ctx, id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.relations.LoadTweetCollections(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}
