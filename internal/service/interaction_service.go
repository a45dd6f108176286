package service

import (
	"context"
	"strings"

	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/repository"
	"chirp/internal/storage"
	"chirp/internal/validation"
)

// EventPublisher delivers interaction events to the affected user.
type EventPublisher interface {
	PublishEvent(ctx context.Context, userID uint, ev notifications.Event) error
}

// HashtagRecorder counts the hashtags of new tweets.
type HashtagRecorder interface {
	RecordAsync(ctx context.Context, text string)
}

type TweetInput struct {
	AuthorID   uint
	Text       string
	Attachment *Attachment
}

type UpdateTweetInput struct {
	UserID     uint
	TweetID    uint
	Text       string
	Attachment *Attachment
}

// InteractionService applies every write that touches both a user and a
// tweet. Each two-sided change is a single edge row written by the relation
// repository, so the user-side and tweet-side collections cannot diverge.
type InteractionService struct {
	users     repository.UserRepository
	tweets    repository.TweetRepository
	relations repository.RelationRepository
	store     storage.Store
	publisher EventPublisher
	hashtags  HashtagRecorder
}

func NewInteractionService(
	users repository.UserRepository,
	tweets repository.TweetRepository,
	relations repository.RelationRepository,
	store storage.Store,
	publisher EventPublisher,
	hashtags HashtagRecorder,
) *InteractionService {
	return &InteractionService{
		users:     users,
		tweets:    tweets,
		relations: relations,
		store:     store,
		publisher: publisher,
		hashtags:  hashtags,
	}
}

func (s *InteractionService) ToggleLike(ctx context.Context, userID, tweetID uint) (bool, error) {
	return s.toggle(ctx, models.RelationLike, userID, tweetID)
}

func (s *InteractionService) ToggleBookmark(ctx context.Context, userID, tweetID uint) (bool, error) {
	return s.toggle(ctx, models.RelationBookmark, userID, tweetID)
}

func (s *InteractionService) ToggleRetweet(ctx context.Context, userID, tweetID uint) (bool, error) {
	return s.toggle(ctx, models.RelationRetweet, userID, tweetID)
}

// toggle reports true when the relation was added and false when removed.
func (s *InteractionService) toggle(ctx context.Context, kind models.RelationKind, userID, tweetID uint) (bool, error) {
	tweet, err := s.tweets.GetByID(ctx, tweetID)
	if err != nil {
		return false, err
	}
	added, err := s.relations.Toggle(ctx, kind, userID, tweetID)
	if err != nil {
		return false, err
	}

	middleware.RecordInteraction(string(kind), added)
	s.notify(ctx, tweet.PostBy, notifications.Event{Type: string(kind), ActorID: userID, TweetID: tweetID, Added: added})
	return added, nil
}

// GetTweet returns a tweet with its collections loaded.
func (s *InteractionService) GetTweet(ctx context.Context, tweetID uint) (*models.Tweet, error) {
	tweet, err := s.tweets.GetByID(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if err := s.relations.LoadTweetCollections(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

func (s *InteractionService) CreateTweet(ctx context.Context, in TweetInput) (*models.Tweet, error) {
	tweet, err := s.buildTweet(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.tweets.Create(ctx, tweet); err != nil {
		s.releaseTweetMedia(ctx, tweet)
		return nil, err
	}

	middleware.RecordInteraction("tweet", true)
	s.recordHashtags(ctx, tweet.Text)
	return s.withCollections(ctx, tweet)
}

// CreateReply adds a reply under parentID. The reply and both reply-list
// entries are written in one transaction.
func (s *InteractionService) CreateReply(ctx context.Context, parentID uint, in TweetInput) (*models.Tweet, error) {
	parent, err := s.tweets.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	reply, err := s.buildTweet(ctx, in)
	if err != nil {
		return nil, err
	}
	reply.ParentTweet = &parent.ID
	reply.IsReply = true
	if err := s.tweets.CreateReply(ctx, reply); err != nil {
		s.releaseTweetMedia(ctx, reply)
		return nil, err
	}

	middleware.RecordInteraction("reply", true)
	s.recordHashtags(ctx, reply.Text)
	s.notify(ctx, parent.PostBy, notifications.Event{Type: notifications.EventReply, ActorID: in.AuthorID, TweetID: reply.ID, Added: true})
	return s.withCollections(ctx, reply)
}

// buildTweet validates text before any media is uploaded.
func (s *InteractionService) buildTweet(ctx context.Context, in TweetInput) (*models.Tweet, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewValidationError("Tweet must contain a text")
	}
	if err := validation.ValidateTweetText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	tweet := &models.Tweet{Text: in.Text, PostBy: in.AuthorID}
	if in.Attachment != nil {
		media, err := s.upload(ctx, in.Attachment, "Please specify file type")
		if err != nil {
			return nil, err
		}
		tweet.SetMedia(media)
	}
	return tweet, nil
}

func (s *InteractionService) upload(ctx context.Context, a *Attachment, missingKind string) (*models.Media, error) {
	kind, err := validateAttachment(a, missingKind)
	if err != nil {
		return nil, err
	}
	file := a.File
	file.Kind = kind
	return s.store.Upload(ctx, file)
}

// UpdateTweet edits text and/or replaces the attachment of the caller's tweet.
func (s *InteractionService) UpdateTweet(ctx context.Context, in UpdateTweetInput) (*models.Tweet, error) {
	tweet, err := s.tweets.GetByID(ctx, in.TweetID)
	if err != nil {
		return nil, err
	}
	if tweet.PostBy != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own tweets")
	}
	if in.Text == "" && in.Attachment == nil {
		return nil, models.NewValidationError("Nothing to update")
	}
	if in.Text != "" {
		if err := validation.ValidateTweetText(in.Text); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		tweet.Text = in.Text
	}

	previous := tweet.Attachment()
	if in.Attachment != nil {
		media, err := s.upload(ctx, in.Attachment, "Please specify attachment type")
		if err != nil {
			return nil, err
		}
		tweet.SetMedia(media)
	}

	if err := s.tweets.Update(ctx, tweet); err != nil {
		if in.Attachment != nil {
			s.releaseTweetMedia(ctx, tweet)
		}
		return nil, err
	}
	if in.Attachment != nil && previous != nil {
		releaseMedia(ctx, s.store, previous.PublicID, previous.ResourceType)
	}
	return s.withCollections(ctx, tweet)
}

// DeleteTweet removes the caller's own tweet.
func (s *InteractionService) DeleteTweet(ctx context.Context, userID, tweetID uint) error {
	tweet, err := s.tweets.GetByID(ctx, tweetID)
	if err != nil {
		return err
	}
	if tweet.PostBy != userID {
		return models.NewForbiddenError("You only delete your own tweets")
	}
	return s.deleteTweet(ctx, tweet)
}

// AdminDeleteTweet removes any tweet written by a non-admin account.
func (s *InteractionService) AdminDeleteTweet(ctx context.Context, tweetID uint) error {
	tweet, err := s.tweets.GetByID(ctx, tweetID)
	if err != nil {
		return err
	}
	author, err := s.users.GetByID(ctx, tweet.PostBy)
	if err != nil && !models.IsCode(err, models.CodeNotFound) {
		return err
	}
	if author != nil && author.Role != models.RoleUser {
		return models.NewForbiddenError("Cannot delete post by another admin")
	}
	return s.deleteTweet(ctx, tweet)
}

// deleteTweet drops the tweet, the likes, retweets and bookmarks on it, and
// its entry in its parent's and author's reply lists. Replies to the tweet
// are kept.
func (s *InteractionService) deleteTweet(ctx context.Context, tweet *models.Tweet) error {
	if err := s.tweets.Delete(ctx, tweet); err != nil {
		return err
	}
	s.releaseTweetMedia(ctx, tweet)
	middleware.RecordInteraction("tweet", false)
	return nil
}

func (s *InteractionService) releaseTweetMedia(ctx context.Context, tweet *models.Tweet) {
	if m := tweet.Attachment(); m != nil {
		releaseMedia(ctx, s.store, m.PublicID, m.ResourceType)
	}
}

func (s *InteractionService) Follow(ctx context.Context, followerID, targetID uint) error {
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	if followerID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}
	created, err := s.relations.Follow(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if !created {
		return models.NewConflictError("You are already following the user")
	}

	middleware.RecordInteraction("follow", true)
	s.notify(ctx, targetID, notifications.Event{Type: notifications.EventFollow, ActorID: followerID, Added: true})
	return nil
}

func (s *InteractionService) Unfollow(ctx context.Context, followerID, targetID uint) error {
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	removed, err := s.relations.Unfollow(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewValidationError("You are not following the user")
	}

	middleware.RecordInteraction("follow", false)
	s.notify(ctx, targetID, notifications.Event{Type: notifications.EventFollow, ActorID: followerID, Added: false})
	return nil
}

func (s *InteractionService) withCollections(ctx context.Context, tweet *models.Tweet) (*models.Tweet, error) {
	if err := s.relations.LoadTweetCollections(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

// notify publishes ev to recipient unless they caused it. Publish failures
// never fail the interaction.
func (s *InteractionService) notify(ctx context.Context, recipient uint, ev notifications.Event) {
	if s.publisher == nil || recipient == 0 || recipient == ev.ActorID {
		return
	}
	if err := s.publisher.PublishEvent(ctx, recipient, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			"recipient", recipient, "type", ev.Type, "error", err)
	}
}

func (s *InteractionService) recordHashtags(ctx context.Context, text string) {
	if s.hashtags != nil {
		s.hashtags.RecordAsync(ctx, text)
	}
}
