package service

import (
	"context"
	"testing"

	"chirp/internal/auth"
	"chirp/internal/featureflags"
	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "password123"

type testEnv struct {
	db        *gorm.DB
	users     repository.UserRepository
	tweets    repository.TweetRepository
	relations repository.RelationRepository
	hashtags  repository.HashtagRepository

	store     *testutil.MediaStore
	mailer    *testutil.Mailer
	publisher *testutil.Publisher
	hasher    auth.PasswordHasher
	tokens    *auth.TokenManager

	accounts     *AccountService
	interactions *InteractionService
	feed         *FeedService
	admin        *AdminService
	trending     *TrendingService
}

func newTestEnv(t *testing.T, flags string) *testEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	e := &testEnv{
		db:        db,
		users:     repository.NewUserRepository(db),
		tweets:    repository.NewTweetRepository(db),
		relations: repository.NewRelationRepository(db),
		hashtags:  repository.NewHashtagRepository(db),
		store:     testutil.NewMediaStore(),
		mailer:    testutil.NewMailer(),
		publisher: testutil.NewPublisher(),
		hasher:    &auth.BcryptHasher{Cost: bcrypt.MinCost},
		tokens:    auth.NewTokenManager("test-secret-that-is-at-least-32-chars", 15, nil),
	}
	ff := featureflags.NewManager(flags)

	e.trending = NewTrendingService(e.hashtags, ff)
	e.accounts = NewAccountService(e.users, e.relations, e.hasher, e.tokens, e.store, e.mailer, "http://localhost:5173/")
	e.interactions = NewInteractionService(e.users, e.tweets, e.relations, e.store, e.publisher, e.trending)
	e.feed = NewFeedService(e.users, e.tweets, e.relations, ff)
	e.admin = NewAdminService(e.users, e.store)
	t.Cleanup(e.trending.Wait)
	return e
}

func (e *testEnv) createUser(t *testing.T, username string, mutate ...func(*models.User)) *models.User {
	t.Helper()
	hashed, err := e.hasher.Hash(testPassword)
	require.NoError(t, err)
	u := &models.User{
		Name:               "User " + username,
		Username:           username,
		Email:              username + "@chirp.test",
		Password:           hashed,
		Location:           models.DefaultLocation,
		Role:               models.RoleUser,
		SubscriptionStatus: models.SubscriptionInactive,
		VerifiedType:       models.VerifiedBlue,
	}
	for _, m := range mutate {
		m(u)
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) createTweet(t *testing.T, authorID uint, text string) *models.Tweet {
	t.Helper()
	tweet, err := e.interactions.CreateTweet(context.Background(), TweetInput{AuthorID: authorID, Text: text})
	require.NoError(t, err)
	return tweet
}

func (e *testEnv) reply(t *testing.T, authorID, parentID uint, text string) *models.Tweet {
	t.Helper()
	reply, err := e.interactions.CreateReply(context.Background(), parentID, TweetInput{AuthorID: authorID, Text: text})
	require.NoError(t, err)
	return reply
}

func (e *testEnv) me(t *testing.T, userID uint) *models.User {
	t.Helper()
	u, err := e.accounts.Me(context.Background(), userID)
	require.NoError(t, err)
	return u
}

func (e *testEnv) tweet(t *testing.T, tweetID uint) *models.Tweet {
	t.Helper()
	tw, err := e.interactions.GetTweet(context.Background(), tweetID)
	require.NoError(t, err)
	return tw
}

func asAdmin(u *models.User) {
	u.Role = models.RoleAdmin
	u.SubscriptionStatus = models.SubscriptionTick
}

func asOwner(u *models.User) {
	u.Role = models.RoleOwner
	u.SubscriptionStatus = models.SubscriptionTick
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.HTTPStatus()
}
