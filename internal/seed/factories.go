// Package seed creates demo data for development databases and tests.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"chirp/internal/models"
	"chirp/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password of every seeded account.
const DefaultPassword = "password123"

// FactoryOptions tunes how entities are generated.
type FactoryOptions struct {
	// SkipBcrypt stores DefaultPassword unhashed. Only useful for fast
	// throwaway databases; such accounts cannot log in.
	SkipBcrypt bool
	// DryRun assigns synthetic IDs and never writes.
	DryRun bool
	// MaxDays spreads CreatedAt over the last MaxDays days. Zero means 90.
	MaxDays int
}

// Factory builds domain entities and persists them through the repositories.
type Factory struct {
	db     *gorm.DB
	tweets repository.TweetRepository
	opts   FactoryOptions
	rng    *rand.Rand
	nextID uint
	// shared by every seeded user
	password string
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts FactoryOptions) (*Factory, error) {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)

	f := &Factory{
		db:     db,
		tweets: repository.NewTweetRepository(db),
		opts:   opts,
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // demo data
		nextID: 1000,
	}
	if opts.SkipBcrypt {
		f.password = DefaultPassword
		return f, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	f.password = string(hashed)
	return f, nil
}

var topics = []string{
	"golang", "fiber", "postgres", "redis", "webdev", "opensource", "devops",
	"music", "movies", "football", "coffee", "travel", "books", "gaming", "ai",
}

func (f *Factory) pick(list []string) string {
	return list[f.rng.Intn(len(list))]
}

func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

// username returns a lowercase handle that fits the 15 character column.
func (f *Factory) username() string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, gofakeit.Username())
	if len(base) > 11 {
		base = base[:11]
	}
	return fmt.Sprintf("%s%d", base, gofakeit.Number(100, 9999))
}

// CreateUser builds and persists a user. Overrides run before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	username := f.username()
	user := &models.User{
		Name:               gofakeit.Name(),
		Username:           username,
		Email:              username + "@" + gofakeit.DomainName(),
		Password:           f.password,
		Bio:                gofakeit.Sentence(8),
		Location:           gofakeit.City(),
		Website:            gofakeit.URL(),
		Role:               models.RoleUser,
		SubscriptionStatus: models.SubscriptionInactive,
		VerifiedType:       models.VerifiedBlue,
		ProfilePicture: models.Image{
			PublicID: "seed/" + gofakeit.UUID(),
			URL:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		},
	}
	if len(user.Name) > 50 {
		user.Name = user.Name[:50]
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Username, user.Email)
		return user, nil
	}
	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return user, nil
}

// BuildTweet returns an unsaved root tweet by author with zero to two
// hashtags appended.
func (f *Factory) BuildTweet(author *models.User, overrides ...func(*models.Tweet)) *models.Tweet {
	text := gofakeit.Sentence(f.rng.Intn(12) + 4)
	for range f.rng.Intn(3) {
		text += " #" + f.pick(topics)
	}
	tweet := &models.Tweet{
		Text:      text,
		PostBy:    author.ID,
		CreatedAt: f.createdAt(),
	}
	if f.rng.Intn(5) == 0 {
		tweet.SetMedia(&models.Media{
			PublicID:     "seed/" + gofakeit.UUID(),
			URL:          fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
			ResourceType: models.ResourceImage,
		})
	}
	for _, override := range overrides {
		override(tweet)
	}
	return tweet
}

// CreateTweet builds and persists a root tweet.
func (f *Factory) CreateTweet(ctx context.Context, author *models.User, overrides ...func(*models.Tweet)) (*models.Tweet, error) {
	tweet := f.BuildTweet(author, overrides...)
	if f.opts.DryRun {
		f.nextID++
		tweet.ID = f.nextID
		return tweet, nil
	}
	if err := f.tweets.Create(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

// CreateReply persists a reply by author under parent, including its reply
// link.
func (f *Factory) CreateReply(ctx context.Context, author *models.User, parent *models.Tweet) (*models.Tweet, error) {
	parentID := parent.ID
	reply := &models.Tweet{
		Text:        gofakeit.Sentence(f.rng.Intn(8) + 3),
		PostBy:      author.ID,
		ParentTweet: &parentID,
		IsReply:     true,
	}
	if parent.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now()
	} else {
		reply.CreatedAt = parent.CreatedAt.Add(time.Duration(f.rng.Intn(48*60)+1) * time.Minute)
		if reply.CreatedAt.After(time.Now()) {
			reply.CreatedAt = time.Now()
		}
	}
	if f.opts.DryRun {
		f.nextID++
		reply.ID = f.nextID
		return reply, nil
	}
	if err := f.tweets.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}
