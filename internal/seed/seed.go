package seed

import (
	"context"
	"fmt"
	"log"

	"chirp/internal/database"
	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/validation"

	"gorm.io/gorm"
)

// Options configures a Seed run.
type Options struct {
	NumUsers  int
	NumTweets int
	// FollowsPerUser is how many accounts each seeded user follows.
	FollowsPerUser int
	// ReplyRate and InteractionRate are per-tweet percentages.
	ReplyRate       int
	InteractionRate int
	ShouldClean     bool
	Factory         FactoryOptions
}

// DefaultOptions is the demo preset used by cmd/seed.
func DefaultOptions() Options {
	return Options{
		NumUsers:        25,
		NumTweets:       150,
		FollowsPerUser:  5,
		ReplyRate:       30,
		InteractionRate: 60,
	}
}

// Summary counts what a Seed run created.
type Summary struct {
	Users        int
	Tweets       int
	Replies      int
	Follows      int
	Interactions int
	Hashtags     int
}

// Seeder fills a database with a connected graph of demo users and tweets.
type Seeder struct {
	db        *gorm.DB
	factory   *Factory
	relations repository.RelationRepository
	hashtags  repository.HashtagRepository
}

// NewSeeder returns a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts FactoryOptions) (*Seeder, error) {
	factory, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{
		db:        db,
		factory:   factory,
		relations: repository.NewRelationRepository(db),
		hashtags:  repository.NewHashtagRepository(db),
	}, nil
}

// ClearAll deletes every row of every persistent table, edges first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("🗑️  Clearing existing data...")
	tables := database.PersistentModels()
	for i := len(tables) - 1; i >= 0; i-- {
		err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(tables[i]).Error
		if err != nil {
			return fmt.Errorf("clear %T: %w", tables[i], err)
		}
	}
	return nil
}

// Seed runs a full pass: users, follows, tweets, replies, then likes,
// retweets and bookmarks. Hashtag counters are bumped for every tweet.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	s, err := NewSeeder(db, opts.Factory)
	if err != nil {
		return nil, err
	}
	log.Printf("🌱 Seeding %d users and %d tweets...", opts.NumUsers, opts.NumTweets)

	if opts.ShouldClean && !opts.Factory.DryRun {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	sum := &Summary{}
	users, err := s.SeedUsers(ctx, opts.NumUsers)
	if err != nil {
		return nil, err
	}
	sum.Users = len(users)
	log.Printf("✓ %d users created", sum.Users)

	if sum.Follows, err = s.SeedSocialMesh(ctx, users, opts.FollowsPerUser); err != nil {
		return nil, err
	}
	log.Printf("✓ %d follows created", sum.Follows)

	tweets, err := s.SeedTweets(ctx, users, opts.NumTweets)
	if err != nil {
		return nil, err
	}
	sum.Tweets = len(tweets)
	tags := make(map[string]struct{})
	for _, t := range tweets {
		for _, tag := range validation.ExtractHashtags(t.Text) {
			tags[tag] = struct{}{}
		}
	}
	sum.Hashtags = len(tags)
	log.Printf("✓ %d tweets created across %d hashtags", sum.Tweets, sum.Hashtags)

	if sum.Replies, sum.Interactions, err = s.SeedEngagement(ctx, users, tweets, opts.ReplyRate, opts.InteractionRate); err != nil {
		return nil, err
	}
	log.Printf("✓ %d replies and %d interactions created", sum.Replies, sum.Interactions)

	log.Println("🎉 Database seeding completed successfully!")
	return sum, nil
}

// SeedUsers creates n users.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for range n {
		u, err := s.factory.CreateUser(ctx)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// SeedSocialMesh makes every user follow up to perUser distinct others and
// returns how many follow edges were created.
func (s *Seeder) SeedSocialMesh(ctx context.Context, users []*models.User, perUser int) (int, error) {
	if len(users) < 2 || perUser <= 0 {
		return 0, nil
	}
	if perUser > len(users)-1 {
		perUser = len(users) - 1
	}

	created := 0
	for i, u := range users {
		for _, offset := range s.factory.rng.Perm(len(users) - 1)[:perUser] {
			// offsets skip i so nobody follows themselves
			target := users[(i+1+offset)%len(users)]
			if s.factory.opts.DryRun {
				created++
				continue
			}
			ok, err := s.relations.Follow(ctx, u.ID, target.ID)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}

// SeedTweets creates n root tweets spread across users.
func (s *Seeder) SeedTweets(ctx context.Context, users []*models.User, n int) ([]*models.Tweet, error) {
	if len(users) == 0 {
		return nil, nil
	}
	tweets := make([]*models.Tweet, 0, n)
	for range n {
		author := users[s.factory.rng.Intn(len(users))]
		t, err := s.factory.CreateTweet(ctx, author)
		if err != nil {
			return nil, err
		}
		if !s.factory.opts.DryRun {
			if err := s.hashtags.Increment(ctx, validation.ExtractHashtags(t.Text)); err != nil {
				return nil, err
			}
		}
		tweets = append(tweets, t)
	}
	return tweets, nil
}

var interactionKinds = []models.RelationKind{
	models.RelationLike,
	models.RelationRetweet,
	models.RelationBookmark,
}

// SeedEngagement adds replies and like/retweet/bookmark edges. Rates are
// percentages in [0,100] applied per tweet and per user.
func (s *Seeder) SeedEngagement(ctx context.Context, users []*models.User, tweets []*models.Tweet, replyRate, interactionRate int) (replies, interactions int, err error) {
	if len(users) == 0 {
		return 0, 0, nil
	}
	rng := s.factory.rng
	for _, t := range tweets {
		if rng.Intn(100) < replyRate {
			author := users[rng.Intn(len(users))]
			if _, err := s.factory.CreateReply(ctx, author, t); err != nil {
				return replies, interactions, err
			}
			replies++
		}

		for _, u := range users {
			if rng.Intn(100) >= interactionRate/len(interactionKinds) {
				continue
			}
			kind := interactionKinds[rng.Intn(len(interactionKinds))]
			if s.factory.opts.DryRun {
				interactions++
				continue
			}
			added, err := s.relations.Toggle(ctx, kind, u.ID, t.ID)
			if err != nil {
				return replies, interactions, err
			}
			if added {
				interactions++
			} else {
				interactions--
			}
		}
	}
	return replies, interactions, nil
}
