// Command main runs the database seeder for chirp.
package main

import (
	"context"
	"flag"
	"log"

	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numTweets := flag.Int("tweets", defaults.NumTweets, "Number of root tweets to create")
	follows := flag.Int("follows", defaults.FollowsPerUser, "Accounts each user follows")
	replyRate := flag.Int("reply-rate", defaults.ReplyRate, "Percentage of tweets that get a reply")
	interactionRate := flag.Int("interaction-rate", defaults.InteractionRate, "Likelihood (percent) of likes, retweets and bookmarks")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d tweets, clean=%v\n", *numUsers, *numTweets, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sum, err := seed.Seed(context.Background(), db, seed.Options{
		NumUsers:        *numUsers,
		NumTweets:       *numTweets,
		FollowsPerUser:  *follows,
		ReplyRate:       *replyRate,
		InteractionRate: *interactionRate,
		ShouldClean:     *shouldClean,
		Factory:         seed.FactoryOptions{DryRun: *dryRun},
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! users=%d tweets=%d replies=%d follows=%d interactions=%d hashtags=%d",
		sum.Users, sum.Tweets, sum.Replies, sum.Follows, sum.Interactions, sum.Hashtags)
	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}
