package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	TweetKeyPrefix    = "tweet:%d"
	TrendingKeyPrefix = "trending:%d"
	BlacklistPrefix   = "blacklist:%s"
)

const (
	TweetTTL    = 10 * time.Minute
	TrendingTTL = time.Minute
)

func TweetKey(tweetID uint) string {
	return fmt.Sprintf(TweetKeyPrefix, tweetID)
}

func TrendingKey(limit int) string {
	return fmt.Sprintf(TrendingKeyPrefix, limit)
}

// BlacklistKey is the revocation marker for a token's jti.
func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistPrefix, jti)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateTweet(ctx context.Context, tweetID uint) {
	Invalidate(ctx, TweetKey(tweetID))
}
