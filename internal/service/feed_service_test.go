package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tweetIDs(t *testing.T, tweets []*models.Tweet) []uint {
	t.Helper()
	out := make([]uint, len(tweets))
	for i, tw := range tweets {
		if tw != nil {
			out[i] = tw.ID
		}
	}
	return out
}

func TestFeedTweets_Pagination(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()
	author := e.createUser(t, "author")

	var created []uint
	for i := 0; i < 12; i++ {
		created = append(created, e.createTweet(t, author.ID, fmt.Sprintf("tweet number %d", i)).ID)
	}

	page0, err := e.feed.Tweets(ctx, author.ID, CollectionTweets, Page{Page: 0, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []uint{created[11], created[10], created[9], created[8], created[7]}, tweetIDs(t, page0))

	page2, err := e.feed.Tweets(ctx, author.ID, CollectionTweets, Page{Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []uint{created[1], created[0]}, tweetIDs(t, page2))

	page3, err := e.feed.Tweets(ctx, author.ID, CollectionTweets, Page{Page: 3, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, page3)
}

func TestFeedTweets_HugePageIsEmpty(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()
	author := e.createUser(t, "author")
	for i := range 3 {
		e.createTweet(t, author.ID, fmt.Sprintf("tweet number %d", i))
	}

	// 6148914691236517206 * 3 wraps around to 2 on 64-bit ints.
	for _, page := range []int{6148914691236517206, math.MaxInt, MaxPage} {
		tweets, err := e.feed.Tweets(ctx, author.ID, CollectionTweets, Page{Page: page, Limit: 3})
		require.NoError(t, err)
		assert.Empty(t, tweets, "page %d", page)
	}
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		page       Page
		n          int
		start, end int
	}{
		{Page{Page: 0, Limit: 5}, 12, 0, 5},
		{Page{Page: 2, Limit: 5}, 12, 10, 12},
		{Page{Page: 3, Limit: 5}, 12, 12, 12},
		{Page{Page: 0, Limit: 5}, 0, 0, 0},
		{Page{Page: 0, Limit: 0}, 4, 4, 4},
		{Page{Page: math.MaxInt / 2, Limit: 4}, 4, 4, 4},
	}
	for _, tt := range tests {
		start, end := tt.page.bounds(tt.n)
		assert.Equal(t, []int{tt.start, tt.end}, []int{start, end}, "%+v of %d", tt.page, tt.n)
	}

	_, ok := Page{Page: math.MaxInt, Limit: 2}.offset()
	assert.False(t, ok)
	off, ok := Page{Page: MaxPage, Limit: MaxPageLimit}.offset()
	assert.True(t, ok)
	assert.Equal(t, MaxPage*MaxPageLimit, off)
}

func TestFeedTweets_DeletedTweetYieldsNilSlot(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()
	author := e.createUser(t, "author")
	fan := e.createUser(t, "fan")

	kept := e.createTweet(t, author.ID, "this one stays")
	gone := e.createTweet(t, author.ID, "this one goes")
	for _, id := range []uint{kept.ID, gone.ID} {
		_, err := e.interactions.ToggleRetweet(ctx, fan.ID, id)
		require.NoError(t, err)
	}

	// The relation rows are dropped with the tweet, so remove only the row
	// to simulate a retweet that outlived its tweet.
	require.NoError(t, e.db.Exec("DELETE FROM tweets WHERE id = ?", gone.ID).Error)

	retweets, err := e.feed.Tweets(ctx, fan.ID, CollectionRetweets, Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, retweets, 2)
	assert.Nil(t, retweets[0])
	require.NotNil(t, retweets[1])
	assert.Equal(t, kept.ID, retweets[1].ID)
	assert.Equal(t, []uint{fan.ID}, retweets[1].Retweets)
}

func TestFeedLikes(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()
	author := e.createUser(t, "author")
	fan := e.createUser(t, "fan")
	first := e.createTweet(t, author.ID, "first tweet")
	second := e.createTweet(t, author.ID, "second tweet")

	for _, id := range []uint{first.ID, second.ID} {
		_, err := e.interactions.ToggleLike(ctx, fan.ID, id)
		require.NoError(t, err)
	}

	likes, err := e.feed.Tweets(ctx, fan.ID, CollectionLikes, Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uint{first.ID, second.ID}, tweetIDs(t, likes))
}

func TestFeedReplies_OriginalDeleted(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()
	author := e.createUser(t, "author")
	replier := e.createUser(t, "replier")

	root := e.createTweet(t, author.ID, "root tweet")
	other := e.createTweet(t, author.ID, "other root")
	r1 := e.reply(t, replier.ID, root.ID, "reply to root")
	r2 := e.reply(t, replier.ID, other.ID, "reply to other")

	require.NoError(t, e.interactions.DeleteTweet(ctx, author.ID, root.ID))

	entries, err := e.feed.Replies(ctx, replier.ID, Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, r1.ID, entries[0].Reply.ID)
	assert.Nil(t, entries[0].OriginalTweet)
	assert.Equal(t, r2.ID, entries[1].Reply.ID)
	require.NotNil(t, entries[1].OriginalTweet)
	assert.Equal(t, other.ID, entries[1].OriginalTweet.ID)

	entries, err = e.feed.Replies(ctx, replier.ID, Page{Page: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, r2.ID, entries[0].Reply.ID)
}

func TestFeed_UnknownOwner(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()

	_, err := e.feed.Tweets(ctx, 999, CollectionTweets, Page{Limit: 10})
	assert.EqualError(t, err, "Invalid user id")
	assert.Equal(t, 404, statusOf(t, err))

	_, err = e.feed.Replies(ctx, 999, Page{Limit: 10})
	assert.EqualError(t, err, "Invalid user id")
}

func TestFeedHome(t *testing.T) {
	t.Run("flag off", func(t *testing.T) {
		e := newTestEnv(t, "")
		u := e.createUser(t, "alice")
		assert.False(t, e.feed.HomeEnabled(u.ID))
		_, err := e.feed.Home(context.Background(), u.ID, Page{Limit: 10})
		assert.Equal(t, 404, statusOf(t, err))
	})

	t.Run("flag on", func(t *testing.T) {
		e := newTestEnv(t, "home_timeline=on")
		ctx := context.Background()
		alice := e.createUser(t, "alice")
		bob := e.createUser(t, "bob")
		carol := e.createUser(t, "carol")
		require.NoError(t, e.interactions.Follow(ctx, alice.ID, bob.ID))

		older := e.createTweet(t, bob.ID, "bob tweets first")
		e.createTweet(t, carol.ID, "carol is not followed")
		newer := e.createTweet(t, bob.ID, "bob tweets again")
		e.reply(t, bob.ID, older.ID, "replies stay out of the feed")

		feed, err := e.feed.Home(ctx, alice.ID, Page{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []uint{newer.ID, older.ID}, tweetIDs(t, feed))

		feed, err = e.feed.Home(ctx, alice.ID, Page{Page: 1, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []uint{older.ID}, tweetIDs(t, feed))

		feed, err = e.feed.Home(ctx, alice.ID, Page{Page: math.MaxInt, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, feed)
	})
}
