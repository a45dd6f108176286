package server

import (
	"fmt"
	"net/http"
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTweet_Validation(t *testing.T) {
	ts := newTestServer(t, "", nil)
	_, token := ts.register(t, "writer")

	unauth := ts.call(t, http.MethodPost, "/api/v1/tweet", map[string]string{"text": "hello world"}, "")
	assert.Equal(t, http.StatusUnauthorized, unauth.status)

	empty := ts.call(t, http.MethodPost, "/api/v1/tweet", map[string]string{"text": ""}, token)
	assert.Equal(t, http.StatusBadRequest, empty.status)
	assert.Equal(t, "Tweet must contain a text", empty.message())

	created := ts.call(t, http.MethodPost, "/api/v1/tweet", map[string]string{"text": "hello #world"}, token)
	require.Equal(t, http.StatusCreated, created.status)
	assert.Equal(t, "Tweet created successfully", created.message())
	assert.Equal(t, "hello #world", created.body["tweet"].(map[string]any)["text"])
}

func TestToggleInteractions(t *testing.T) {
	ts := newTestServer(t, "", nil)
	_, authorToken := ts.register(t, "author")
	fanID, fanToken := ts.register(t, "fan")
	tweetID := ts.postTweet(t, authorToken, "a tweet worth liking")

	tests := []struct {
		action  string
		field   string
		added   string
		removed string
	}{
		{"like", "likes", "Tweet liked successfully", "Tweet unliked successfully"},
		{"bookmark", "bookmarks", "Tweet added to bookmarks successfully", "Tweet removed from bookmarks successfully"},
		{"retweet", "retweets", "Retweeted successfully", "Tweet removed from retweets successfully"},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			path := fmt.Sprintf("/api/v1/tweet/%s/%d", tt.action, tweetID)

			on := ts.call(t, http.MethodPatch, path, nil, fanToken)
			require.Equal(t, http.StatusOK, on.status)
			assert.Equal(t, tt.added, on.message())

			tweet := ts.call(t, http.MethodGet, fmt.Sprintf("/api/v1/tweet/%d", tweetID), nil, "")
			assert.Equal(t, []uint{fanID}, idList(tweet.body["tweet"].(map[string]any)[tt.field]))

			me := ts.call(t, http.MethodGet, "/api/v1/me", nil, fanToken)
			assert.Equal(t, []uint{tweetID}, idList(me.body["user"].(map[string]any)[tt.field]))

			off := ts.call(t, http.MethodPatch, path, nil, fanToken)
			require.Equal(t, http.StatusOK, off.status)
			assert.Equal(t, tt.removed, off.message())

			tweet = ts.call(t, http.MethodGet, fmt.Sprintf("/api/v1/tweet/%d", tweetID), nil, "")
			assert.Empty(t, idList(tweet.body["tweet"].(map[string]any)[tt.field]))
		})
	}

	missing := ts.call(t, http.MethodPatch, "/api/v1/tweet/like/9999", nil, fanToken)
	assert.Equal(t, http.StatusNotFound, missing.status)
}

func TestReplyAndDelete(t *testing.T) {
	ts := newTestServer(t, "", nil)
	authorID, authorToken := ts.register(t, "poster")
	_, replierToken := ts.register(t, "replier")
	tweetID := ts.postTweet(t, authorToken, "original thought")

	reply := ts.call(t, http.MethodPost, fmt.Sprintf("/api/v1/tweet/%d", tweetID), map[string]string{"text": "a reply here"}, replierToken)
	require.Equal(t, http.StatusCreated, reply.status, reply.body)
	assert.Equal(t, "Replied to tweet successfully", reply.message())
	replyBody := reply.body["reply"].(map[string]any)
	assert.Equal(t, true, replyBody["isReply"])
	assert.EqualValues(t, tweetID, replyBody["parentTweet"])

	parent := ts.call(t, http.MethodGet, fmt.Sprintf("/api/v1/tweet/%d", tweetID), nil, "")
	assert.Len(t, parent.body["tweet"].(map[string]any)["replies"], 1)

	forbidden := ts.call(t, http.MethodDelete, fmt.Sprintf("/api/v1/tweet/%d", tweetID), nil, replierToken)
	assert.Equal(t, http.StatusForbidden, forbidden.status)

	deleted := ts.call(t, http.MethodDelete, fmt.Sprintf("/api/v1/tweet/%d", tweetID), nil, authorToken)
	require.Equal(t, http.StatusOK, deleted.status)
	assert.Equal(t, "Tweet deleted successfully", deleted.message())

	gone := ts.call(t, http.MethodGet, fmt.Sprintf("/api/v1/tweet/%d", tweetID), nil, "")
	assert.Equal(t, http.StatusNotFound, gone.status)

	posts := ts.call(t, http.MethodGet, fmt.Sprintf("/api/v1/user/tweets/%d", authorID), nil, "")
	assert.Empty(t, posts.body["tweets"])
}

func TestUpdateTweet_SubscriptionGate(t *testing.T) {
	ts := newTestServer(t, "", nil)
	authorID, token := ts.register(t, "editor")
	tweetID := ts.postTweet(t, token, "first draft text")
	path := fmt.Sprintf("/api/v1/tweet/%d", tweetID)

	denied := ts.call(t, http.MethodPatch, path, map[string]string{"text": "second draft"}, token)
	assert.Equal(t, http.StatusForbidden, denied.status)
	assert.Equal(t, "Only verified users can edit tweets", denied.message())

	require.NoError(t, ts.db.Model(&models.User{}).Where("id = ?", authorID).
		Update("subscription_status", models.SubscriptionActive).Error)

	updated := ts.call(t, http.MethodPatch, path, map[string]string{"text": "second draft"}, token)
	require.Equal(t, http.StatusOK, updated.status, updated.body)
	assert.Equal(t, "Tweet updated successfully", updated.message())
	assert.Equal(t, "second draft", updated.body["tweet"].(map[string]any)["text"])

	nothing := ts.call(t, http.MethodPatch, path, map[string]string{}, token)
	assert.Equal(t, http.StatusBadRequest, nothing.status)
	assert.Equal(t, "Nothing to update", nothing.message())
}

func TestFollowRoutes(t *testing.T) {
	ts := newTestServer(t, "", nil)
	followerID, token := ts.register(t, "follower")
	targetID, _ := ts.register(t, "followed")

	follow := ts.call(t, http.MethodPatch, fmt.Sprintf("/api/v1/follow/%d", targetID), nil, token)
	require.Equal(t, http.StatusOK, follow.status)
	assert.Equal(t, "User followed successfully", follow.message())

	again := ts.call(t, http.MethodPatch, fmt.Sprintf("/api/v1/follow/%d", targetID), nil, token)
	assert.Equal(t, http.StatusConflict, again.status)

	profile := ts.call(t, http.MethodGet, "/api/v1/user/followed", nil, "")
	require.Equal(t, http.StatusOK, profile.status)
	assert.Equal(t, []uint{followerID}, idList(profile.body["user"].(map[string]any)["followers"]))

	unfollow := ts.call(t, http.MethodPatch, fmt.Sprintf("/api/v1/unfollow/%d", targetID), nil, token)
	require.Equal(t, http.StatusOK, unfollow.status)
	assert.Equal(t, "User unfollowed successfully", unfollow.message())

	self := ts.call(t, http.MethodPatch, fmt.Sprintf("/api/v1/follow/%d", followerID), nil, token)
	assert.Equal(t, http.StatusBadRequest, self.status)
}

func TestFeedRoutes(t *testing.T) {
	ts := newTestServer(t, "", nil)
	authorID, token := ts.register(t, "prolific")
	for i := range 12 {
		ts.postTweet(t, token, fmt.Sprintf("tweet number %d", i))
	}

	first := ts.call(t, http.MethodGet, "/api/v1/me/posts?limit=5", nil, token)
	require.Equal(t, http.StatusOK, first.status)
	assert.Equal(t, "All Tweets of user fetched successfully", first.message())
	tweets := first.body["tweets"].([]any)
	require.Len(t, tweets, 5)
	assert.Equal(t, "tweet number 11", tweets[0].(map[string]any)["text"])

	last := ts.call(t, http.MethodGet, fmt.Sprintf("/api/v1/user/tweets/%d?page=2&limit=5", authorID), nil, "")
	require.Equal(t, http.StatusOK, last.status)
	assert.Len(t, last.body["tweets"], 2)

	unknown := ts.call(t, http.MethodGet, "/api/v1/user/likes/9999", nil, "")
	assert.Equal(t, http.StatusNotFound, unknown.status)
	assert.Equal(t, "Invalid user id", unknown.message())

	replies := ts.call(t, http.MethodGet, "/api/v1/me/replies", nil, token)
	require.Equal(t, http.StatusOK, replies.status)
	assert.Empty(t, replies.body["tweets"])
}

func TestHomeFeed_Flag(t *testing.T) {
	off := newTestServer(t, "", nil)
	_, token := off.register(t, "reader")
	resp := off.call(t, http.MethodGet, "/api/v1/me/feed", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.status)

	on := newTestServer(t, "home_timeline=on", nil)
	_, readerToken := on.register(t, "reader")
	authorID, authorToken := on.register(t, "author")
	on.postTweet(t, authorToken, "for my followers")
	require.Equal(t, http.StatusOK, on.call(t, http.MethodPatch, fmt.Sprintf("/api/v1/follow/%d", authorID), nil, readerToken).status)

	feed := on.call(t, http.MethodGet, "/api/v1/me/feed", nil, readerToken)
	require.Equal(t, http.StatusOK, feed.status)
	require.Len(t, feed.body["tweets"], 1)
	assert.Equal(t, "for my followers", feed.body["tweets"].([]any)[0].(map[string]any)["text"])
}

func TestTrendingRoute(t *testing.T) {
	ts := newTestServer(t, "", nil)
	_, token := ts.register(t, "tagger")
	ts.postTweet(t, token, "loving #golang today")
	ts.postTweet(t, token, "more #golang and #fiber")
	ts.srv.trending.Wait()

	resp := ts.call(t, http.MethodGet, "/api/v1/trending?limit=1", nil, "")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Here are the trending topics", resp.message())
	tags := resp.body["hashtags"].([]any)
	require.Len(t, tags, 1)
	assert.Equal(t, "golang", tags[0].(map[string]any)["hashtag"])
	assert.EqualValues(t, 2, tags[0].(map[string]any)["count"])
}

func TestResponseFieldNames(t *testing.T) {
	ts := newTestServer(t, "", nil)
	authorID, authorToken := ts.register(t, "speaker")
	_, replierToken := ts.register(t, "answerer")
	tweetID := ts.postTweet(t, authorToken, "say something back")

	reply := ts.call(t, http.MethodPost, fmt.Sprintf("/api/v1/tweet/%d", tweetID), map[string]string{"text": "something back"}, replierToken)
	require.Equal(t, http.StatusCreated, reply.status, reply.body)
	replyID := uint(reply.body["reply"].(map[string]any)["id"].(float64))

	tweet := ts.call(t, http.MethodGet, fmt.Sprintf("/api/v1/tweet/%d", tweetID), nil, "").body["tweet"].(map[string]any)
	assert.EqualValues(t, authorID, tweet["postBy"])
	assert.Equal(t, false, tweet["isReply"])
	assert.Contains(t, tweet, "createdAt")
	assert.NotContains(t, tweet, "post_by")

	me := ts.call(t, http.MethodGet, "/api/v1/me", nil, replierToken).body["user"].(map[string]any)
	assert.Contains(t, me, "profilePicture")
	assert.Contains(t, me, "verifiedType")
	userReplies := me["replies"].([]any)
	require.Len(t, userReplies, 1)
	assert.EqualValues(t, replyID, userReplies[0].(map[string]any)["id"])
	assert.EqualValues(t, tweetID, userReplies[0].(map[string]any)["originalId"])

	feed := ts.call(t, http.MethodGet, "/api/v1/me/replies", nil, replierToken)
	require.Equal(t, http.StatusOK, feed.status)
	entries := feed.body["tweets"].([]any)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.EqualValues(t, replyID, entry["reply"].(map[string]any)["id"])
	assert.EqualValues(t, tweetID, entry["originalTweet"].(map[string]any)["id"])
}
