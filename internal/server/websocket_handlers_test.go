package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"chirp/internal/notifications"

	"github.com/alicebob/miniredis/v2"
	gorillaws "github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebsocket_RequiresRedis(t *testing.T) {
	ts := newTestServer(t, "", nil)
	_, token := ts.register(t, "listener")

	resp := ts.call(t, http.MethodGet, "/api/v1/ws", nil, token)
	assert.Equal(t, http.StatusServiceUnavailable, resp.status)
}

func TestWebsocket_RejectsPlainRequests(t *testing.T) {
	mr := miniredis.RunT(t)
	ts := newTestServer(t, "", redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	_, token := ts.register(t, "listener")

	resp := ts.call(t, http.MethodGet, "/api/v1/ws", nil, token)
	assert.Equal(t, http.StatusUpgradeRequired, resp.status)

	anon := ts.call(t, http.MethodGet, "/api/v1/ws", nil, "")
	assert.Equal(t, http.StatusUnauthorized, anon.status)
}

func TestWebsocket_DeliversInteractionEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	ts := newTestServer(t, "", redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	authorID, authorToken := ts.register(t, "author")
	fanID, fanToken := ts.register(t, "fan")
	tweetID := ts.postTweet(t, authorToken, "notify me please")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ts.srv.startHubs(ctx)
	require.Eventually(t, func() bool { return mr.PubSubNumPat() > 0 }, 2*time.Second, 10*time.Millisecond)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = ts.app.Listener(ln) }()
	t.Cleanup(func() {
		_ = ts.srv.hub.Shutdown(context.Background())
		_ = ts.app.Shutdown()
	})

	url := fmt.Sprintf("ws://%s/api/v1/ws", ln.Addr().String())
	conn, _, err := gorillaws.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer " + authorToken}})
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return ts.srv.hub.Connections(authorID) == 1 }, 2*time.Second, 10*time.Millisecond)

	like := ts.call(t, http.MethodPatch, fmt.Sprintf("/api/v1/tweet/like/%d", tweetID), nil, fanToken)
	require.Equal(t, http.StatusOK, like.status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev notifications.Event
	require.NoError(t, json.Unmarshal(payload, &ev))
	assert.Equal(t, notifications.EventLike, ev.Type)
	assert.Equal(t, fanID, ev.ActorID)
	assert.Equal(t, tweetID, ev.TweetID)
	assert.True(t, ev.Added)
}
