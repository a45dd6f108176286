package server

import (
	"fmt"
	"net/http"
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminGate(t *testing.T) {
	ts := newTestServer(t, "", nil)
	_, token := ts.register(t, "regular")

	resp := ts.call(t, http.MethodGet, "/api/v1/admin/users", nil, token)
	assert.Equal(t, http.StatusForbidden, resp.status)
	assert.Equal(t, "Only admin can access this resource", resp.message())

	anon := ts.call(t, http.MethodGet, "/api/v1/admin/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, anon.status)
}

func TestAdminUserManagement(t *testing.T) {
	ts := newTestServer(t, "home_timeline=on", nil)
	adminID, adminToken := ts.register(t, "moderator")
	ts.setRole(t, adminID, models.RoleAdmin)
	targetID, targetToken := ts.register(t, "target")

	list := ts.call(t, http.MethodGet, "/api/v1/admin/users", nil, adminToken)
	require.Equal(t, http.StatusOK, list.status)
	assert.EqualValues(t, 2, list.body["num_users"])

	tick := ts.call(t, http.MethodPatch, fmt.Sprintf("/api/v1/admin/givetick/%d", targetID), map[string]string{"type": "gold"}, adminToken)
	require.Equal(t, http.StatusOK, tick.status, tick.body)
	again := ts.call(t, http.MethodPatch, fmt.Sprintf("/api/v1/admin/givetick/%d", targetID), nil, adminToken)
	assert.Equal(t, http.StatusConflict, again.status)
	assert.Equal(t, "User already has the verified tick", again.message())

	// A ticked user passes the subscription gate.
	tweetID := ts.postTweet(t, targetToken, "ticked and editing")
	edit := ts.call(t, http.MethodPatch, fmt.Sprintf("/api/v1/tweet/%d", tweetID), map[string]string{"text": "edited by a ticked user"}, targetToken)
	assert.Equal(t, http.StatusOK, edit.status)

	untick := ts.call(t, http.MethodPatch, fmt.Sprintf("/api/v1/admin/removetick/%d", targetID), nil, adminToken)
	assert.Equal(t, http.StatusOK, untick.status)

	flags := ts.call(t, http.MethodGet, "/api/v1/admin/feature-flags", nil, adminToken)
	require.Equal(t, http.StatusOK, flags.status)
	assert.Equal(t, true, flags.body["effective"].(map[string]any)["home_timeline"])
	assert.Equal(t, true, flags.body["effective"].(map[string]any)["trending_ingest"])

	removed := ts.call(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/tweet/%d", tweetID), nil, adminToken)
	assert.Equal(t, http.StatusOK, removed.status)

	deleted := ts.call(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/user/%d", targetID), nil, adminToken)
	require.Equal(t, http.StatusOK, deleted.status)
	assert.Equal(t, "User deleted successfully", deleted.message())

	missing := ts.call(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/user/%d", targetID), nil, adminToken)
	assert.Equal(t, http.StatusNotFound, missing.status)
}

func TestAdminRoleChanges(t *testing.T) {
	ts := newTestServer(t, "", nil)
	ownerID, ownerToken := ts.register(t, "founder")
	ts.setRole(t, ownerID, models.RoleOwner)
	adminID, adminToken := ts.register(t, "helper")
	ts.setRole(t, adminID, models.RoleAdmin)
	userID, _ := ts.register(t, "promoted")

	promote := ts.call(t, http.MethodPatch, fmt.Sprintf("/api/v1/admin/user/makeadmin/%d", userID), nil, adminToken)
	require.Equal(t, http.StatusOK, promote.status)
	assert.Equal(t, "User is now an admin", promote.message())

	protected := ts.call(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/user/%d", userID), nil, adminToken)
	assert.Equal(t, http.StatusForbidden, protected.status)
	assert.Equal(t, "Admin cannot delete another admin account", protected.message())

	notOwner := ts.call(t, http.MethodPatch, fmt.Sprintf("/api/v1/admin/user/revokeadmin/%d", userID), nil, adminToken)
	assert.Equal(t, http.StatusForbidden, notOwner.status)
	assert.Equal(t, "Only OWNER can access this resource", notOwner.message())

	revoke := ts.call(t, http.MethodPatch, fmt.Sprintf("/api/v1/admin/user/revokeadmin/%d", userID), nil, ownerToken)
	require.Equal(t, http.StatusOK, revoke.status)

	var user models.User
	require.NoError(t, ts.db.First(&user, userID).Error)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.SubscriptionInactive, user.SubscriptionStatus)
}
