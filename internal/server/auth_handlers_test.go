package server

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resetTokenPattern = regexp.MustCompile(`/resetpassword/([0-9a-f]+)`)

func sessionCookie(cookies []*http.Cookie) *http.Cookie {
	for _, c := range cookies {
		if c.Name == tokenCookie {
			return c
		}
	}
	return nil
}

func TestRegister_SetsSessionCookie(t *testing.T) {
	ts := newTestServer(t, "", nil)

	resp := ts.call(t, http.MethodPost, "/api/v1/register", map[string]string{
		"name":     "Ada Lovelace",
		"username": "ada love",
		"email":    "Ada@Example.com",
		"password": "password123",
	}, "")

	require.Equal(t, http.StatusCreated, resp.status, resp.body)
	assert.Equal(t, "User registered successfully", resp.message())
	assert.Equal(t, true, resp.body["success"])

	user := resp.body["user"].(map[string]any)
	assert.Equal(t, "adalove", user["username"])
	assert.NotContains(t, user, "password")

	cookie := sessionCookie(resp.cookies)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
	assert.Equal(t, resp.body["token"], cookie.Value)
}

func TestRegister_Errors(t *testing.T) {
	ts := newTestServer(t, "", nil)
	ts.register(t, "taken")

	tests := []struct {
		name    string
		body    map[string]string
		status  int
		message string
	}{
		{
			name:    "missing fields",
			body:    map[string]string{"email": "x@chirp.test"},
			status:  http.StatusUnprocessableEntity,
			message: "Some of the fields are missing",
		},
		{
			name:    "duplicate username",
			body:    map[string]string{"name": "Someone", "username": "taken", "email": "new@chirp.test", "password": "password123"},
			status:  http.StatusConflict,
			message: "Username already exists",
		},
		{
			name:    "short password",
			body:    map[string]string{"name": "Someone", "username": "fresh", "email": "fresh@chirp.test", "password": "short"},
			status:  http.StatusBadRequest,
			message: "Please enter a longer password",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.call(t, http.MethodPost, "/api/v1/register", tt.body, "")
			assert.Equal(t, tt.status, resp.status)
			assert.Equal(t, tt.message, resp.message())
			assert.Equal(t, false, resp.body["success"])
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	ts := newTestServer(t, "", nil)
	id, _ := ts.register(t, "walker")

	bad := ts.call(t, http.MethodPost, "/api/v1/login", map[string]string{
		"email": "walker@chirp.test", "password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusBadRequest, bad.status)
	assert.Equal(t, "Invalid email or password", bad.message())

	ok := ts.call(t, http.MethodPost, "/api/v1/login", map[string]string{
		"email": "walker@chirp.test", "password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, ok.status)
	assert.Equal(t, "Logged in successfully", ok.message())

	// The cookie alone authenticates.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: sessionCookie(ok.cookies).Value})
	me := ts.do(t, req, "")
	require.Equal(t, http.StatusOK, me.status)
	user := me.body["user"].(map[string]any)
	assert.EqualValues(t, id, user["id"])
	assert.Empty(t, user["followers"])
}

func TestAuthRequired_Rejections(t *testing.T) {
	ts := newTestServer(t, "", nil)

	for name, token := range map[string]string{"missing": "", "garbage": "not-a-jwt"} {
		t.Run(name, func(t *testing.T) {
			resp := ts.call(t, http.MethodGet, "/api/v1/me", nil, token)
			assert.Equal(t, http.StatusUnauthorized, resp.status)
			assert.Equal(t, "Please login to access this resource", resp.message())
		})
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ts := newTestServer(t, "", rdb)
	_, token := ts.register(t, "leaver")

	resp := ts.call(t, http.MethodGet, "/api/v1/logout", nil, token)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Logged out successfully", resp.message())
	cookie := sessionCookie(resp.cookies)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)

	again := ts.call(t, http.MethodGet, "/api/v1/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, again.status)
}

func TestLogout_WithoutSession(t *testing.T) {
	ts := newTestServer(t, "", nil)

	resp := ts.call(t, http.MethodGet, "/api/v1/logout", nil, "")
	assert.Equal(t, http.StatusOK, resp.status)
}

func TestUpdatePasswordAndProfile(t *testing.T) {
	ts := newTestServer(t, "", nil)
	_, token := ts.register(t, "changer")

	wrong := ts.call(t, http.MethodPatch, "/api/v1/updatepassword", map[string]string{
		"oldPassword": "nope-nope", "newPassword": "newpassword1",
	}, token)
	assert.Equal(t, http.StatusForbidden, wrong.status)
	assert.Equal(t, "Invalid old password", wrong.message())

	ok := ts.call(t, http.MethodPatch, "/api/v1/updatepassword", map[string]string{
		"oldPassword": "password123", "newPassword": "newpassword1",
	}, token)
	assert.Equal(t, http.StatusOK, ok.status)

	empty := ts.call(t, http.MethodPatch, "/api/v1/updateprofile", map[string]string{}, token)
	assert.Equal(t, http.StatusBadRequest, empty.status)
	assert.Equal(t, "There is nothing to update", empty.message())

	profile := ts.call(t, http.MethodPatch, "/api/v1/updateprofile", map[string]string{"bio": "hello there"}, token)
	require.Equal(t, http.StatusOK, profile.status)
	assert.Equal(t, "hello there", profile.body["user"].(map[string]any)["bio"])
}

func TestForgotAndResetPassword(t *testing.T) {
	ts := newTestServer(t, "", nil)
	ts.register(t, "forgetful")

	unknown := ts.call(t, http.MethodPost, "/api/v1/forgotpassword", map[string]string{"email": "ghost@chirp.test"}, "")
	assert.Equal(t, http.StatusUnauthorized, unknown.status)
	assert.Equal(t, "Invalid email id", unknown.message())

	resp := ts.call(t, http.MethodPost, "/api/v1/forgotpassword", map[string]string{"email": "forgetful@chirp.test"}, "")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Reset password link sent to your email", resp.message())

	msg := <-ts.mailer.Sent
	token := resetTokenPattern.FindStringSubmatch(msg.Body)
	require.Len(t, token, 2, msg.Body)

	reset := ts.call(t, http.MethodPatch, "/api/v1/resetpassword/"+token[1], map[string]string{"password": "brandnew123"}, "")
	require.Equal(t, http.StatusOK, reset.status, reset.body)

	reuse := ts.call(t, http.MethodPatch, "/api/v1/resetpassword/"+token[1], map[string]string{"password": "brandnew456"}, "")
	assert.Equal(t, http.StatusBadRequest, reuse.status)
	assert.Equal(t, "Reset password link is either invalid or expired", reuse.message())

	login := ts.call(t, http.MethodPost, "/api/v1/login", map[string]string{
		"email": "forgetful@chirp.test", "password": "brandnew123",
	}, "")
	assert.Equal(t, http.StatusOK, login.status)
}

func TestUpdateEmailAndUsername(t *testing.T) {
	ts := newTestServer(t, "", nil)
	ts.register(t, "occupied")
	_, token := ts.register(t, "mover")

	taken := ts.call(t, http.MethodPatch, "/api/v1/updateusername", map[string]string{"newUsername": "occupied"}, token)
	assert.Equal(t, http.StatusConflict, taken.status)

	renamed := ts.call(t, http.MethodPatch, "/api/v1/updateusername", map[string]string{"newUsername": "shaker"}, token)
	assert.Equal(t, http.StatusOK, renamed.status)

	email := ts.call(t, http.MethodPatch, "/api/v1/updateemail", map[string]string{"newEmail": "shaker@chirp.test"}, token)
	assert.Equal(t, http.StatusOK, email.status)

	basic := ts.call(t, http.MethodGet, "/api/v1/user/basic/shaker", nil, "")
	require.Equal(t, http.StatusOK, basic.status)
	assert.Equal(t, "shaker", basic.body["user"].(map[string]any)["username"])
}

func TestDeleteAccount(t *testing.T) {
	ts := newTestServer(t, "", nil)
	_, token := ts.register(t, "quitter")

	wrong := ts.call(t, http.MethodDelete, "/api/v1/deleteaccount", map[string]string{"password": "incorrect1"}, token)
	assert.Equal(t, http.StatusForbidden, wrong.status)
	assert.Equal(t, "Incorrect Password", wrong.message())

	resp := ts.call(t, http.MethodDelete, "/api/v1/deleteaccount", map[string]string{"password": "password123"}, token)
	require.Equal(t, http.StatusAccepted, resp.status)
	assert.Equal(t, "Your account has been deleted successfully", resp.message())
	assert.Empty(t, sessionCookie(resp.cookies).Value)

	gone := ts.call(t, http.MethodGet, "/api/v1/user/quitter", nil, "")
	assert.Equal(t, http.StatusNotFound, gone.status)
	again := ts.call(t, http.MethodGet, "/api/v1/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, again.status)
}
