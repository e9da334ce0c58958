package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r)
		require.NotNil(t, user)
		if IsAdmin(user) {
			w.Header().Set("X-Admin", "true")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestMockAuthFlow(t *testing.T) {
	m := NewMockAuth()
	h := m.Middleware(protected(t))

	// API without login
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/leagues", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// page without login redirects
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/leagues", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))

	// login sets a cookie
	rec = httptest.NewRecorder()
	m.LoginHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)

	req := httptest.NewRequest(http.MethodPost, "/api/leagues", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("X-Admin"))

	// logout invalidates the cookie value
	logoutReq := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	logoutReq.AddCookie(cookies[0])
	m.LogoutHandler(httptest.NewRecorder(), logoutReq)

	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIsAdmin(t *testing.T) {
	assert.False(t, IsAdmin(nil))
	assert.False(t, IsAdmin(&User{Groups: []string{"users"}}))
	assert.True(t, IsAdmin(&User{Groups: []string{"users", "admins"}}))
}

func TestAuthentikLoginRedirect(t *testing.T) {
	a := NewAuthentikAuth(&AuthentikConfig{
		BaseURL:     "https://auth.example.com/",
		ClientID:    "draftaid",
		RedirectURL: "https://draft.example.com/auth/callback",
	})

	rec := httptest.NewRecorder()
	a.LoginHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/application/o/authorize/", loc.Path)
	assert.Equal(t, "draftaid", loc.Query().Get("client_id"))
	assert.True(t, strings.Contains(loc.Query().Get("scope"), "openid"))

	state := loc.Query().Get("state")
	var stateCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "oauth_state" {
			stateCookie = c
		}
	}
	require.NotNil(t, stateCookie)
	assert.Equal(t, state, stateCookie.Value)
}

func TestAuthentikCallbackRejectsBadState(t *testing.T) {
	a := NewAuthentikAuth(&AuthentikConfig{BaseURL: "https://auth.example.com"})

	rec := httptest.NewRecorder()
	a.CallbackHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?state=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=x", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "y"})
	rec = httptest.NewRecorder()
	a.CallbackHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthentikLogoutRedirect(t *testing.T) {
	a := NewAuthentikAuth(&AuthentikConfig{BaseURL: "https://auth.example.com"})
	rec := httptest.NewRecorder()
	a.LogoutHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/logout", nil))
	assert.Equal(t, "https://auth.example.com/application/o/fantasy-draft-aid/end-session/", rec.Header().Get("Location"))
}
