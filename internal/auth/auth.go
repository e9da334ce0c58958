package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const sessionCookie = "draftaid_session"

// User represents an authenticated user
type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Groups   []string `json:"groups,omitempty"`
}

// Login is an authenticated browser session
type Login struct {
	ID        string
	User      *User
	Token     *oauth2.Token
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AuthProvider is a common interface for authentication providers
type AuthProvider interface {
	LoginHandler(w http.ResponseWriter, r *http.Request)
	CallbackHandler(w http.ResponseWriter, r *http.Request)
	LogoutHandler(w http.ResponseWriter, r *http.Request)
	Middleware(next http.HandlerFunc) http.HandlerFunc
}

type contextKey struct{}

// WithUser returns a context carrying user
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// GetUser retrieves the authenticated user from the request context
func GetUser(r *http.Request) *User {
	user, _ := r.Context().Value(contextKey{}).(*User)
	return user
}

// IsAdmin checks if the user has admin privileges
func IsAdmin(user *User) bool {
	if user == nil {
		return false
	}
	for _, group := range user.Groups {
		if group == "admins" {
			return true
		}
	}
	return false
}

// loginStore holds logins in memory, keyed by cookie value
type loginStore struct {
	mu     sync.RWMutex
	logins map[string]*Login
}

func newLoginStore() *loginStore {
	return &loginStore{logins: make(map[string]*Login)}
}

func (s *loginStore) put(l *Login) {
	s.mu.Lock()
	s.logins[l.ID] = l
	s.mu.Unlock()
}

func (s *loginStore) get(id string) (*Login, bool) {
	s.mu.RLock()
	l, ok := s.logins[id]
	s.mu.RUnlock()
	if !ok || time.Now().After(l.ExpiresAt) {
		return nil, false
	}
	return l, true
}

func (s *loginStore) delete(id string) {
	s.mu.Lock()
	delete(s.logins, id)
	s.mu.Unlock()
}

// middleware resolves the login cookie. API requests get 401, pages are sent to the login route.
func (s *loginStore) middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var login *Login
		if cookie, err := r.Cookie(sessionCookie); err == nil {
			login, _ = s.get(cookie.Value)
		}
		if login == nil {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), login.User)))
	}
}

func (s *loginStore) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.delete(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

func setLoginCookie(w http.ResponseWriter, l *Login, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    l.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  l.ExpiresAt,
	})
}

// randomToken returns a URL-safe random string for states and login ids
func randomToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
