package auth

import (
	"net/http"
	"time"
)

// MockAuth signs everyone in as a local admin, for development
type MockAuth struct {
	logins *loginStore
}

func NewMockAuth() *MockAuth {
	return &MockAuth{logins: newLoginStore()}
}

// LoginHandler auto-creates a login for the dev user
func (m *MockAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	login := &Login{
		ID: randomToken(),
		User: &User{
			ID:       "dev-user",
			Email:    "dev@draftaid.local",
			Name:     "Dev User",
			Username: "devuser",
			Groups:   []string{"users", "admins"},
		},
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	m.logins.put(login)
	setLoginCookie(w, login, false)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (m *MockAuth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (m *MockAuth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	m.logins.logout(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (m *MockAuth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return m.logins.middleware(next)
}
