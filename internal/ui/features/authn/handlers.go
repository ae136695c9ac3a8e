// Package authn provides the portal's login and logout handlers.
package authn

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/auth"
	"github.com/townworks/townledger/internal/ui/features/common"
	"github.com/townworks/townledger/internal/ui/views"
)

// Handlers serves the login form and session endpoints.
type Handlers struct {
	auth         *auth.Manager
	sessionStore sessions.Store
}

// NewHandlers creates a Handlers instance.
func NewHandlers(manager *auth.Manager, sessionStore sessions.Store) *Handlers {
	return &Handlers{auth: manager, sessionStore: sessionStore}
}

// LoginPage renders the login form. Logged-in visitors go straight to
// the dashboard.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := common.CurrentIdentity(r, h.sessionStore); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := views.LoginPage("").Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Login checks the posted credentials and opens a session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	user, err := h.auth.Authenticate(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = views.LoginPage("Invalid username or password.").Render(r.Context(), w)
		return
	}

	id := common.Identity{Username: user.Username, Role: user.Role}
	if err := common.SignIn(w, r, h.sessionStore, id); err != nil {
		http.Error(w, "failed to open session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout closes the session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	_ = common.SignOut(w, r, h.sessionStore)
	http.Redirect(w, r, "/login", http.StatusFound)
}
