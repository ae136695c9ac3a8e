package common

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/auth"
)

// SessionName is the portal's session cookie name.
const SessionName = "townledger"

// Session value keys.
const (
	SessionKeyUsername = "username"
	SessionKeyRole     = "role"
)

// Identity is the logged-in account attached to a request.
type Identity struct {
	Username string
	Role     string
}

// IsAdmin reports whether the identity may mutate the ledger.
func (id Identity) IsAdmin() bool {
	return id.Role == auth.RoleAdmin
}

// CurrentIdentity reads the logged-in identity from the session, if any.
func CurrentIdentity(r *http.Request, sessionStore sessions.Store) (Identity, bool) {
	session, err := sessionStore.Get(r, SessionName)
	if err != nil {
		return Identity{}, false
	}
	username, _ := session.Values[SessionKeyUsername].(string)
	role, _ := session.Values[SessionKeyRole].(string)
	if username == "" || !auth.ValidRole(role) {
		return Identity{}, false
	}
	return Identity{Username: username, Role: role}, true
}

// SignIn stores the identity in the session cookie.
func SignIn(w http.ResponseWriter, r *http.Request, sessionStore sessions.Store, id Identity) error {
	session, _ := sessionStore.Get(r, SessionName)
	session.Values[SessionKeyUsername] = id.Username
	session.Values[SessionKeyRole] = id.Role
	return session.Save(r, w)
}

// SignOut clears the session cookie.
func SignOut(w http.ResponseWriter, r *http.Request, sessionStore sessions.Store) error {
	session, _ := sessionStore.Get(r, SessionName)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// RequireLogin rejects unauthenticated requests. API paths get a 401
// envelope; page requests redirect to the login form.
func RequireLogin(sessionStore sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := CurrentIdentity(r, sessionStore); !ok {
				if strings.HasPrefix(r.URL.Path, "/api/") {
					RespondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "login required"})
					return
				}
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects requests whose session does not carry the admin
// role. Use inside a RequireLogin-protected subtree.
func RequireAdmin(sessionStore sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := CurrentIdentity(r, sessionStore)
			if !ok {
				RespondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "login required"})
				return
			}
			if !id.IsAdmin() {
				RespondJSON(w, http.StatusForbidden, ErrorResponse{Error: "admin role required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
