package authn

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/auth"
)

// SetupRoutes registers the login and logout routes. These stay outside
// the authenticated subtree.
func SetupRoutes(router chi.Router, manager *auth.Manager, sessionStore sessions.Store) error {
	handlers := NewHandlers(manager, sessionStore)

	router.Get("/login", handlers.LoginPage)
	router.Post("/login", handlers.Login)
	router.Post("/logout", handlers.Logout)

	return nil
}
