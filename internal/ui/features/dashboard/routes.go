package dashboard

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/ui/notifier"
)

// SetupRoutes registers the dashboard routes.
func SetupRoutes(router chi.Router, svc *ledger.Service, sessionStore sessions.Store, notify *notifier.Notifier) error {
	handlers := NewHandlers(svc, sessionStore, notify)

	router.Get("/", handlers.HomePage)
	router.Get("/updates", handlers.Updates)
	router.Get("/api/overview", handlers.Overview)
	router.Get("/api/overview/recovery", handlers.Recovery)

	return nil
}
