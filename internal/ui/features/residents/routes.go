package residents

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/ui/features/common"
	"github.com/townworks/townledger/internal/ui/notifier"
)

// SetupRoutes registers the resident routes. Mutations are admin-only.
func SetupRoutes(router chi.Router, svc *ledger.Service, sessionStore sessions.Store, notify *notifier.Notifier) error {
	handlers := NewHandlers(svc, sessionStore, notify)

	router.Route("/api/residents", func(r chi.Router) {
		r.Get("/", handlers.List)
		r.Get("/{id}", handlers.Get)
		r.Get("/{id}/summary", handlers.Summary)

		r.Group(func(r chi.Router) {
			r.Use(common.RequireAdmin(sessionStore))
			r.Post("/", handlers.Create)
			r.Put("/{id}", handlers.Update)
			r.Delete("/", handlers.Delete)
		})
	})

	return nil
}
