package funds

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/ui/features/common"
	"github.com/townworks/townledger/internal/ui/notifier"
)

// SetupRoutes registers the fund routes. Mutations are admin-only.
func SetupRoutes(router chi.Router, svc *ledger.Service, sessionStore sessions.Store, notify *notifier.Notifier) error {
	handlers := NewHandlers(svc, sessionStore, notify)

	router.Route("/api/funds", func(r chi.Router) {
		r.Get("/", handlers.List)
		r.Get("/{id}/contributions", handlers.Contributions)

		r.Group(func(r chi.Router) {
			r.Use(common.RequireAdmin(sessionStore))
			r.Post("/", handlers.Create)
			r.Delete("/{id}", handlers.Delete)
			r.Put("/{id}/contributions", handlers.SaveContributions)
		})
	})

	return nil
}
