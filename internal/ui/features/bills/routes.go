package bills

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/ui/features/common"
	"github.com/townworks/townledger/internal/ui/notifier"
)

// SetupRoutes registers the billing sheet routes. Saving is admin-only.
func SetupRoutes(router chi.Router, svc *ledger.Service, sessionStore sessions.Store, notify *notifier.Notifier) error {
	handlers := NewHandlers(svc, sessionStore, notify)

	router.Route("/api/bills", func(r chi.Router) {
		r.Get("/{month}", handlers.Sheet)

		r.Group(func(r chi.Router) {
			r.Use(common.RequireAdmin(sessionStore))
			r.Put("/{month}", handlers.Save)
		})
	})

	return nil
}
