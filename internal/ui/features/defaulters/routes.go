package defaulters

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/ledger"
)

// SetupRoutes registers the defaulters report routes.
func SetupRoutes(router chi.Router, svc *ledger.Service, sessionStore sessions.Store) error {
	handlers := NewHandlers(svc, sessionStore)

	router.Get("/api/defaulters", handlers.Report)
	router.Get("/defaulters.csv", handlers.ReportCSV)

	return nil
}
