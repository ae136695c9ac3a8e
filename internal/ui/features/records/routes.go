package records

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/store"
)

// SetupRoutes registers the record dump routes.
func SetupRoutes(router chi.Router, svc *ledger.Service, st store.Store, sessionStore sessions.Store) error {
	handlers := NewHandlers(svc, st, sessionStore)

	router.Route("/api/records", func(r chi.Router) {
		r.Get("/residents", handlers.Residents)
		r.Get("/families", handlers.Families)
		r.Get("/bills", handlers.Bills)
		r.Get("/funds", handlers.Funds)
		r.Get("/audit", handlers.Audit)
	})

	router.Get("/residents.csv", handlers.ResidentsCSV)
	router.Get("/bills/{month}.csv", handlers.BillsCSV)

	return nil
}
