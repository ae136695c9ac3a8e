// Package router wires the portal features onto the HTTP mux.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/auth"
	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/store"
	authnFeature "github.com/townworks/townledger/internal/ui/features/authn"
	billsFeature "github.com/townworks/townledger/internal/ui/features/bills"
	"github.com/townworks/townledger/internal/ui/features/common"
	dashboardFeature "github.com/townworks/townledger/internal/ui/features/dashboard"
	defaultersFeature "github.com/townworks/townledger/internal/ui/features/defaulters"
	fundsFeature "github.com/townworks/townledger/internal/ui/features/funds"
	recordsFeature "github.com/townworks/townledger/internal/ui/features/records"
	residentsFeature "github.com/townworks/townledger/internal/ui/features/residents"
	"github.com/townworks/townledger/internal/ui/notifier"
)

// SetupRoutes configures all portal routes. Login, logout and the
// health check stay public; everything else sits behind the session.
func SetupRoutes(
	router chi.Router,
	svc *ledger.Service,
	st store.Store,
	authManager *auth.Manager,
	sessionStore *sessions.CookieStore,
	notify *notifier.Notifier,
) error {
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if err := authnFeature.SetupRoutes(router, authManager, sessionStore); err != nil {
		return err
	}

	var setupErr error
	router.Group(func(r chi.Router) {
		r.Use(common.RequireLogin(sessionStore))

		for _, setup := range []func(chi.Router) error{
			func(r chi.Router) error {
				return dashboardFeature.SetupRoutes(r, svc, sessionStore, notify)
			},
			func(r chi.Router) error {
				return residentsFeature.SetupRoutes(r, svc, sessionStore, notify)
			},
			func(r chi.Router) error {
				return billsFeature.SetupRoutes(r, svc, sessionStore, notify)
			},
			func(r chi.Router) error {
				return fundsFeature.SetupRoutes(r, svc, sessionStore, notify)
			},
			func(r chi.Router) error {
				return defaultersFeature.SetupRoutes(r, svc, sessionStore)
			},
			func(r chi.Router) error {
				return recordsFeature.SetupRoutes(r, svc, st, sessionStore)
			},
		} {
			if err := setup(r); err != nil && setupErr == nil {
				setupErr = err
			}
		}
	})

	return setupErr
}
