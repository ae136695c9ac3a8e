// Package dashboard serves the portal home page and its live updates.
package dashboard

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/ui/features/common"
	"github.com/townworks/townledger/internal/ui/notifier"
	"github.com/townworks/townledger/internal/ui/views"
)

// Handlers serves the dashboard page, the overview API and the SSE
// update stream.
type Handlers struct {
	ledger       *ledger.Service
	sessionStore sessions.Store
	notifier     *notifier.Notifier
}

// NewHandlers creates a Handlers instance.
func NewHandlers(svc *ledger.Service, sessionStore sessions.Store, notify *notifier.Notifier) *Handlers {
	return &Handlers{ledger: svc, sessionStore: sessionStore, notifier: notify}
}

// HomePage renders the dashboard with the current overview.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	id, _ := common.CurrentIdentity(r, h.sessionStore)

	ov, err := h.ledger.Overview(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := views.DashboardPage(id.Username, id.Role, ov).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Overview returns the dashboard aggregates as JSON.
func (h *Handlers) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.ledger.Overview(r.Context())
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ov)
}

// Recovery returns one month's street-wise dues and collections.
func (h *Handlers) Recovery(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	recovery, err := h.ledger.StreetRecoveryForMonth(r.Context(), month)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, recovery)
}

// Updates holds an SSE stream open and re-renders the stats fragment
// whenever the notifier pings.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-updates:
			ov, err := h.ledger.Overview(r.Context())
			if err != nil {
				_ = sse.ConsoleError(err)
				continue
			}
			if err := sse.PatchElementTempl(views.StatsFragment(ov)); err != nil {
				_ = sse.ConsoleError(err)
				return
			}
		}
	}
}
