package bills

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/store"
	"github.com/townworks/townledger/internal/ui/features/common"
	"github.com/townworks/townledger/internal/ui/notifier"
)

// Handlers serves the billing sheet endpoints.
type Handlers struct {
	ledger       *ledger.Service
	sessionStore sessions.Store
	notifier     *notifier.Notifier
}

// NewHandlers creates a Handlers instance.
func NewHandlers(svc *ledger.Service, sessionStore sessions.Store, notify *notifier.Notifier) *Handlers {
	return &Handlers{ledger: svc, sessionStore: sessionStore, notifier: notify}
}

// Sheet returns the billing sheet for one month.
func (h *Handlers) Sheet(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	rows, err := h.ledger.BillingSheet(r.Context(), month)
	if err != nil {
		common.RespondError(w, err)
		return
	}

	resp := SheetResponse{Month: month, Rows: make([]SheetRowResponse, 0, len(rows))}
	for _, row := range rows {
		resp.Rows = append(resp.Rows, SheetRowResponse{
			ResidentID:     row.Resident.ID,
			HouseNo:        row.Resident.HouseNo,
			StreetName:     row.Resident.StreetName,
			OwnerName:      row.Resident.OwnerName,
			WaterDue:       row.WaterDue,
			SecurityDue:    row.SecurityDue,
			SanitationDue:  row.SanitationDue,
			WaterPaid:      row.WaterPaid,
			SecurityPaid:   row.SecurityPaid,
			SanitationPaid: row.SanitationPaid,
			Pending:        row.Pending,
		})
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

// Save records a batch of payments for one month.
func (h *Handlers) Save(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")

	var req SaveRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: err.Error()})
		return
	}

	entries := make([]store.Bill, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, store.Bill{
			ResidentID:     e.ResidentID,
			WaterPaid:      e.WaterPaid,
			SecurityPaid:   e.SecurityPaid,
			SanitationPaid: e.SanitationPaid,
		})
	}

	id, _ := common.CurrentIdentity(r, h.sessionStore)
	if err := h.ledger.SaveSheet(r.Context(), id.Username, month, entries); err != nil {
		common.RespondError(w, err)
		return
	}
	h.notifier.Broadcast()
	common.RespondJSON(w, http.StatusOK, map[string]int{"saved": len(entries)})
}
