// Package records serves read-only dumps of the ledger tables, as JSON
// and as CSV downloads.
package records

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/store"
	"github.com/townworks/townledger/internal/ui/features/common"
)

const defaultAuditLimit = 200

// Handlers serves the record dump endpoints.
type Handlers struct {
	ledger       *ledger.Service
	store        store.Store
	sessionStore sessions.Store
}

// NewHandlers creates a Handlers instance.
func NewHandlers(svc *ledger.Service, st store.Store, sessionStore sessions.Store) *Handlers {
	return &Handlers{ledger: svc, store: st, sessionStore: sessionStore}
}

// Residents dumps the resident register.
func (h *Handlers) Residents(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListResidents(r.Context(), store.ResidentFilter{})
	if err != nil {
		common.RespondError(w, err)
		return
	}
	type row struct {
		ID         int64  `json:"id"`
		HouseNo    string `json:"house_no"`
		StreetName string `json:"street_name"`
		OwnerName  string `json:"owner_name"`
		OwnerPhone string `json:"owner_phone"`
		IsRent     bool   `json:"is_rent"`
		Floors     int    `json:"floors"`
	}
	out := make([]row, 0, len(list))
	for _, res := range list {
		out = append(out, row{
			ID:         res.ID,
			HouseNo:    res.HouseNo,
			StreetName: res.StreetName,
			OwnerName:  res.OwnerName,
			OwnerPhone: res.OwnerPhone,
			IsRent:     res.IsRent,
			Floors:     res.Floors,
		})
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// Families dumps the registered families.
func (h *Handlers) Families(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListFamilies(r.Context())
	if err != nil {
		common.RespondError(w, err)
		return
	}
	type row struct {
		ResidentID int64  `json:"resident_id"`
		Floor      int    `json:"floor"`
		HeadName   string `json:"head_name"`
		HeadCNIC   string `json:"head_cnic"`
		HeadPhone  string `json:"head_phone"`
	}
	out := make([]row, 0, len(list))
	for _, f := range list {
		out = append(out, row{
			ResidentID: f.ResidentID,
			Floor:      f.Floor,
			HeadName:   f.HeadName,
			HeadCNIC:   f.HeadCNIC,
			HeadPhone:  f.HeadPhone,
		})
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// Bills dumps every recorded bill.
func (h *Handlers) Bills(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListBills(r.Context())
	if err != nil {
		common.RespondError(w, err)
		return
	}
	type row struct {
		ResidentID     int64  `json:"resident_id"`
		Month          string `json:"month"`
		WaterPaid      int64  `json:"water_paid"`
		SecurityPaid   int64  `json:"security_paid"`
		SanitationPaid int64  `json:"sanitation_paid"`
		TotalPaid      int64  `json:"total_paid"`
	}
	out := make([]row, 0, len(list))
	for _, b := range list {
		out = append(out, row{
			ResidentID:     b.ResidentID,
			Month:          b.Month,
			WaterPaid:      b.WaterPaid,
			SecurityPaid:   b.SecurityPaid,
			SanitationPaid: b.SanitationPaid,
			TotalPaid:      b.TotalPaid(),
		})
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// Funds dumps every fund with totals.
func (h *Handlers) Funds(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListFunds(r.Context())
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, list)
}

// Audit dumps the most recent audit events; limit defaults to 200.
func (h *Handlers) Audit(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}
	list, err := h.store.ListAudit(r.Context(), limit)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, list)
}

// ResidentsCSV downloads the resident register.
func (h *Handlers) ResidentsCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=residents.csv")
	if err := h.ledger.ExportResidents(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// BillsCSV downloads one month's billing sheet.
func (h *Handlers) BillsCSV(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=bills-%s.csv", month))
	if err := h.ledger.ExportBillingSheet(r.Context(), w, month); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
