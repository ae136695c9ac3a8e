// Package defaulters serves the pending-dues reports.
package defaulters

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/ui/features/common"
)

// DefaulterResponse is one row of the report.
type DefaulterResponse struct {
	ResidentID int64  `json:"resident_id"`
	HouseNo    string `json:"house_no"`
	StreetName string `json:"street_name"`
	OwnerName  string `json:"owner_name"`
	OwnerPhone string `json:"owner_phone"`

	WaterPending      int64 `json:"water_pending"`
	SecurityPending   int64 `json:"security_pending"`
	SanitationPending int64 `json:"sanitation_pending"`
	TotalPending      int64 `json:"total_pending"`
}

// ReportResponse is the full report with its scope label.
type ReportResponse struct {
	Scope  string              `json:"scope"`
	Months int                 `json:"months"`
	Rows   []DefaulterResponse `json:"rows"`
}

// Handlers serves the defaulters endpoints.
type Handlers struct {
	ledger       *ledger.Service
	sessionStore sessions.Store
}

// NewHandlers creates a Handlers instance.
func NewHandlers(svc *ledger.Service, sessionStore sessions.Store) *Handlers {
	return &Handlers{ledger: svc, sessionStore: sessionStore}
}

func parseQuery(r *http.Request) (ledger.DefaulterScope, []string, error) {
	q := r.URL.Query()
	scope, err := ledger.ParseScope(q.Get("month"), q.Get("year"))
	if err != nil {
		return ledger.DefaulterScope{}, nil, err
	}

	var services []string
	if raw := q.Get("services"); raw != "" {
		for _, svc := range strings.Split(raw, ",") {
			if svc = strings.TrimSpace(svc); svc != "" {
				services = append(services, svc)
			}
		}
	}
	return scope, services, nil
}

// Report returns the defaulters list as JSON.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	scope, services, err := parseQuery(r)
	if err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: err.Error()})
		return
	}

	list, err := h.ledger.Defaulters(r.Context(), scope, services)
	if err != nil {
		common.RespondError(w, err)
		return
	}

	resp := ReportResponse{Scope: scope.Label(), Rows: make([]DefaulterResponse, 0, len(list))}
	for _, d := range list {
		resp.Months = d.Months
		resp.Rows = append(resp.Rows, DefaulterResponse{
			ResidentID:        d.Resident.ID,
			HouseNo:           d.Resident.HouseNo,
			StreetName:        d.Resident.StreetName,
			OwnerName:         d.Resident.OwnerName,
			OwnerPhone:        d.Resident.OwnerPhone,
			WaterPending:      d.WaterPending,
			SecurityPending:   d.SecurityPending,
			SanitationPending: d.SanitationPending,
			TotalPending:      d.TotalPending,
		})
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

// ReportCSV streams the defaulters report as a CSV download.
func (h *Handlers) ReportCSV(w http.ResponseWriter, r *http.Request) {
	scope, services, err := parseQuery(r)
	if err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=defaulters-%s.csv", scope.Label()))
	if err := h.ledger.ExportDefaulters(r.Context(), w, scope, services); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
