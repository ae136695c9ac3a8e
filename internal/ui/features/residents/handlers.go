package residents

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/store"
	"github.com/townworks/townledger/internal/ui/features/common"
	"github.com/townworks/townledger/internal/ui/notifier"
)

// Handlers serves the resident REST endpoints.
type Handlers struct {
	ledger       *ledger.Service
	sessionStore sessions.Store
	notifier     *notifier.Notifier
}

// NewHandlers creates a Handlers instance.
func NewHandlers(svc *ledger.Service, sessionStore sessions.Store, notify *notifier.Notifier) *Handlers {
	return &Handlers{ledger: svc, sessionStore: sessionStore, notifier: notify}
}

func (h *Handlers) actor(r *http.Request) string {
	id, _ := common.CurrentIdentity(r, h.sessionStore)
	return id.Username
}

// List returns residents, optionally filtered by streets (comma
// separated) and facility flags.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter store.ResidentFilter
	if streets := q.Get("streets"); streets != "" {
		for _, s := range strings.Split(streets, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter.Streets = append(filter.Streets, s)
			}
		}
	}
	filter.Water = q.Get("water") == "1"
	filter.Security = q.Get("security") == "1"
	filter.Sanitation = q.Get("sanitation") == "1"

	list, err := h.ledger.Residents(r.Context(), filter)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	out := make([]ResidentResponse, 0, len(list))
	for _, res := range list {
		out = append(out, fromStore(res))
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// Get returns one resident with its families.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: "invalid resident id"})
		return
	}
	res, err := h.ledger.Resident(r.Context(), id)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, fromStore(res))
}

// Create registers a new resident.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var payload ResidentPayload
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: err.Error()})
		return
	}

	res, families := payload.toStore()
	id, err := h.ledger.RegisterResident(r.Context(), h.actor(r), res, families)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	h.notifier.Broadcast()

	created, err := h.ledger.Resident(r.Context(), id)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, fromStore(created))
}

// Update rewrites an existing resident.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: "invalid resident id"})
		return
	}
	var payload ResidentPayload
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: err.Error()})
		return
	}

	res, families := payload.toStore()
	if err := h.ledger.AmendResident(r.Context(), h.actor(r), id, res, families); err != nil {
		common.RespondError(w, err)
		return
	}
	h.notifier.Broadcast()

	updated, err := h.ledger.Resident(r.Context(), id)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, fromStore(updated))
}

// Delete removes one or more residents.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: err.Error()})
		return
	}
	if len(req.IDs) == 0 {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: "no resident ids given"})
		return
	}

	if err := h.ledger.RemoveResidents(r.Context(), h.actor(r), req.IDs); err != nil {
		common.RespondError(w, err)
		return
	}
	h.notifier.Broadcast()
	common.RespondJSON(w, http.StatusOK, map[string]int{"deleted": len(req.IDs)})
}

// Summary returns the full per-house report.
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: "invalid resident id"})
		return
	}
	sum, err := h.ledger.ResidentSummary(r.Context(), id)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, sum)
}
