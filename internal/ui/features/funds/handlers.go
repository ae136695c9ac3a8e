package funds

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/store"
	"github.com/townworks/townledger/internal/ui/features/common"
	"github.com/townworks/townledger/internal/ui/notifier"
)

// Handlers serves the fund drive endpoints.
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

func fundID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// List returns every fund with totals.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.ledger.Funds(r.Context())
	if err != nil {
		common.RespondError(w, err)
		return
	}
	out := make([]FundResponse, 0, len(list))
	for _, f := range list {
		out = append(out, fromStore(f))
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// Create opens a fund drive, returning the existing fund when the title
// and month already have one.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := h.ledger.OpenFund(r.Context(), h.actor(r), req.Title, req.Month)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	h.notifier.Broadcast()

	fund, err := h.ledger.Fund(r.Context(), id)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, fromStore(*fund))
}

// Delete closes a fund drive.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := fundID(r)
	if !ok {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: "invalid fund id"})
		return
	}
	if err := h.ledger.CloseFund(r.Context(), h.actor(r), id); err != nil {
		common.RespondError(w, err)
		return
	}
	h.notifier.Broadcast()
	common.RespondJSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

// Contributions returns the entries recorded for one fund.
func (h *Handlers) Contributions(w http.ResponseWriter, r *http.Request) {
	id, ok := fundID(r)
	if !ok {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: "invalid fund id"})
		return
	}
	if _, err := h.ledger.Fund(r.Context(), id); err != nil {
		common.RespondError(w, err)
		return
	}

	contribs, err := h.ledger.FundContributions(r.Context(), id)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	out := make([]ContributionPayload, 0, len(contribs))
	for _, c := range contribs {
		out = append(out, ContributionPayload{ResidentID: c.ResidentID, Amount: c.Amount})
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// SaveContributions applies a contribution sheet to one fund.
func (h *Handlers) SaveContributions(w http.ResponseWriter, r *http.Request) {
	id, ok := fundID(r)
	if !ok {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: "invalid fund id"})
		return
	}
	var req SaveContributionsRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorResponse{Error: err.Error()})
		return
	}

	upserts := make([]store.Contribution, 0, len(req.Entries))
	for _, e := range req.Entries {
		upserts = append(upserts, store.Contribution{ResidentID: e.ResidentID, Amount: e.Amount})
	}

	if err := h.ledger.SaveFundContributions(r.Context(), h.actor(r), id, upserts, req.Removed); err != nil {
		common.RespondError(w, err)
		return
	}
	h.notifier.Broadcast()
	common.RespondJSON(w, http.StatusOK, map[string]int{
		"saved":   len(upserts),
		"removed": len(req.Removed),
	})
}
