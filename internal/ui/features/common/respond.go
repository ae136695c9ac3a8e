// Package common holds helpers shared by the portal features: JSON
// responses, error mapping and session-based access control.
package common

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/townworks/townledger/internal/auth"
	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/store"
)

// ErrorResponse is the JSON error envelope every API endpoint uses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondJSON writes v as JSON with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// RespondError maps domain errors onto HTTP statuses and writes the
// error envelope.
func RespondError(w http.ResponseWriter, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		RespondJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrHouseExists), errors.Is(err, store.ErrUserExists):
		RespondJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.As(err, &verr):
		RespondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrBadCredentials):
		RespondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	default:
		RespondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

// DecodeJSON reads the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
