package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nabil-s/appointly/internal/apperr"
)

// base carries what every handler needs to render errors through the
// apperr boundary.
type base struct {
	logger *slog.Logger
	env    string
}

func (b base) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (b base) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apperr.Write(w, r, b.logger, b.env, err)
}

func (b base) decode(w http.ResponseWriter, r *http.Request, v interface{ Validate() error }) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		b.writeError(w, r, apperr.BadRequest("Invalid request body"))
		return false
	}
	if err := v.Validate(); err != nil {
		b.writeError(w, r, apperr.BadRequest(err.Error()))
		return false
	}
	return true
}
