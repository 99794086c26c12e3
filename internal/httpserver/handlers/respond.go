package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/colocapp/colocourses/internal/domain"
	"github.com/colocapp/colocourses/internal/httpserver/deps"
	"github.com/colocapp/colocourses/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an internal error: logged with detail, answered
// with a generic body.
func writeError(w http.ResponseWriter, d deps.Deps, err error) {
	switch {
	case domain.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case domain.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case domain.IsConflict(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		d.Logger.Error("request failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Erreur serveur"})
	}
}

// decodeBody parses a JSON request body, rejecting unreadable payloads as
// validation errors so they surface as 400s.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Validationf("corps de requête invalide")
	}
	return nil
}
