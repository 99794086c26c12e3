package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/colocapp/colocourses/internal/httpserver/deps"
)

type createColocRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Emoji    string `json:"emoji"`
}

// CreateColoc registers a new coloc and returns it with its join code.
func CreateColoc(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createColocRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d, err)
			return
		}

		g, err := d.Registry.CreateGroup(r.Context(), req.Name, req.Emoji, req.Username)
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	}
}

type joinColocRequest struct {
	Code     string `json:"code"`
	Username string `json:"username"`
}

// JoinColoc adds the caller to the coloc matching the join code.
func JoinColoc(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinColocRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d, err)
			return
		}

		g, err := d.Registry.JoinGroup(r.Context(), req.Code, req.Username)
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

// GetColoc returns one coloc by id.
func GetColoc(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := d.Registry.GroupByID(r.Context(), chi.URLParam(r, "colocID"))
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

type validateRequest struct {
	Username string `json:"username"`
}

type validateResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deletedCount"`
	Coloc        any    `json:"coloc"`
}

// ValidateList ends a shopping run: bought items are deleted, the validator
// is stamped on the coloc and the list restarts active.
func ValidateList(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d, err)
			return
		}

		deleted, g, err := d.Registry.ValidateList(r.Context(), chi.URLParam(r, "colocID"), req.Username)
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, validateResponse{
			Message:      "Liste validée",
			DeletedCount: deleted,
			Coloc:        g,
		})
	}
}
