package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/colocapp/colocourses/internal/httpserver/deps"
)

// recentMessageCount is how much chat history a client gets on entry,
// oldest first so it renders top-down.
const recentMessageCount = 50

// ListMessages returns the coloc's recent chat history.
func ListMessages(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		colocID := chi.URLParam(r, "colocID")
		if _, err := d.Registry.GroupByID(r.Context(), colocID); err != nil {
			writeError(w, d, err)
			return
		}

		msgs, err := d.Store.RecentMessages(r.Context(), colocID, recentMessageCount)
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}
