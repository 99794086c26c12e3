package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/colocapp/colocourses/internal/httpserver/deps"
	"github.com/colocapp/colocourses/internal/httpserver/handlers"
)

func init() { Register(registerWS) }

// The realtime endpoint gets no timeout middleware: the connection lives as
// long as the client does.
func registerWS(r chi.Router, d deps.Deps) {
	r.Get("/api/ws", handlers.WS(d))
}
