package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/colocapp/colocourses/internal/httpserver/deps"
	"github.com/colocapp/colocourses/internal/httpserver/handlers"
)

func init() { Register(registerMessages) }

func registerMessages(r chi.Router, d deps.Deps) {
	r.With(middleware.Timeout(5 * time.Second)).
		Get("/api/colocs/{colocID}/messages", handlers.ListMessages(d))
}
