package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/colocapp/colocourses/internal/httpserver/deps"
	"github.com/colocapp/colocourses/internal/httpserver/handlers"
)

func init() { Register(registerItems) }

func registerItems(r chi.Router, d deps.Deps) {
	api := r.With(middleware.Timeout(5 * time.Second))

	api.Get("/api/colocs/{colocID}/items", handlers.ListItems(d))
	api.Post("/api/colocs/{colocID}/items", handlers.CreateItem(d))
	// Literal segment declared before the {itemID} parameter so "bought"
	// never matches as an item id.
	api.Delete("/api/colocs/{colocID}/items/bought/clear", handlers.ClearBought(d))
	api.Put("/api/colocs/{colocID}/items/{itemID}", handlers.UpdateItem(d))
	api.Delete("/api/colocs/{colocID}/items/{itemID}", handlers.DeleteItem(d))
}
