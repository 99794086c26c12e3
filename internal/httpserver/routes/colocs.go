package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/colocapp/colocourses/internal/httpserver/deps"
	"github.com/colocapp/colocourses/internal/httpserver/handlers"
	"github.com/colocapp/colocourses/internal/httpserver/mw"
)

func init() { Register(registerColocs) }

func registerColocs(r chi.Router, d deps.Deps) {
	limited := r.With(
		middleware.Timeout(5*time.Second),
		mw.RateLimit(mw.RateLimitConfig{
			Burst:        d.CreateBurst,
			RefillPerMin: d.CreatePerMin,
			TrustProxy:   d.TrustProxy,
		}),
	)
	limited.Post("/api/colocs", handlers.CreateColoc(d))

	api := r.With(middleware.Timeout(5 * time.Second))
	api.Post("/api/colocs/join", handlers.JoinColoc(d))
	api.Get("/api/colocs/{colocID}", handlers.GetColoc(d))
	api.Post("/api/colocs/{colocID}/validate", handlers.ValidateList(d))
}
