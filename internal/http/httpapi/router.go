package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"auraserver/internal/http/handlers"
	"auraserver/internal/infra"
	"auraserver/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.AllowedOrigins))
	}
	if cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/aura", func(r chi.Router) {
		r.Post("/analyze", app.AuraAnalyze)
		r.Get("/portrait-url", app.PortraitURL)
	})

	r.Route("/v1/images", func(r chi.Router) {
		r.Post("/generate", app.ImagesGenerate)
		r.Post("/batch", app.ImagesBatch)
	})

	r.Route("/v1/uploads", func(r chi.Router) {
		r.Post("/", app.Upload)
		r.Get("/auth", app.UploadAuth)
		r.Post("/auth", app.UploadAuth)
	})

	return r
}
