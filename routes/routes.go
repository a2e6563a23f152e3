package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/genos-ai/app"
	"github.com/upb/genos-ai/handlers"
	"github.com/upb/genos-ai/middleware"
	"github.com/upb/genos-ai/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()
	logger := deps.Logger

	timeout := deps.Config.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 110 * time.Second
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(deps.HealthChecks(), logger)
	r.Get("/health", health.HandleHealth)
	r.Get("/ready", health.HandleReadiness)

	generationHandler := handlers.NewGenerationHandler(deps.Generation, deps.Audit, logger)
	indexHandler := handlers.NewIndexHandler(deps.Index, logger)
	accountHandler := handlers.NewAccountHandler(deps.Routing, deps.Billing, logger)
	assistHandler := handlers.NewAssistHandler(deps.Generation, logger)
	feedbackHandler := handlers.NewFeedbackHandler(deps.Feedback, logger)

	r.Route("/api/v1/ai", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)
		r.Use(deps.AuthMiddleware.ExtractTenant)

		r.Group(func(r chi.Router) {
			if deps.RateLimit != nil {
				r.Use(middleware.RateLimit(deps.RateLimit, logger))
			}
			r.Post("/generate", generationHandler.HandleGenerate)
			r.Post("/improve", assistHandler.HandleImprove)
			r.Post("/suggest", assistHandler.HandleSuggest)
		})
		r.Get("/history", generationHandler.HandleHistory)
		r.Post("/index", indexHandler.HandleIndex)
		r.Get("/providers", accountHandler.HandleProviders)
		r.Get("/balance", accountHandler.HandleBalance)
		r.Get("/feedback", feedbackHandler.HandleList)
		r.Post("/feedback", feedbackHandler.HandleSubmit)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}
