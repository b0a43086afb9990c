package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"resume-rag/internal/handlers"
	"resume-rag/internal/service"
)

const healthPath = "/api/health"

// Deps holds dependencies for the HTTP router.
type Deps struct {
	SearchService service.SearchService
	// VectorHealth is checked by the health endpoint. Nil when Qdrant is not configured.
	VectorHealth handlers.HealthChecker
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	searchHandler := handlers.NewSearchHandler(deps.SearchService)
	statsHandler := handlers.NewStatsHandler(deps.SearchService)
	healthHandler := handlers.NewHealthHandler(deps.SearchService, deps.VectorHealth)

	r.Method(http.MethodGet, healthPath, healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/search", searchHandler)
		r.Method(http.MethodGet, "/corpus/stats", statsHandler)
	})

	return r
}
