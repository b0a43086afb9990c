package handlers

import (
	"net/http"

	"resume-rag/internal/contextutil"
	"resume-rag/internal/service"
)

// StatsHandler serves corpus statistics.
type StatsHandler struct {
	searchService service.SearchService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(searchService service.SearchService) *StatsHandler {
	return &StatsHandler{searchService: searchService}
}

// ServeHTTP handles HTTP requests for corpus statistics.
//
// swagger:route GET /api/v1/corpus/stats corpusStats
//
// # Corpus statistics
//
// Returns resume and fragment counts, fragment length statistics and the
// embedding model of the loaded corpus.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(ctx, w, http.StatusOK, h.searchService.Stats(ctx))
}
