package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"resume-rag/internal/contextutil"
	"resume-rag/internal/rag"
	"resume-rag/internal/service"
)

// SearchHandler handles HTTP requests for resume searches.
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// SearchRequest represents the HTTP request payload for resume searches.
//
// swagger:model SearchRequest
type SearchRequest struct {
	// Free-text description of the wanted candidate
	Query string `json:"query"`
	// Hits taken from each retriever (default 200, max 1000)
	TopKRetrieve int `json:"top_k_retrieve,omitempty"`
	// Candidates kept after fusion and reranking (default 180)
	TopKRerank int `json:"top_k_rerank,omitempty"`
	// Resumes summarized (default 5, max 20)
	TopKSummarize int `json:"top_k_summarize,omitempty"`
}

// ServeHTTP handles HTTP requests for resume searches.
//
// Rank resumes against a free-text query and summarize the best matches.
//
// swagger:route POST /api/v1/search searchResumes
//
// # Search resumes
//
// Use the `debug=true` query parameter to include the reranked candidates and
// per-stage latencies in the response.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Ranked resume summaries
//	'400':
//	  description: Bad request (empty query or negative limits)
//	'502':
//	  description: External service error (embedding, rerank or LLM service unavailable)
//	'503':
//	  description: Corpus not loaded
//	'500':
//	  description: Internal server error
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	debug := false
	if debugParam := r.URL.Query().Get("debug"); debugParam != "" {
		debug = strings.ToLower(debugParam) == "true" || debugParam == "1"
	}

	resp, err := h.searchService.Search(ctx, rag.SearchRequest{
		Query:         req.Query,
		TopKRetrieve:  req.TopKRetrieve,
		TopKRerank:    req.TopKRerank,
		TopKSummarize: req.TopKSummarize,
		Debug:         debug,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to process search")
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}
