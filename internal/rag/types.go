package rag

import (
	"resume-rag/internal/evidence"
	"resume-rag/internal/rerank"
)

// SearchRequest represents a resume search request.
type SearchRequest struct {
	// Query is the free-text description of the wanted candidate.
	Query string `json:"query"`
	// TopKRetrieve is the number of hits taken from each retriever.
	TopKRetrieve int `json:"top_k_retrieve,omitempty"`
	// TopKRerank bounds both the fused candidates and the reranked output.
	TopKRerank int `json:"top_k_rerank,omitempty"`
	// TopKSummarize is the maximum number of resumes summarized.
	TopKSummarize int `json:"top_k_summarize,omitempty"`
	// Debug enables debug mode, returning candidates and stage latencies.
	Debug bool `json:"debug,omitempty"`
}

// SearchResponse represents the response from a resume search.
type SearchResponse struct {
	// Results are the summarized resumes, best first.
	Results []evidence.ResumeSummary `json:"results"`
	// Debug contains debug information when debug mode is enabled.
	Debug *DebugInfo `json:"debug,omitempty"`
}

// DebugInfo contains detailed retrieval information for debugging and evaluation.
type DebugInfo struct {
	LexicalHits  int `json:"lexical_hits"`
	SemanticHits int `json:"semantic_hits"`
	FusedCount   int `json:"fused_count"`
	// Candidates are the leading reranked records with their fusion fields.
	Candidates []rerank.RerankedRecord `json:"candidates"`
	// Timings holds per-stage latencies in milliseconds.
	Timings Timings `json:"timings_ms"`
}

// Timings holds per-stage latencies in milliseconds.
type Timings struct {
	Retrieve  int64 `json:"retrieve"`
	Fuse      int64 `json:"fuse"`
	Rerank    int64 `json:"rerank"`
	Summarize int64 `json:"summarize"`
	Total     int64 `json:"total"`
}
