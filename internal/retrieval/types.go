package retrieval

import "unicode/utf8"

// NoChunk marks a hit whose chunk id is unknown.
const NoChunk = -1

// PreviewLength is the number of characters of fragment text carried on a hit.
const PreviewLength = 400

// Fragment is a contiguous piece of one resume's text.
type Fragment struct {
	// ResumeID identifies the owning resume.
	ResumeID string `json:"resume_id"`
	// ChunkID is the 0-based position of the fragment within its resume.
	ChunkID int `json:"chunk_id"`
	// Text is the fragment content.
	Text string `json:"text"`
}

// RetrievalHit is one ranked result from a single retriever.
type RetrievalHit struct {
	// Rank is 1-based and dense within the retriever's output.
	Rank int `json:"rank"`
	// Score is the retriever-specific score (BM25 or cosine similarity).
	Score    float64 `json:"score"`
	ResumeID string  `json:"resume_id"`
	ChunkID  int     `json:"chunk_id"`
	// Preview is the first PreviewLength characters of the fragment text.
	Preview string `json:"preview"`
}

// Key returns the fusion key identifying the fragment this hit points at.
func (h RetrievalHit) Key() FusionKey {
	return KeyFor(h.ResumeID, h.ChunkID, h.Preview)
}

// FusedRecord is one candidate after reciprocal rank fusion.
// Nil rank and score pointers mean the source did not return the fragment.
type FusedRecord struct {
	ResumeID      string   `json:"resume_id"`
	ChunkID       int      `json:"chunk_id"`
	Preview       string   `json:"preview"`
	LexicalRank   *int     `json:"bm25_rank"`
	LexicalScore  *float64 `json:"bm25_score"`
	SemanticRank  *int     `json:"dense_rank"`
	SemanticScore *float64 `json:"dense_score"`
	RRFScore      float64  `json:"rrf_score"`
	Rank          int      `json:"rank"`
}

// preview returns the first n characters of text.
func preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}
