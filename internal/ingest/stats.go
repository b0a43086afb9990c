package ingest

import (
	"math"
	"sort"
	"unicode/utf8"

	"resume-rag/internal/retrieval"
)

// CorpusStats describes the loaded corpus.
type CorpusStats struct {
	Resumes        int         `json:"resumes"`
	Fragments      int         `json:"fragments"`
	FragmentChars  LengthStats `json:"fragment_chars"`
	EmbeddingModel string      `json:"embedding_model,omitempty"`
	Dimension      int         `json:"dimension"`
}

// LengthStats contains statistics about fragment lengths in characters.
type LengthStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// Stats computes statistics over a corpus. model is the embedding model the
// corpus vectors were produced with, if known.
func Stats(corpus *retrieval.Corpus, model string) CorpusStats {
	lengths := make([]int, 0, corpus.Len())
	for _, f := range corpus.Fragments() {
		lengths = append(lengths, utf8.RuneCountInString(f.Text))
	}

	return CorpusStats{
		Resumes:        len(corpus.ResumeIDs()),
		Fragments:      corpus.Len(),
		FragmentChars:  computeLengthStats(lengths),
		EmbeddingModel: model,
		Dimension:      corpus.Dim(),
	}
}

// computeLengthStats computes min, max, mean, and p95 from lengths.
func computeLengthStats(lengths []int) LengthStats {
	if len(lengths) == 0 {
		return LengthStats{}
	}

	sorted := make([]int, len(lengths))
	copy(sorted, lengths)
	sort.Ints(sorted)

	sum := 0
	for _, n := range lengths {
		sum += n
	}
	mean := float64(sum) / float64(len(lengths))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return LengthStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // 2 decimal places
		P95:  sorted[p95Index],
	}
}
