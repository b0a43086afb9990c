package evidence

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_summarizer.go -package=mocks resume-rag/internal/evidence Summarizer

import (
	"context"
	"fmt"
	"strings"

	"resume-rag/internal/contextutil"
	"resume-rag/internal/rerank"
	"resume-rag/internal/retrieval"
)

const (
	// matchedContextRecords is how many of a resume's matched fragments feed the prompt.
	matchedContextRecords = 3
	matchedSeparator      = "\n---\n"
	noMatchedContext      = "N/A"
	fragmentSeparator     = "\n\n"
)

// Summarizer completes a prompt with a text-generation model.
type Summarizer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AssembleOptions bounds how many resumes are summarized and how much text
// each prompt carries.
type AssembleOptions struct {
	TopN            int
	MaxResumeChars  int
	MaxContextChars int
}

// DefaultAssembleOptions returns the standard summarization limits.
func DefaultAssembleOptions() AssembleOptions {
	return AssembleOptions{TopN: 5, MaxResumeChars: 6000, MaxContextChars: 2000}
}

// ResumeSummary is the final per-candidate result.
type ResumeSummary struct {
	ResumeID string `json:"resume_id"`
	Summary  string `json:"summary"`
	// RRFScore and CEScore come from the resume's best-ranked matched fragment.
	RRFScore        float64 `json:"rrf_score"`
	CEScore         float64 `json:"ce_score"`
	MatchedSections int     `json:"matched_sections"`
}

// Assembler groups reranked fragments by resume and summarizes each resume.
type Assembler struct {
	summarizer Summarizer
}

// NewAssembler creates an assembler backed by summarizer.
func NewAssembler(summarizer Summarizer) *Assembler {
	return &Assembler{summarizer: summarizer}
}

// ResumeMatches is the ordered list of reranked records for one resume.
type ResumeMatches struct {
	ResumeID string
	Records  []rerank.RerankedRecord
}

// GroupByResume walks reranked records in order and groups them by resume.
// At most topN distinct resumes are admitted; once the cap is reached new
// resumes are ignored but records of admitted resumes are still appended.
// Records with an empty resume id are skipped.
func GroupByResume(reranked []rerank.RerankedRecord, topN int) []ResumeMatches {
	var groups []ResumeMatches
	index := make(map[string]int)
	for _, rec := range reranked {
		if rec.ResumeID == "" {
			continue
		}
		i, ok := index[rec.ResumeID]
		if !ok {
			if len(groups) >= topN {
				continue
			}
			i = len(groups)
			index[rec.ResumeID] = i
			groups = append(groups, ResumeMatches{ResumeID: rec.ResumeID})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	return groups
}

// Assemble produces one summary per admitted resume, in first-seen order.
func (a *Assembler) Assemble(ctx context.Context, query string, reranked []rerank.RerankedRecord, corpus *retrieval.Corpus, opts AssembleOptions) ([]ResumeSummary, error) {
	logger := contextutil.LoggerFromContext(ctx)

	groups := GroupByResume(reranked, opts.TopN)
	summaries := make([]ResumeSummary, 0, len(groups))
	for _, g := range groups {
		prompt := BuildPrompt(
			query,
			g.ResumeID,
			clip(MatchedContext(g.Records, corpus), opts.MaxContextChars),
			Truncate(SplitSections(ReconstructResume(corpus, g.ResumeID)), opts.MaxResumeChars),
		)

		summary, err := a.summarizer.Complete(ctx, prompt)
		if err != nil {
			logger.ErrorContext(ctx, "failed to summarize resume", "resume_id", g.ResumeID, "error", err)
			return nil, fmt.Errorf("failed to summarize resume %s: %w", g.ResumeID, err)
		}

		best := g.Records[0]
		summaries = append(summaries, ResumeSummary{
			ResumeID:        g.ResumeID,
			Summary:         summary,
			RRFScore:        best.RRFScore,
			CEScore:         best.CEScore,
			MatchedSections: len(g.Records),
		})
		logger.DebugContext(ctx, "resume summarized", "resume_id", g.ResumeID, "matched", len(g.Records), "prompt_chars", len(prompt))
	}

	logger.InfoContext(ctx, "evidence assembled", "resumes", len(summaries))
	return summaries, nil
}

// ReconstructResume joins every fragment of a resume in corpus order.
func ReconstructResume(corpus *retrieval.Corpus, resumeID string) string {
	frags := corpus.ResumeFragments(resumeID)
	texts := make([]string, len(frags))
	for i, f := range frags {
		texts[i] = f.Text
	}
	return strings.Join(texts, fragmentSeparator)
}

// MatchedContext joins the texts of the first matched fragments, or returns
// "N/A" when none resolve.
func MatchedContext(records []rerank.RerankedRecord, corpus *retrieval.Corpus) string {
	var texts []string
	for _, rec := range records[:min(len(records), matchedContextRecords)] {
		if f, ok := corpus.Lookup(rec.ResumeID, rec.ChunkID); ok {
			texts = append(texts, f.Text)
		}
	}
	if len(texts) == 0 {
		return noMatchedContext
	}
	return strings.Join(texts, matchedSeparator)
}

// clip returns the first n characters of s.
func clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
