package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"resume-rag/internal/ingest"
	"resume-rag/internal/rag"
)

var (
	rankColor  = color.New(color.FgCyan, color.Bold)
	idColor    = color.New(color.FgGreen, color.Bold)
	scoreColor = color.New(color.FgYellow)
	labelColor = color.New(color.Faint)
	warnColor  = color.New(color.FgRed)
)

func printResults(w io.Writer, resp rag.SearchResponse) {
	if len(resp.Results) == 0 {
		warnColor.Fprintln(w, "No matching resumes.")
	}

	for i, r := range resp.Results {
		rankColor.Fprintf(w, "#%d ", i+1)
		idColor.Fprint(w, r.ResumeID)
		scoreColor.Fprintf(w, "  rrf=%.4f ce=%.4f", r.RRFScore, r.CEScore)
		labelColor.Fprintf(w, "  (%d sections)\n", r.MatchedSections)
		fmt.Fprintln(w, indent(strings.TrimSpace(r.Summary), "   "))
		fmt.Fprintln(w)
	}

	if d := resp.Debug; d != nil {
		labelColor.Fprintf(w, "lexical=%d semantic=%d fused=%d\n", d.LexicalHits, d.SemanticHits, d.FusedCount)
		labelColor.Fprintf(w, "timings ms: retrieve=%d fuse=%d rerank=%d summarize=%d total=%d\n",
			d.Timings.Retrieve, d.Timings.Fuse, d.Timings.Rerank, d.Timings.Summarize, d.Timings.Total)
		for _, c := range d.Candidates {
			fmt.Fprintf(w, "  %3d  %-24s chunk=%-3d rrf=%.4f ce=%.4f\n",
				c.RerankPosition, c.ResumeID, c.ChunkID, c.RRFScore, c.CEScore)
		}
	}
}

func printReport(w io.Writer, dir string, r *ingest.Report) {
	labelColor.Fprintf(w, "%s: ", dir)
	fmt.Fprintf(w, "%d files, %d ingested, %d unchanged, %d fragments\n",
		r.Files, r.Ingested, r.Skipped, r.Fragments)
	for _, id := range r.Failed {
		warnColor.Fprintf(w, "failed: %s\n", id)
	}
}

func printStats(w io.Writer, s ingest.CorpusStats) {
	row := func(label string, value any) {
		labelColor.Fprintf(w, "%-16s", label)
		fmt.Fprintln(w, value)
	}
	row("resumes", s.Resumes)
	row("fragments", s.Fragments)
	row("embedding model", s.EmbeddingModel)
	row("dimension", s.Dimension)
	row("chars min", s.FragmentChars.Min)
	row("chars max", s.FragmentChars.Max)
	row("chars mean", fmt.Sprintf("%.1f", s.FragmentChars.Mean))
	row("chars p95", s.FragmentChars.P95)
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
