package ingest

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"resume-rag/internal/retrieval"
)

// minFragmentRunes is the length a trimmed section must exceed to be kept.
const minFragmentRunes = 50

const imagePlaceholder = "<!-- image -->"

// containerHeading matches heading lines that open a resume section.
var containerHeading = regexp.MustCompile(`(?i)\b(?:about\s*me|summary|profile|experience|work\s+experience|education|skills?|projects?|achievements?|awards?|publications?|competitions?|hackathons?|certifications?)\b`)

// SectionChunker splits converted resumes into section fragments.
type SectionChunker struct {
	md goldmark.Markdown
}

// NewSectionChunker creates a new SectionChunker.
func NewSectionChunker() *SectionChunker {
	return &SectionChunker{
		md: goldmark.New(),
	}
}

// Chunk cleans the markdown and splits it before every ATX heading that names
// a resume section. The chunk id of a fragment is the index of its part, so
// parts dropped for being too short leave gaps.
func (c *SectionChunker) Chunk(resumeID string, content []byte) []retrieval.Fragment {
	cleaned := []byte(fixSpacedCaps(strings.ReplaceAll(string(content), imagePlaceholder, "")))

	bounds := append([]int{0}, c.sectionStarts(cleaned)...)
	bounds = append(bounds, len(cleaned))

	var fragments []retrieval.Fragment
	for i := 0; i+1 < len(bounds); i++ {
		part := strings.TrimSpace(string(cleaned[bounds[i]:bounds[i+1]]))
		if utf8.RuneCountInString(part) <= minFragmentRunes {
			continue
		}
		fragments = append(fragments, retrieval.Fragment{
			ResumeID: resumeID,
			ChunkID:  i,
			Text:     part,
		})
	}
	return fragments
}

// sectionStarts returns the byte offsets of the lines holding container
// headings, in document order.
func (c *SectionChunker) sectionStarts(source []byte) []int {
	doc := c.md.Parser().Parse(text.NewReader(source))

	var starts []int
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if heading.Lines().Len() == 0 {
			return ast.WalkSkipChildren, nil
		}

		seg := heading.Lines().At(0)
		lineStart := bytes.LastIndexByte(source[:seg.Start], '\n') + 1
		lineEnd := len(source)
		if i := bytes.IndexByte(source[lineStart:], '\n'); i >= 0 {
			lineEnd = lineStart + i
		}
		line := source[lineStart:lineEnd]

		if line[0] == '#' && containerHeading.Match(line) {
			starts = append(starts, lineStart)
		}
		return ast.WalkSkipChildren, nil
	})
	return starts
}

// fixSpacedCaps joins runs of three or more single capitals separated by
// whitespace, so "S K I L L S" becomes "SKILLS". Only spaces are removed from
// a run; other whitespace stays.
func fixSpacedCaps(s string) string {
	r := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(r); {
		if end := spacedCapsEnd(r, i); end > 0 {
			for _, ch := range r[i:end] {
				if ch != ' ' {
					b.WriteRune(ch)
				}
			}
			i = end
			continue
		}
		b.WriteRune(r[i])
		i++
	}
	return b.String()
}

// spacedCapsEnd returns the end of the longest spaced-capitals run starting at
// i, or 0 when no run starts there.
func spacedCapsEnd(r []rune, i int) int {
	if !isUpperASCII(r[i]) || (i > 0 && isWordRune(r[i-1])) {
		return 0
	}

	letters := []int{i}
	for j := i + 1; ; {
		k := j
		for k < len(r) && unicode.IsSpace(r[k]) {
			k++
		}
		if k == j || k >= len(r) || !isUpperASCII(r[k]) {
			break
		}
		letters = append(letters, k)
		j = k + 1
	}

	// The last capital must not run into a word; shorter runs always end
	// before whitespace.
	for m := len(letters) - 1; m >= 2; m-- {
		end := letters[m] + 1
		if end == len(r) || !isWordRune(r[end]) {
			return end
		}
	}
	return 0
}

func isUpperASCII(ch rune) bool {
	return ch >= 'A' && ch <= 'Z'
}

func isWordRune(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}
