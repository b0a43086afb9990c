package evidence

import (
	"strings"
	"unicode/utf8"
)

const (
	sectionSeparator = "\n\n"
	truncationMarker = "\n...[truncated]"
)

// PrioritySections lists section-name substrings in the order they are kept.
var PrioritySections = []string{
	"education",
	"experience",
	"skills",
	"projects",
	"summary",
	"publications",
	"certifications",
	"about",
	"achievements",
	"awards",
}

// Truncate joins sections into at most maxChars characters, keeping the
// highest-priority sections first. For each priority entry the first section
// whose name contains it is added whole when it fits, or cut with a
// truncation marker when only part of it fits, after which the budget is
// spent. Unused sections are then added in order while they fit whole.
// Separators and the marker count against the budget.
func Truncate(sections []Section, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}

	b := budget{max: maxChars}
	used := make([]bool, len(sections))

	for _, want := range PrioritySections {
		if b.exhausted {
			break
		}
		i := findSection(sections, want)
		if i < 0 || used[i] {
			continue
		}
		used[i] = true
		if !b.addWhole(sections[i].Content) {
			b.addPartial(sections[i].Content)
		}
	}

	for i, s := range sections {
		if b.exhausted {
			break
		}
		if used[i] {
			continue
		}
		if b.addWhole(s.Content) {
			used[i] = true
		}
	}

	return strings.Join(b.parts, sectionSeparator)
}

func findSection(sections []Section, want string) int {
	for i, s := range sections {
		if strings.Contains(s.Name, want) {
			return i
		}
	}
	return -1
}

type budget struct {
	max       int
	used      int
	parts     []string
	exhausted bool
}

func (b *budget) overhead() int {
	if len(b.parts) == 0 {
		return 0
	}
	return utf8.RuneCountInString(sectionSeparator)
}

func (b *budget) addWhole(content string) bool {
	cost := b.overhead() + utf8.RuneCountInString(content)
	if b.used+cost > b.max {
		return false
	}
	b.parts = append(b.parts, content)
	b.used += cost
	return true
}

// addPartial adds as much of content as fits before the marker and marks the
// budget as spent.
func (b *budget) addPartial(content string) {
	room := b.max - b.used - b.overhead() - utf8.RuneCountInString(truncationMarker)
	if room > 0 {
		runes := []rune(content)
		b.parts = append(b.parts, string(runes[:min(room, len(runes))])+truncationMarker)
	}
	b.exhausted = true
}
