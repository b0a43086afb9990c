package evidence

import "strings"

// HeaderSection names the content that precedes the first section header.
const HeaderSection = "header"

// Section is one named block of a resume. Content includes the header line.
type Section struct {
	Name    string
	Content string
}

// SplitSections splits a resume on lines starting with "##".
// Section names are the header line stripped of '#' and spaces, lowercased.
// The result keeps first-appearance order; a repeated name replaces the
// earlier content in place.
func SplitSections(text string) []Section {
	var sections []Section
	index := make(map[string]int)

	put := func(name string, lines []string) {
		content := strings.Join(lines, "\n")
		if i, ok := index[name]; ok {
			sections[i].Content = content
			return
		}
		index[name] = len(sections)
		sections = append(sections, Section{Name: name, Content: content})
	}

	current := HeaderSection
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "##") {
			if len(lines) > 0 {
				put(current, lines)
			}
			current = strings.ToLower(strings.Trim(line, "# "))
			lines = []string{line}
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		put(current, lines)
	}
	return sections
}
