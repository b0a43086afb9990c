package ingest

import (
	"strings"
	"testing"
)

func TestFixSpacedCaps(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "spaced word", in: "S K I L L S", want: "SKILLS"},
		{name: "in heading", in: "## E D U C A T I O N\nMIT", want: "## EDUCATION\nMIT"},
		{name: "two letters untouched", in: "A B", want: "A B"},
		{name: "preceded by word", in: "xA B C", want: "xA B C"},
		{name: "runs into word", in: "A B Cd", want: "A B Cd"},
		{name: "followed by text", in: "A B C D e", want: "ABCD e"},
		{name: "newlines kept", in: "A\nB\nC", want: "A\nB\nC"},
		{name: "multiple spaces", in: "A  B  C", want: "ABC"},
		{name: "lowercase untouched", in: "a b c", want: "a b c"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fixSpacedCaps(tt.in); got != tt.want {
				t.Errorf("fixSpacedCaps(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSectionChunker_Chunk(t *testing.T) {
	chunker := NewSectionChunker()

	content := strings.Join([]string{
		"# Jane Doe",
		"jane@example.com",
		"",
		"## Summary",
		"Backend engineer with eight years of experience building distributed systems in Go.",
		"",
		"## S K I L L S",
		"Go, Kubernetes",
		"",
		"## Experience",
		"<!-- image -->",
		"Acme Corp, Staff Engineer, 2019 to present, led the payments platform migration.",
		"",
	}, "\n")

	frags := chunker.Chunk("jane", []byte(content))
	if len(frags) != 2 {
		t.Fatalf("Chunk() returned %d fragments, want 2: %+v", len(frags), frags)
	}

	if frags[0].ChunkID != 1 || frags[1].ChunkID != 3 {
		t.Errorf("Chunk() chunk ids = %d, %d, want 1, 3", frags[0].ChunkID, frags[1].ChunkID)
	}
	for _, f := range frags {
		if f.ResumeID != "jane" {
			t.Errorf("Chunk() ResumeID = %q, want jane", f.ResumeID)
		}
		if strings.Contains(f.Text, imagePlaceholder) {
			t.Errorf("Chunk() kept image placeholder: %q", f.Text)
		}
		if f.Text != strings.TrimSpace(f.Text) {
			t.Errorf("Chunk() text not trimmed: %q", f.Text)
		}
	}
	if !strings.HasPrefix(frags[0].Text, "## Summary\n") {
		t.Errorf("Chunk() first fragment = %q, want it to start at the Summary heading", frags[0].Text)
	}
	if !strings.HasPrefix(frags[1].Text, "## Experience\n") {
		t.Errorf("Chunk() second fragment = %q, want it to start at the Experience heading", frags[1].Text)
	}
}

func TestSectionChunker_Boundaries(t *testing.T) {
	chunker := NewSectionChunker()
	long := strings.Repeat("word ", 20)

	tests := []struct {
		name    string
		content string
		wantIDs []int
	}{
		{
			name:    "no headings",
			content: long,
			wantIDs: []int{0},
		},
		{
			name:    "container heading first",
			content: "# Skills\n" + long,
			wantIDs: []int{1},
		},
		{
			name:    "other headings do not split",
			content: "# Jane\n" + long + "\n## Hobbies\n" + long,
			wantIDs: []int{0},
		},
		{
			name:    "word boundary",
			content: "## Skillset\n" + long,
			wantIDs: []int{0},
		},
		{
			name:    "case insensitive multiword",
			content: long + "\n### WORK   EXPERIENCE\n" + long + "\n###### about me\n" + long,
			wantIDs: []int{0, 1, 2},
		},
		{
			name:    "heading inside code block",
			content: "## Projects\n" + long + "\n```\n## Education\n```\n",
			wantIDs: []int{1},
		},
		{
			name:    "setext heading",
			content: long + "\nEducation\n=========\n" + long,
			wantIDs: []int{0},
		},
		{
			name:    "exactly fifty characters dropped",
			content: strings.Repeat("a", 50) + "\n## Awards\n" + strings.Repeat("b", 51),
			wantIDs: []int{1},
		},
		{
			name:    "empty",
			content: "",
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frags := chunker.Chunk("r", []byte(tt.content))
			var ids []int
			for _, f := range frags {
				ids = append(ids, f.ChunkID)
			}
			if len(ids) != len(tt.wantIDs) {
				t.Fatalf("Chunk() ids = %v, want %v", ids, tt.wantIDs)
			}
			for i := range ids {
				if ids[i] != tt.wantIDs[i] {
					t.Errorf("Chunk() ids = %v, want %v", ids, tt.wantIDs)
					break
				}
			}
		})
	}
}
