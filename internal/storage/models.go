package storage

import "time"

// ResumeRecord is one ingested markdown resume.
type ResumeRecord struct {
	ID         string // file stem, also the fragment resume id
	SourcePath string
	Hash       string // SHA256 hex string of file content
	UpdatedAt  time.Time
}

// FragmentRecord is one stored fragment with its embedding.
type FragmentRecord struct {
	ResumeID string
	ChunkID  int
	Seq      int64 // global corpus position
	Text     string
	Vector   []float32
}

// CorpusMeta describes how the stored vectors were produced.
type CorpusMeta struct {
	EmbeddingModel string
	Dimension      int
}
