package ingest

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/panjf2000/ants/v2"

	"resume-rag/internal/contextutil"
	"resume-rag/internal/retrieval"
	"resume-rag/internal/storage"
	"resume-rag/internal/vectorstore"
)

const (
	defaultBatchSize = 100
	defaultWorkers   = 4
)

// Embedder produces one vector per text, in input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string, model string) ([][]float32, error)
}

// MetaStore reads and records how the stored vectors were produced.
type MetaStore interface {
	Get(ctx context.Context) (*storage.CorpusMeta, error)
	Set(ctx context.Context, meta storage.CorpusMeta) error
}

// collectionEnsurer is implemented by vector stores that can create their
// collection on demand.
type collectionEnsurer interface {
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error
}

// Options configures a Pipeline.
type Options struct {
	EmbeddingModel string
	BatchSize      int    // texts per embedding request
	Workers        int    // concurrent embedding requests
	Collection     string // Qdrant collection mirrored to, when a vector store is set
}

// FileResult describes the outcome of ingesting one file.
type FileResult struct {
	ResumeID  string
	Fragments int
	Skipped   bool // content hash unchanged
}

// Report summarizes a directory ingest.
type Report struct {
	Files     int      `json:"files"`
	Ingested  int      `json:"ingested"`
	Skipped   int      `json:"skipped"`
	Fragments int      `json:"fragments"`
	Failed    []string `json:"failed,omitempty"` // resume ids
}

// Pipeline ingests markdown resumes into SQLite and, optionally, Qdrant.
type Pipeline struct {
	resumes     storage.ResumeStore
	fragments   storage.FragmentStore
	meta        MetaStore
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	opts        Options
	chunker     *SectionChunker
	pool        *ants.Pool
	ensured     bool
}

// NewPipeline creates a new ingestion pipeline. vectorStore may be nil, in
// which case nothing is mirrored. Call Release when done.
func NewPipeline(
	resumes storage.ResumeStore,
	fragments storage.FragmentStore,
	meta MetaStore,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	opts Options,
) (*Pipeline, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if vectorStore != nil && opts.Collection == "" {
		return nil, errors.New("a collection is required to mirror to the vector store")
	}

	pool, err := ants.NewPool(opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding pool: %w", err)
	}

	return &Pipeline{
		resumes:     resumes,
		fragments:   fragments,
		meta:        meta,
		embedder:    embedder,
		vectorStore: vectorStore,
		opts:        opts,
		chunker:     NewSectionChunker(),
		pool:        pool,
	}, nil
}

// Release stops the embedding workers. The pipeline must not be used after.
func (p *Pipeline) Release() {
	p.pool.Release()
}

// IngestDir ingests every markdown file in dir. A failing file is logged and
// recorded in the report; the remaining files are still ingested.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (*Report, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := Scan(ctx, dir)
	if err != nil {
		return nil, err
	}

	report := &Report{Files: len(files)}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result, err := p.IngestFile(ctx, file)
		if err != nil {
			logger.ErrorContext(ctx, "failed to ingest resume", "resume_id", file.ResumeID, "path", file.Path, "error", err)
			report.Failed = append(report.Failed, file.ResumeID)
			continue
		}
		if result.Skipped {
			report.Skipped++
			continue
		}
		report.Ingested++
		report.Fragments += result.Fragments
	}

	logger.InfoContext(ctx, "ingest finished",
		"files", report.Files,
		"ingested", report.Ingested,
		"skipped", report.Skipped,
		"failed", len(report.Failed),
		"fragments", report.Fragments,
	)
	return report, nil
}

// IngestFile chunks, embeds and stores one resume. Unchanged files (same
// SHA-256) are skipped. Re-ingested resumes replace their old fragments and
// move to the end of the corpus.
func (p *Pipeline) IngestFile(ctx context.Context, file SourceFile) (*FileResult, error) {
	logger := contextutil.LoggerFromContext(ctx).With("resume_id", file.ResumeID)

	content, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", file.Path, err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	existing, err := p.resumes.Get(ctx, file.ResumeID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing resume: %w", err)
	}
	if existing != nil && existing.Hash == hash {
		logger.DebugContext(ctx, "skipping unchanged resume", "hash", hash)
		return &FileResult{ResumeID: file.ResumeID, Skipped: true}, nil
	}

	fragments := p.chunker.Chunk(file.ResumeID, content)
	if len(fragments) == 0 {
		logger.WarnContext(ctx, "no fragments generated", "path", file.Path)
	}

	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}
	vectors, err := p.embedAll(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
		if err := p.checkMeta(ctx, dim); err != nil {
			return nil, err
		}
	}

	// Fragments reference the resume row, so a new resume is stored before
	// its fragments. The hash is only recorded once everything else succeeded.
	if existing == nil {
		if err := p.resumes.Upsert(ctx, &storage.ResumeRecord{ID: file.ResumeID, SourcePath: file.Path}); err != nil {
			return nil, fmt.Errorf("failed to upsert resume: %w", err)
		}
	}

	var staleIDs []string
	if p.vectorStore != nil && existing != nil {
		old, err := p.fragments.ListByResume(ctx, file.ResumeID)
		if err != nil {
			return nil, fmt.Errorf("failed to list old fragments: %w", err)
		}
		for _, rec := range old {
			staleIDs = append(staleIDs, vectorstore.PointID(rec.ResumeID, rec.ChunkID))
		}
	}

	records := make([]storage.FragmentRecord, len(fragments))
	for i, f := range fragments {
		records[i] = storage.FragmentRecord{ChunkID: f.ChunkID, Text: f.Text, Vector: vectors[i]}
	}
	if err := p.fragments.ReplaceForResume(ctx, file.ResumeID, records); err != nil {
		return nil, fmt.Errorf("failed to store fragments: %w", err)
	}

	if p.vectorStore != nil {
		if err := p.mirror(ctx, fragments, records, staleIDs, dim); err != nil {
			return nil, err
		}
	}

	if dim > 0 {
		if err := p.meta.Set(ctx, storage.CorpusMeta{EmbeddingModel: p.opts.EmbeddingModel, Dimension: dim}); err != nil {
			return nil, fmt.Errorf("failed to record corpus meta: %w", err)
		}
	}

	if err := p.resumes.Upsert(ctx, &storage.ResumeRecord{ID: file.ResumeID, SourcePath: file.Path, Hash: hash}); err != nil {
		return nil, fmt.Errorf("failed to upsert resume: %w", err)
	}

	logger.InfoContext(ctx, "ingested resume", "fragments", len(records), "hash", hash)
	return &FileResult{ResumeID: file.ResumeID, Fragments: len(records)}, nil
}

// checkMeta rejects vectors that do not match the ones already stored.
func (p *Pipeline) checkMeta(ctx context.Context, dim int) error {
	meta, err := p.meta.Get(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read corpus meta: %w", err)
	}
	if meta.Dimension != 0 && meta.Dimension != dim {
		return fmt.Errorf("%w: corpus has %d, %s produced %d", retrieval.ErrDimensionMismatch, meta.Dimension, p.opts.EmbeddingModel, dim)
	}
	if meta.EmbeddingModel != p.opts.EmbeddingModel {
		return fmt.Errorf("corpus was embedded with %s, not %s; re-ingest into a fresh database", meta.EmbeddingModel, p.opts.EmbeddingModel)
	}
	return nil
}

// mirror writes the stored fragments to the vector store and removes points
// of chunks that no longer exist.
func (p *Pipeline) mirror(ctx context.Context, fragments []retrieval.Fragment, records []storage.FragmentRecord, staleIDs []string, dim int) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(staleIDs) > 0 {
		if err := p.vectorStore.Delete(ctx, p.opts.Collection, staleIDs); err != nil {
			// Points with the same chunk id are overwritten below anyway.
			logger.WarnContext(ctx, "failed to delete old points", "error", err, "count", len(staleIDs))
		}
	}
	if len(records) == 0 {
		return nil
	}

	if ensurer, ok := p.vectorStore.(collectionEnsurer); ok && !p.ensured {
		if err := ensurer.EnsureCollection(ctx, p.opts.Collection, dim); err != nil {
			return fmt.Errorf("failed to ensure collection: %w", err)
		}
		p.ensured = true
	}

	points := make([]vectorstore.Point, len(records))
	for i, rec := range records {
		points[i] = vectorstore.FragmentPoint(fragments[i], rec.Seq, rec.Vector, p.opts.EmbeddingModel)
	}
	if err := p.vectorStore.Upsert(ctx, p.opts.Collection, points); err != nil {
		return fmt.Errorf("failed to mirror fragments: %w", err)
	}
	return nil
}

// embedAll embeds texts in batches on the worker pool and reassembles the
// vectors in input order.
func (p *Pipeline) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var batches [][]string
	for start := 0; start < len(texts); start += p.opts.BatchSize {
		end := min(start+p.opts.BatchSize, len(texts))
		batches = append(batches, texts[start:end])
	}

	results := make([][][]float32, len(batches))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for i, batch := range batches {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				setErr(err)
				return
			}
			vecs, err := p.embedder.EmbedTexts(ctx, batch, p.opts.EmbeddingModel)
			if err != nil {
				setErr(fmt.Errorf("batch %d: %w", i, err))
				return
			}
			if len(vecs) != len(batch) {
				setErr(fmt.Errorf("batch %d: expected %d embeddings, got %d", i, len(batch), len(vecs)))
				return
			}
			results[i] = vecs
		})
		if err != nil {
			wg.Done()
			setErr(fmt.Errorf("failed to submit batch %d: %w", i, err))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	vectors := make([][]float32, 0, len(texts))
	for _, vecs := range results {
		vectors = append(vectors, vecs...)
	}
	return vectors, nil
}
