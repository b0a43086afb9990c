package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"unicode/utf8"

	"go.uber.org/mock/gomock"

	"resume-rag/internal/retrieval"
	"resume-rag/internal/storage"
	"resume-rag/internal/vectorstore"
	"resume-rag/internal/vectorstore/mocks"
)

// fakeEmbedder returns [rune count, 1] for every text.
type fakeEmbedder struct {
	mu      sync.Mutex
	calls   int
	batches []int
	err     error
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string, _ string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.batches = append(f.batches, len(texts))
	if f.err != nil {
		return nil, f.err
	}
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = []float32{float32(utf8.RuneCountInString(text)), 1}
	}
	return vecs, nil
}

type testStores struct {
	resumes   *storage.ResumeRepo
	fragments *storage.FragmentRepo
	meta      *storage.MetaRepo
}

func newTestStores(t *testing.T) testStores {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}
	return testStores{
		resumes:   storage.NewResumeRepo(db),
		fragments: storage.NewFragmentRepo(db),
		meta:      storage.NewMetaRepo(db),
	}
}

// resumeMarkdown yields two fragments, chunk ids 1 and 2.
func resumeMarkdown(name, skill string) string {
	return "# " + name + "\n\n" +
		"## Summary\n" + name + " is an engineer focused on " + skill + " with years of production experience.\n\n" +
		"## Skills\n" + skill + ", testing, observability, incident response and mentoring.\n"
}

func writeResume(t *testing.T, dir, id, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, id+".md"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write resume: %v", err)
	}
}

func newTestPipeline(t *testing.T, s testStores, emb Embedder, vs vectorstore.VectorStore, opts Options) *Pipeline {
	t.Helper()
	if opts.EmbeddingModel == "" {
		opts.EmbeddingModel = "test-model"
	}
	p, err := NewPipeline(s.resumes, s.fragments, s.meta, emb, vs, opts)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	t.Cleanup(p.Release)
	return p
}

func TestPipeline_IngestDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeResume(t, dir, "alice", resumeMarkdown("Alice", "Go"))
	writeResume(t, dir, "bob", resumeMarkdown("Bob", "Python"))

	stores := newTestStores(t)
	emb := &fakeEmbedder{}
	p := newTestPipeline(t, stores, emb, nil, Options{BatchSize: 1, Workers: 2})

	report, err := p.IngestDir(ctx, dir)
	if err != nil {
		t.Fatalf("IngestDir() error = %v", err)
	}
	if report.Files != 2 || report.Ingested != 2 || report.Fragments != 4 || len(report.Failed) != 0 {
		t.Errorf("IngestDir() report = %+v", report)
	}
	if emb.calls != 4 {
		t.Errorf("embedder calls = %d, want 4", emb.calls)
	}

	corpus, model, err := storage.LoadCorpus(ctx, stores.fragments, stores.meta)
	if err != nil {
		t.Fatalf("LoadCorpus() error = %v", err)
	}
	if model != "test-model" {
		t.Errorf("LoadCorpus() model = %q, want test-model", model)
	}

	wantKeys := []struct {
		resumeID string
		chunkID  int
	}{{"alice", 1}, {"alice", 2}, {"bob", 1}, {"bob", 2}}
	if corpus.Len() != len(wantKeys) {
		t.Fatalf("corpus.Len() = %d, want %d", corpus.Len(), len(wantKeys))
	}
	for i, want := range wantKeys {
		f := corpus.Fragment(i)
		if f.ResumeID != want.resumeID || f.ChunkID != want.chunkID {
			t.Errorf("Fragment(%d) = %s::%d, want %s::%d", i, f.ResumeID, f.ChunkID, want.resumeID, want.chunkID)
		}
		if got := corpus.Vectors()[i][0]; got != float32(utf8.RuneCountInString(f.Text)) {
			t.Errorf("vector %d not aligned with its fragment: %v", i, got)
		}
	}

	// Unchanged files are skipped without embedding.
	report, err = p.IngestDir(ctx, dir)
	if err != nil {
		t.Fatalf("IngestDir() second run error = %v", err)
	}
	if report.Skipped != 2 || report.Ingested != 0 {
		t.Errorf("IngestDir() second run report = %+v", report)
	}
	if emb.calls != 4 {
		t.Errorf("embedder calls after second run = %d, want 4", emb.calls)
	}

	// A changed resume replaces its fragments and moves to the end.
	writeResume(t, dir, "alice", resumeMarkdown("Alice", "Rust"))
	report, err = p.IngestDir(ctx, dir)
	if err != nil {
		t.Fatalf("IngestDir() third run error = %v", err)
	}
	if report.Ingested != 1 || report.Skipped != 1 {
		t.Errorf("IngestDir() third run report = %+v", report)
	}

	records, err := stores.fragments.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	order := make([]string, len(records))
	for i, r := range records {
		order[i] = r.ResumeID
	}
	want := []string{"bob", "bob", "alice", "alice"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("corpus order = %v, want %v", order, want)
		}
	}
}

func TestPipeline_IngestDir_EmbedError(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeResume(t, dir, "alice", resumeMarkdown("Alice", "Go"))

	stores := newTestStores(t)
	p := newTestPipeline(t, stores, &fakeEmbedder{err: errors.New("upstream down")}, nil, Options{})

	report, err := p.IngestDir(ctx, dir)
	if err != nil {
		t.Fatalf("IngestDir() error = %v", err)
	}
	if len(report.Failed) != 1 || report.Failed[0] != "alice" {
		t.Errorf("IngestDir() Failed = %v, want [alice]", report.Failed)
	}

	// Nothing is recorded, so the next run retries the file.
	if _, err := stores.resumes.Get(ctx, "alice"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("resumes.Get() error = %v, want ErrNotFound", err)
	}
}

func TestPipeline_IngestFile_MetaMismatch(t *testing.T) {
	tests := []struct {
		name    string
		meta    storage.CorpusMeta
		wantDim bool
	}{
		{name: "dimension", meta: storage.CorpusMeta{EmbeddingModel: "test-model", Dimension: 3}, wantDim: true},
		{name: "model", meta: storage.CorpusMeta{EmbeddingModel: "other-model", Dimension: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			writeResume(t, dir, "alice", resumeMarkdown("Alice", "Go"))

			stores := newTestStores(t)
			if err := stores.meta.Set(ctx, tt.meta); err != nil {
				t.Fatalf("meta.Set() error = %v", err)
			}
			p := newTestPipeline(t, stores, &fakeEmbedder{}, nil, Options{})

			_, err := p.IngestFile(ctx, SourceFile{ResumeID: "alice", Path: filepath.Join(dir, "alice.md")})
			if err == nil {
				t.Fatal("IngestFile() expected error, got nil")
			}
			if tt.wantDim && !errors.Is(err, retrieval.ErrDimensionMismatch) {
				t.Errorf("IngestFile() error = %v, want ErrDimensionMismatch", err)
			}
		})
	}
}

func TestPipeline_Mirror(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeResume(t, dir, "alice", resumeMarkdown("Alice", "Go"))
	file := SourceFile{ResumeID: "alice", Path: filepath.Join(dir, "alice.md")}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	vs := mocks.NewMockVectorStore(ctrl)
	stores := newTestStores(t)
	p := newTestPipeline(t, stores, &fakeEmbedder{}, vs, Options{Collection: "resumes"})

	vs.EXPECT().Upsert(gomock.Any(), "resumes", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, points []vectorstore.Point) error {
			if len(points) != 2 {
				t.Fatalf("Upsert() got %d points, want 2", len(points))
			}
			if points[0].ID != vectorstore.PointID("alice", 1) || points[1].ID != vectorstore.PointID("alice", 2) {
				t.Errorf("Upsert() point ids = %s, %s", points[0].ID, points[1].ID)
			}
			if points[0].Meta[vectorstore.PayloadSeq] != int64(1) || points[1].Meta[vectorstore.PayloadSeq] != int64(2) {
				t.Errorf("Upsert() seq payloads = %v, %v", points[0].Meta[vectorstore.PayloadSeq], points[1].Meta[vectorstore.PayloadSeq])
			}
			if points[0].Meta[vectorstore.PayloadEmbeddingModel] != "test-model" {
				t.Errorf("Upsert() model payload = %v", points[0].Meta[vectorstore.PayloadEmbeddingModel])
			}
			return nil
		},
	)
	if _, err := p.IngestFile(ctx, file); err != nil {
		t.Fatalf("IngestFile() error = %v", err)
	}

	// Dropping the skills section removes both old points before the rewrite.
	writeResume(t, dir, "alice", "# Alice\n\n## Summary\nAlice is an engineer focused on Go with years of production experience.\n")
	gomock.InOrder(
		vs.EXPECT().Delete(gomock.Any(), "resumes", []string{vectorstore.PointID("alice", 1), vectorstore.PointID("alice", 2)}).Return(nil),
		vs.EXPECT().Upsert(gomock.Any(), "resumes", gomock.Len(1)).Return(nil),
	)
	result, err := p.IngestFile(ctx, file)
	if err != nil {
		t.Fatalf("IngestFile() second run error = %v", err)
	}
	if result.Fragments != 1 {
		t.Errorf("IngestFile() Fragments = %d, want 1", result.Fragments)
	}
}

func TestPipeline_Mirror_UpsertFails(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeResume(t, dir, "alice", resumeMarkdown("Alice", "Go"))

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	vs := mocks.NewMockVectorStore(ctrl)
	vs.EXPECT().Upsert(gomock.Any(), "resumes", gomock.Any()).Return(errors.New("unavailable"))

	stores := newTestStores(t)
	p := newTestPipeline(t, stores, &fakeEmbedder{}, vs, Options{Collection: "resumes"})

	if _, err := p.IngestFile(ctx, SourceFile{ResumeID: "alice", Path: filepath.Join(dir, "alice.md")}); err == nil {
		t.Fatal("IngestFile() expected error, got nil")
	}

	// The hash is not recorded, so the next run retries the mirror.
	rec, err := stores.resumes.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("resumes.Get() error = %v", err)
	}
	if rec.Hash != "" {
		t.Errorf("resume hash = %q, want empty", rec.Hash)
	}
}

func TestNewPipeline_MirrorNeedsCollection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stores := newTestStores(t)
	_, err := NewPipeline(stores.resumes, stores.fragments, stores.meta, &fakeEmbedder{}, mocks.NewMockVectorStore(ctrl), Options{})
	if err == nil {
		t.Error("NewPipeline() expected error without a collection, got nil")
	}
}

func TestPipeline_EmbedAll_PreservesOrder(t *testing.T) {
	stores := newTestStores(t)
	emb := &fakeEmbedder{}
	p := newTestPipeline(t, stores, emb, nil, Options{BatchSize: 2, Workers: 3})

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vectors, err := p.embedAll(context.Background(), texts)
	if err != nil {
		t.Fatalf("embedAll() error = %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("embedAll() returned %d vectors, want %d", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if v[0] != float32(i+1) {
			t.Errorf("vectors[%d][0] = %v, want %v", i, v[0], i+1)
		}
	}
	if emb.calls != 3 {
		t.Errorf("embedder calls = %d, want 3", emb.calls)
	}
	for _, n := range emb.batches {
		if n > 2 {
			t.Errorf("batch size %d exceeds 2", n)
		}
	}
}
