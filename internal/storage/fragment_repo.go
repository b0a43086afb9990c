package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_fragment_store.go -package=mocks resume-rag/internal/storage FragmentStore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
)

// FragmentStore defines the interface for fragment storage operations.
type FragmentStore interface {
	// ReplaceForResume deletes the resume's fragments and inserts the given ones
	// at the end of the corpus, in slice order. Seq is assigned by the store.
	ReplaceForResume(ctx context.Context, resumeID string, fragments []FragmentRecord) error
	// ListAll returns every fragment in corpus order.
	ListAll(ctx context.Context) ([]FragmentRecord, error)
	// ListByResume returns a resume's fragments in corpus order.
	ListByResume(ctx context.Context, resumeID string) ([]FragmentRecord, error)
}

// FragmentRepo provides methods for fragment operations.
// It implements the FragmentStore interface.
type FragmentRepo struct {
	db *sql.DB
}

// NewFragmentRepo creates a new FragmentRepo.
func NewFragmentRepo(db *sql.DB) *FragmentRepo {
	return &FragmentRepo{db: db}
}

// ReplaceForResume swaps a resume's fragments in one transaction.
func (r *FragmentRepo) ReplaceForResume(ctx context.Context, resumeID string, fragments []FragmentRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM fragments WHERE resume_id = ?", resumeID); err != nil {
		return fmt.Errorf("failed to delete fragments by resume: %w", err)
	}

	var next int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM fragments").Scan(&next); err != nil {
		return fmt.Errorf("failed to read next seq: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO fragments (resume_id, chunk_id, seq, text, embedding) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i := range fragments {
		f := &fragments[i]
		f.ResumeID = resumeID
		f.Seq = next + int64(i)
		if _, err := stmt.ExecContext(ctx, f.ResumeID, f.ChunkID, f.Seq, f.Text, encodeVector(f.Vector)); err != nil {
			return fmt.Errorf("failed to insert fragment %s::%d: %w", f.ResumeID, f.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fragments: %w", err)
	}
	return nil
}

// ListAll returns every fragment in corpus order.
func (r *FragmentRepo) ListAll(ctx context.Context) ([]FragmentRecord, error) {
	return r.list(ctx,
		"SELECT resume_id, chunk_id, seq, text, embedding FROM fragments ORDER BY seq",
	)
}

// ListByResume returns a resume's fragments in corpus order.
// Returns an empty slice if the resume has no fragments (not an error).
func (r *FragmentRepo) ListByResume(ctx context.Context, resumeID string) ([]FragmentRecord, error) {
	return r.list(ctx,
		"SELECT resume_id, chunk_id, seq, text, embedding FROM fragments WHERE resume_id = ? ORDER BY seq",
		resumeID,
	)
}

func (r *FragmentRepo) list(ctx context.Context, query string, args ...any) ([]FragmentRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fragments: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var fragments []FragmentRecord
	for rows.Next() {
		var f FragmentRecord
		var blob []byte
		if err := rows.Scan(&f.ResumeID, &f.ChunkID, &f.Seq, &f.Text, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan fragment: %w", err)
		}
		if f.Vector, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("fragment %s::%d: %w", f.ResumeID, f.ChunkID, err)
		}
		fragments = append(fragments, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return fragments, nil
}

// encodeVector packs a vector as little-endian float32s. Nil stays NULL.
func encodeVector(v []float32) any {
	if v == nil {
		return nil
	}
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
