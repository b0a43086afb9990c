package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_resume_store.go -package=mocks resume-rag/internal/storage ResumeStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ResumeStore defines the interface for resume storage operations.
type ResumeStore interface {
	// Get gets a resume by id. Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, id string) (*ResumeRecord, error)
	// Upsert inserts a new resume or updates the path and hash of an existing one.
	Upsert(ctx context.Context, resume *ResumeRecord) error
	// List returns all resumes ordered by id.
	List(ctx context.Context) ([]ResumeRecord, error)
}

// ResumeRepo provides methods for resume operations.
// It implements the ResumeStore interface.
type ResumeRepo struct {
	db *sql.DB
}

// NewResumeRepo creates a new ResumeRepo.
func NewResumeRepo(db *sql.DB) *ResumeRepo {
	return &ResumeRepo{db: db}
}

// Get gets a resume by id. Returns nil and ErrNotFound if not found.
func (r *ResumeRepo) Get(ctx context.Context, id string) (*ResumeRecord, error) {
	var resume ResumeRecord
	var updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, source_path, hash, updated_at FROM resumes WHERE id = ?",
		id,
	).Scan(&resume.ID, &resume.SourcePath, &resume.Hash, &updatedAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query resume: %w", err)
	}

	resume.UpdatedAt, err = parseTimestamp(updatedAtStr)
	if err != nil {
		return nil, err
	}

	return &resume, nil
}

// Upsert inserts a new resume or updates an existing one.
func (r *ResumeRepo) Upsert(ctx context.Context, resume *ResumeRecord) error {
	if resume.ID == "" {
		return fmt.Errorf("resume id is required")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO resumes (id, source_path, hash, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE SET
		 source_path = excluded.source_path, hash = excluded.hash, updated_at = CURRENT_TIMESTAMP`,
		resume.ID, resume.SourcePath, resume.Hash,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert resume: %w", err)
	}

	return nil
}

// List returns all resumes ordered by id.
func (r *ResumeRepo) List(ctx context.Context) ([]ResumeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, source_path, hash, updated_at FROM resumes ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query resumes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var resumes []ResumeRecord
	for rows.Next() {
		var resume ResumeRecord
		var updatedAtStr string
		if err := rows.Scan(&resume.ID, &resume.SourcePath, &resume.Hash, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		if resume.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
			return nil, err
		}
		resumes = append(resumes, resume)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return resumes, nil
}

// parseTimestamp parses a DATETIME column. go-sqlite3 may return either form.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}
	return t, nil
}
