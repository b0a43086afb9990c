package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

const (
	metaEmbeddingModel = "embedding_model"
	metaDimension      = "dimension"
)

// MetaRepo reads and writes corpus-level metadata.
type MetaRepo struct {
	db *sql.DB
}

// NewMetaRepo creates a new MetaRepo.
func NewMetaRepo(db *sql.DB) *MetaRepo {
	return &MetaRepo{db: db}
}

// Get returns the corpus metadata. Returns ErrNotFound before the first ingest.
func (r *MetaRepo) Get(ctx context.Context) (*CorpusMeta, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM corpus_meta")
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus meta: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan corpus meta: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	model, ok := values[metaEmbeddingModel]
	if !ok {
		return nil, ErrNotFound
	}
	meta := &CorpusMeta{EmbeddingModel: model}
	if dim, ok := values[metaDimension]; ok {
		if meta.Dimension, err = strconv.Atoi(dim); err != nil {
			return nil, fmt.Errorf("invalid stored dimension %q: %w", dim, err)
		}
	}
	return meta, nil
}

// Set stores the corpus metadata, replacing earlier values.
func (r *MetaRepo) Set(ctx context.Context, meta CorpusMeta) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	pairs := [][2]string{
		{metaEmbeddingModel, meta.EmbeddingModel},
		{metaDimension, strconv.Itoa(meta.Dimension)},
	}
	for _, p := range pairs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO corpus_meta (key, value) VALUES (?, ?)
			 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
			p[0], p[1],
		); err != nil {
			return fmt.Errorf("failed to set corpus meta %s: %w", p[0], err)
		}
	}

	return tx.Commit()
}
