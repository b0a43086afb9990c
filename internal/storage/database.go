package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	// Foreign keys are per connection in SQLite, so they go in the DSN.
	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS resumes (
			id TEXT PRIMARY KEY,
			source_path TEXT NOT NULL,
			hash TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS fragments (
			resume_id TEXT NOT NULL,
			chunk_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			text TEXT NOT NULL,
			embedding BLOB,
			PRIMARY KEY (resume_id, chunk_id),
			FOREIGN KEY (resume_id) REFERENCES resumes(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fragments_seq ON fragments(seq);`,
		`CREATE TABLE IF NOT EXISTS corpus_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
