package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SourceFile is one markdown resume found on disk.
type SourceFile struct {
	ResumeID string // file name without extension
	Path     string
}

// Scan lists the markdown files directly inside dir, sorted by name.
// Subdirectories are not descended into.
func Scan(ctx context.Context, dir string) ([]SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown dir %s: %w", dir, err)
	}

	var files []SourceFile
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		name := entry.Name()
		files = append(files, SourceFile{
			ResumeID: strings.TrimSuffix(name, filepath.Ext(name)),
			Path:     filepath.Join(dir, name),
		})
	}
	return files, nil
}
