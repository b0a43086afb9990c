package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks resume-rag/internal/vectorstore VectorStore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Payload keys written for every fragment point.
const (
	PayloadResumeID       = "resume_id"
	PayloadChunkID        = "chunk_id"
	PayloadSeq            = "seq"
	PayloadText           = "text"
	PayloadEmbeddingModel = "embedding_model"
)

// pointNamespace scopes the deterministic fragment point ids.
var pointNamespace = uuid.MustParse("6f1c9a52-3f0e-4a8e-9d2b-5c7e2b1a0d44")

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// ScrollAll returns every point in the collection with vectors and payload.
	ScrollAll(ctx context.Context, collection string) ([]Point, error)
}

// PointID returns the stable point id of a fragment, so re-ingesting a
// resume overwrites its points instead of duplicating them.
func PointID(resumeID string, chunkID int) string {
	return uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("%s::%d", resumeID, chunkID))).String()
}
