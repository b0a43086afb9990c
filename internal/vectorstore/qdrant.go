package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"resume-rag/internal/contextutil"
	"resume-rag/internal/retrieval"
)

const (
	scrollPageSize = 256
	upsertPageSize = 256
)

// QdrantStore implements VectorStore using Qdrant.
type QdrantStore struct {
	client *qdrant.Client
}

// parseAddress derives the gRPC host and port from a Qdrant HTTP URL.
// The gRPC port is the HTTP port + 1, 6334 when no port is given.
func parseAddress(urlStr string) (string, int, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			port = httpPort + 1
		}
	}
	return host, port, nil
}

// NewQdrantStore creates a new Qdrant vector store client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
func NewQdrantStore(urlStr string) (*QdrantStore, error) {
	host, port, err := parseAddress(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client: client,
	}, nil
}

// Close releases the gRPC connection.
func (s *QdrantStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Health checks that the Qdrant server answers.
func (s *QdrantStore) Health(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	return nil
}

// Upsert writes points in pages of upsertPageSize and waits for each page to
// be applied, so a following scroll sees them.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	for start := 0; start < len(points); start += upsertPageSize {
		page := points[start:min(start+upsertPageSize, len(points))]

		structs := make([]*qdrant.PointStruct, len(page))
		for i, p := range page {
			structs[i] = &qdrant.PointStruct{
				Id:      qdrant.NewID(p.ID),
				Vectors: qdrant.NewVectors(p.Vec...),
				Payload: qdrant.NewValueMap(p.Meta),
			}
		}

		if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Wait:           qdrant.PtrOf(true),
			Points:         structs,
		}); err != nil {
			logger.ErrorContext(ctx, "qdrant upsert failed", "collection", collection, "offset", start, "error", err)
			return fmt.Errorf("failed to upsert points into %s: %w", collection, err)
		}
	}

	if len(points) > 0 {
		logger.DebugContext(ctx, "upserted points", "collection", collection, "count", len(points))
	}
	return nil
}

// Delete removes points by id. Unknown ids are ignored by Qdrant.
func (s *QdrantStore) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewID(id)
	}

	if _, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(pointIDs...),
	}); err != nil {
		return fmt.Errorf("failed to delete points from %s: %w", collection, err)
	}

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "deleted points", "collection", collection, "count", len(ids))
	return nil
}

// ScrollAll pages through the whole collection. Scroll offsets are inclusive,
// so every page after the first starts with the previous page's last point.
func (s *QdrantStore) ScrollAll(ctx context.Context, collection string) ([]Point, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var (
		points []Point
		offset *qdrant.PointId
	)
	for {
		limit := uint32(scrollPageSize)
		page, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: collection,
			Offset:         offset,
			Limit:          &limit,
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scroll points: %w", err)
		}

		start := 0
		if offset != nil && len(page) > 0 {
			start = 1
		}
		for _, p := range page[start:] {
			points = append(points, Point{
				ID:   p.GetId().GetUuid(),
				Vec:  denseVector(p),
				Meta: payloadMap(p.GetPayload()),
			})
		}

		if len(page) < scrollPageSize {
			break
		}
		offset = page[len(page)-1].GetId()
	}

	logger.InfoContext(ctx, "scrolled collection", "collection", collection, "points", len(points))
	return points, nil
}

func denseVector(p *qdrant.RetrievedPoint) []float32 {
	v := p.GetVectors().GetVector()
	if d := v.GetDense(); d != nil {
		return d.GetData()
	}
	return v.GetData()
}

// EnsureCollection creates the collection with cosine distance when it is
// missing, and otherwise checks that its vector size is vectorSize.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", collection, err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", collection, "vector_size", vectorSize)
		if err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		}); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", collection, err)
		}
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to get collection %s: %w", collection, err)
	}
	got := int(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize())
	if got != vectorSize {
		return fmt.Errorf("%w: collection %s has vector size %d, want %d", retrieval.ErrDimensionMismatch, collection, got, vectorSize)
	}
	return nil
}

// payloadMap converts the scalar payload values written by FragmentPoint.
// Nested values are skipped.
func payloadMap(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		switch kind := v.GetKind().(type) {
		case *qdrant.Value_StringValue:
			out[k] = kind.StringValue
		case *qdrant.Value_IntegerValue:
			out[k] = kind.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[k] = kind.DoubleValue
		case *qdrant.Value_BoolValue:
			out[k] = kind.BoolValue
		}
	}
	return out
}
