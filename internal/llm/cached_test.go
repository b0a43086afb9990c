package llm

import (
	"context"
	"errors"
	"testing"
)

type countingEmbedder struct {
	calls int
	err   error
}

func (c *countingEmbedder) EmbedText(_ context.Context, text, model string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text)), float32(len(model))}, nil
}

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCachedEmbedder(inner, 2)
	ctx := context.Background()

	if _, err := cached.EmbedText(ctx, "golang", "m1"); err != nil {
		t.Fatalf("EmbedText() error = %v", err)
	}
	if _, err := cached.EmbedText(ctx, "golang", "m1"); err != nil {
		t.Fatalf("EmbedText() error = %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}

	// Same text under another model is a different entry.
	if _, err := cached.EmbedText(ctx, "golang", "m2"); err != nil {
		t.Fatalf("EmbedText() error = %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}

	if _, err := cached.EmbedText(ctx, "rust", "m1"); err != nil {
		t.Fatalf("EmbedText() error = %v", err)
	}
	if cached.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cached.Len())
	}
}

func TestCachedEmbedder_ErrorsAreNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("down")}
	cached := NewCachedEmbedder(inner, 0)

	for i := 0; i < 2; i++ {
		if _, err := cached.EmbedText(context.Background(), "q", "m"); err == nil {
			t.Fatal("EmbedText() expected error, got nil")
		}
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
	if cached.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cached.Len())
	}
}
