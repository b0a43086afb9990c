package contextutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(io.Discard, nil))

	if got := LoggerFromContext(context.Background()); got != slog.Default() {
		t.Errorf("LoggerFromContext() without logger = %p, want default", got)
	}

	ctx := WithLogger(context.Background(), custom)
	if got := LoggerFromContext(ctx); got != custom {
		t.Errorf("LoggerFromContext() = %p, want %p", got, custom)
	}
}
