package retrieval

import "errors"

var (
	// ErrNotReady is returned when a retriever is searched before Fit.
	ErrNotReady = errors.New("retriever not ready")
	// ErrDimensionMismatch is returned when vectors do not line up with fragments
	// or a query vector has the wrong length.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
