package domain

import "errors"

var (
	// ErrInvalidRequest signals a malformed search request (bad size or mode).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrModelUnavailable signals that the embedding model never loaded.
	ErrModelUnavailable = errors.New("embedding model unavailable")
	// ErrModeUnavailable signals a semantic request that cannot be served and
	// must not be downgraded.
	ErrModeUnavailable = errors.New("search mode unavailable")
	// ErrBackendUnavailable signals that the backing store stayed unreachable
	// after the retry.
	ErrBackendUnavailable = errors.New("search backend unavailable")
	// ErrEmbeddingProviderError signals a transient embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrIndexNotFound signals a missing source or target index.
	ErrIndexNotFound = errors.New("index not found")
)
