package request

import (
	"fmt"

	"github.com/gate-platform/rawi/internal/domain"
	"github.com/gate-platform/rawi/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultSize    = 50
	MaxSize        = 1000
)

// Request is a validated search query.
type Request struct {
	query      string
	searchMode mode.Mode
	size       int
}

// New validates and normalizes search parameters.
// Defaults: mode=enhanced, size=50. Size is clamped to MaxSize. An unknown
// mode is a client error, never a silent fallback to another mode.
func New(query string, m mode.Mode, size int) (Request, error) {
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if m == "" {
		m = mode.Enhanced
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: unknown search mode %q", domain.ErrInvalidRequest, m)
	}
	if size == 0 {
		size = DefaultSize
	}
	if size < 0 {
		return Request{}, fmt.Errorf("%w: size must be positive", domain.ErrInvalidRequest)
	}
	if size > MaxSize {
		size = MaxSize
	}

	return Request{query: query, searchMode: m, size: size}, nil
}

// Query returns the raw search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the requested retrieval strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Size returns the maximum number of results to return.
func (r *Request) Size() int { return r.size }
