package health

import (
	"context"

	"github.com/gate-platform/rawi/internal/domain"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingStateReporter exposes the embedding provider state captured at
// startup.
type EmbeddingStateReporter interface {
	State() domain.ProviderState
}
