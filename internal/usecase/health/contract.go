package health

import "context"

// VectorPinger checks vector store availability.
type VectorPinger interface {
	Ping(ctx context.Context) error
}

// RegistryPinger checks document registry availability.
type RegistryPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
