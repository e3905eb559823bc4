package health

import "context"

// DBPinger checks storage connectivity.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks an upstream model provider.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// ModelProvider is a ProviderChecker that knows which model it serves.
type ModelProvider interface {
	ProviderChecker
	Model() string
}

// IndexInspector reports on the venue index.
type IndexInspector interface {
	IndexName() string
	Exists(ctx context.Context) (bool, error)
	Count(ctx context.Context) (int64, error)
}
