// Package usecases wires the post sources, the dataset store and the analytics.
package usecases

import (
	"context"

	"instatistics/internal/domain"
)

// ProfileFetcher defines the interface for reading a profile feed.
type ProfileFetcher interface {
	Fetch(ctx context.Context, username string, limit int) ([]domain.Post, error)
}

// DatasetStore defines the interface for caching datasets by canonical key.
type DatasetStore interface {
	Get(ctx context.Context, key string) (*domain.Dataset, bool)
	Set(ctx context.Context, key string, ds *domain.Dataset)
	Invalidate(ctx context.Context, key string)
}

// Metrics receives pipeline events.
type Metrics interface {
	CacheLookup(source domain.SourceKind, hit bool)
	DatasetLoaded(source domain.SourceKind, posts int)
	SourceFailed(source domain.SourceKind)
}

// NoopMetrics discards all events.
type NoopMetrics struct{}

func (NoopMetrics) CacheLookup(domain.SourceKind, bool)  {}
func (NoopMetrics) DatasetLoaded(domain.SourceKind, int) {}
func (NoopMetrics) SourceFailed(domain.SourceKind)       {}
