package usecases

import (
	"context"
	"fmt"

	"instatistics/internal/adapters/cache"
	"instatistics/internal/domain"
	"instatistics/pkg/log"

	"golang.org/x/sync/singleflight"
)

// GetProfileDatasetUseCase handles retrieving profile datasets with cache-first strategy.
type GetProfileDatasetUseCase struct {
	store   DatasetStore
	fetch   *FetchProfileUseCase
	metrics Metrics
	group   singleflight.Group
}

// NewGetProfileDatasetUseCase creates a new GetProfileDatasetUseCase.
func NewGetProfileDatasetUseCase(store DatasetStore, fetch *FetchProfileUseCase, metrics Metrics) *GetProfileDatasetUseCase {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &GetProfileDatasetUseCase{
		store:   store,
		fetch:   fetch,
		metrics: metrics,
	}
}

// Execute retrieves a dataset, checking the store first before fetching.
// Concurrent misses for the same key share one fetch.
func (uc *GetProfileDatasetUseCase) Execute(ctx context.Context, username string, limit int) (*domain.Dataset, error) {
	key := cache.ProfileKey(username, limit)

	if ds, found := uc.store.Get(ctx, key); found {
		log.GlobalDebugCtx(ctx, "cache hit", "key", key)
		uc.metrics.CacheLookup(domain.SourceProfile, true)
		return ds, nil
	}

	log.GlobalDebugCtx(ctx, "cache miss, fetching", "key", key)
	uc.metrics.CacheLookup(domain.SourceProfile, false)

	// The shared fetch outlives any single caller; the fetch timeout still applies.
	fetchCtx := context.WithoutCancel(ctx)
	results := uc.group.DoChan(key, func() (any, error) {
		ds, err := uc.fetch.Execute(fetchCtx, username, limit)
		if err != nil {
			uc.metrics.SourceFailed(domain.SourceProfile)
			return nil, err
		}

		uc.store.Set(fetchCtx, key, ds)
		uc.metrics.DatasetLoaded(domain.SourceProfile, ds.Len())
		return ds, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, ctx.Err())
	case res = <-results:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		log.GlobalDebugCtx(ctx, "fetch shared with concurrent request", "key", key)
	}

	return res.Val.(*domain.Dataset), nil
}

// Refresh drops the cached dataset and fetches it again.
func (uc *GetProfileDatasetUseCase) Refresh(ctx context.Context, username string, limit int) (*domain.Dataset, error) {
	key := cache.ProfileKey(username, limit)
	uc.store.Invalidate(ctx, key)
	log.GlobalInfoCtx(ctx, "dataset invalidated", "key", key)

	return uc.Execute(ctx, username, limit)
}
