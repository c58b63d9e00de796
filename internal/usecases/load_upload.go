package usecases

import (
	"bytes"
	"context"
	"time"

	"instatistics/internal/adapters/cache"
	"instatistics/internal/adapters/csvio"
	"instatistics/internal/domain"
	"instatistics/pkg/log"

	"golang.org/x/sync/singleflight"
)

// LoadUploadUseCase parses uploaded post tables, keyed by content digest.
type LoadUploadUseCase struct {
	store   DatasetStore
	loc     *time.Location
	metrics Metrics
	group   singleflight.Group
	now     func() time.Time
}

// NewLoadUploadUseCase creates a new LoadUploadUseCase.
// Dates without a zone are interpreted in loc.
func NewLoadUploadUseCase(store DatasetStore, loc *time.Location, metrics Metrics) *LoadUploadUseCase {
	if loc == nil {
		loc = time.UTC
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &LoadUploadUseCase{
		store:   store,
		loc:     loc,
		metrics: metrics,
		now:     time.Now,
	}
}

// Execute returns the dataset of an uploaded file. Identical content is
// parsed once; later uploads are served from the store.
func (uc *LoadUploadUseCase) Execute(ctx context.Context, filename string, content []byte) (*domain.Dataset, error) {
	digest := cache.UploadDigest(content)
	key := cache.UploadKey(digest)

	if ds, found := uc.store.Get(ctx, key); found {
		log.GlobalDebugCtx(ctx, "cache hit", "key", key)
		uc.metrics.CacheLookup(domain.SourceUpload, true)
		return ds, nil
	}
	uc.metrics.CacheLookup(domain.SourceUpload, false)

	storeCtx := context.WithoutCancel(ctx)
	v, err, _ := uc.group.Do(key, func() (any, error) {
		posts, err := csvio.Parse(bytes.NewReader(content), uc.loc)
		if err != nil {
			uc.metrics.SourceFailed(domain.SourceUpload)
			return nil, err
		}

		ds := &domain.Dataset{
			Key:       key,
			Source:    domain.SourceUpload,
			Label:     filename,
			FetchedAt: uc.now(),
			Posts:     posts,
		}
		uc.store.Set(storeCtx, key, ds)
		uc.metrics.DatasetLoaded(domain.SourceUpload, ds.Len())

		log.GlobalInfoCtx(ctx, "upload parsed", "file", filename, "digest", digest, "posts", len(posts))
		return ds, nil
	})
	if err != nil {
		log.GlobalWarnCtx(ctx, "upload rejected", "file", filename, "error", err)
		return nil, err
	}

	return v.(*domain.Dataset), nil
}

// Lookup returns a previously uploaded dataset by digest.
// Returns domain.ErrDatasetExpired when it is no longer stored.
func (uc *LoadUploadUseCase) Lookup(ctx context.Context, digest string) (*domain.Dataset, error) {
	ds, found := uc.store.Get(ctx, cache.UploadKey(digest))
	if !found {
		return nil, domain.ErrDatasetExpired
	}
	return ds, nil
}
