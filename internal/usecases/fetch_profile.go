package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"instatistics/internal/adapters/cache"
	"instatistics/internal/domain"
	"instatistics/pkg/log"
)

// DefaultFetchTimeout bounds a live profile fetch.
const DefaultFetchTimeout = 60 * time.Second

// FetchProfileUseCase reads a profile feed into a dataset.
type FetchProfileUseCase struct {
	fetcher ProfileFetcher
	timeout time.Duration
	now     func() time.Time
}

// NewFetchProfileUseCase creates a new FetchProfileUseCase.
// A non-positive timeout uses DefaultFetchTimeout.
func NewFetchProfileUseCase(fetcher ProfileFetcher, timeout time.Duration) *FetchProfileUseCase {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &FetchProfileUseCase{
		fetcher: fetcher,
		timeout: timeout,
		now:     time.Now,
	}
}

// Execute fetches at most limit posts of the profile within the fetch timeout.
// An expired deadline is reported as domain.ErrSourceUnavailable.
func (uc *FetchProfileUseCase) Execute(ctx context.Context, username string, limit int) (*domain.Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	start := uc.now()
	posts, err := uc.fetcher.Fetch(ctx, username, limit)
	if err != nil {
		if !errors.Is(err, domain.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
		}
		return nil, err
	}

	// A fetcher may return partial data after the deadline passed.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, ctxErr)
	}

	if len(posts) > limit {
		posts = posts[:limit]
	}

	log.GlobalInfoCtx(ctx, "profile fetched",
		"username", username,
		"limit", limit,
		"posts", len(posts),
		"duration_ms", uc.now().Sub(start).Milliseconds(),
	)

	return &domain.Dataset{
		Key:       cache.ProfileKey(username, limit),
		Source:    domain.SourceProfile,
		Label:     username,
		Limit:     limit,
		FetchedAt: uc.now(),
		Posts:     posts,
	}, nil
}
