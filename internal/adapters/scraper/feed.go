package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"instatistics/internal/domain"
	"instatistics/pkg/log"

	"golang.org/x/time/rate"
)

// PageLoader loads a URL and returns the rendered document.
type PageLoader interface {
	Load(ctx context.Context, url string, headers map[string]string) (string, error)
}

// ProfileFeed reads the public posts of a profile, most recent first.
type ProfileFeed struct {
	loader  PageLoader
	config  *FeedConfig
	limiter *rate.Limiter
	loc     *time.Location
}

// NewProfileFeed creates a feed reader.
// Post timestamps are converted to loc.
func NewProfileFeed(loader PageLoader, config *FeedConfig, loc *time.Location) *ProfileFeed {
	if loc == nil {
		loc = time.UTC
	}

	limit, burst := pacing(config)
	return &ProfileFeed{
		loader:  loader,
		config:  config,
		limiter: rate.NewLimiter(limit, burst),
		loc:     loc,
	}
}

// Fetch returns at most limit posts of the profile in feed order.
// It stops early when the feed is exhausted. Any failure to resolve the
// profile or read a page is wrapped in domain.ErrSourceUnavailable.
func (f *ProfileFeed) Fetch(ctx context.Context, username string, limit int) ([]domain.Post, error) {
	if limit <= 0 {
		return nil, nil
	}

	page, err := f.load(ctx, f.config.ProfileEndpoint(username))
	if err != nil {
		return nil, err
	}

	user, err := parseProfilePage(page)
	if err != nil {
		return nil, err
	}

	posts := make([]domain.Post, 0, min(limit, max(user.Media.Count, 0)))
	media := &user.Media
	pages := 1

	for {
		for _, edge := range media.Edges {
			if len(posts) == limit {
				break
			}
			posts = append(posts, edge.Node.toPost(f.loc))
		}

		if len(posts) >= limit || !media.PageInfo.HasNextPage || media.PageInfo.EndCursor == "" {
			break
		}

		page, err = f.load(ctx, f.config.TimelineEndpoint(user.ID, media.PageInfo.EndCursor))
		if err != nil {
			return nil, err
		}
		if media, err = parseTimelinePage(page); err != nil {
			return nil, err
		}
		pages++

		if len(media.Edges) == 0 {
			break
		}
	}

	log.GlobalDebugCtx(ctx, "profile feed read", "username", username, "posts", len(posts), "pages", pages)
	return posts, nil
}

// pacing returns the limiter settings of the current configuration.
// A non-positive rate disables pacing.
func pacing(config *FeedConfig) (rate.Limit, int) {
	rps, burst := config.Pacing()
	if rps <= 0 {
		return rate.Inf, 1
	}
	return rate.Limit(rps), max(burst, 1)
}

// load waits for the pacing limiter and loads one page.
// Pacing changes from a reloaded configuration apply to the next page.
func (f *ProfileFeed) load(ctx context.Context, url string) (string, error) {
	if limit, burst := pacing(f.config); limit != f.limiter.Limit() || burst != f.limiter.Burst() {
		f.limiter.SetLimit(limit)
		f.limiter.SetBurst(burst)
		log.GlobalDebugCtx(ctx, "feed pacing updated", "rate", float64(limit), "burst", burst)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	page, err := f.loader.Load(ctx, url, f.config.RequestHeaders())
	if err != nil {
		if errors.Is(err, domain.ErrSourceUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	return page, nil
}
