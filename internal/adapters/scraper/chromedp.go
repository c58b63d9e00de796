package scraper

import (
	"context"
	"sync"

	"instatistics/pkg/log"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// BrowserPool manages a single Chrome process and enforces
// serialized tab usage (1 tab at a time).
type BrowserPool struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   []chromedp.ExecAllocatorOption

	mu     sync.Mutex
	tabSem chan struct{}
}

// NewBrowserPool creates a browser pool with exactly one Chrome instance
// and one tab allowed at a time. An empty chromePath uses the default
// lookup of chromedp.
func NewBrowserPool(chromePath string, options ...chromedp.ExecAllocatorOption) (*BrowserPool, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),

		// Memory / CPU reduction
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)

	opts = append(opts, options...)

	if chromePath != "" {
		log.GlobalInfo("browser pool using custom chrome path", "path", chromePath)
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	bp := &BrowserPool{
		opts:   opts,
		tabSem: make(chan struct{}, 1), // HARD LIMIT: 1 tab
	}

	if err := bp.start(); err != nil {
		return nil, err
	}

	return bp, nil
}

// start initializes or restarts the Chrome process.
func (bp *BrowserPool) start() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.cancel != nil {
		bp.cancel()
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), bp.opts...)
	ctx, _ := chromedp.NewContext(allocCtx)

	// Force Chrome startup
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return err
	}

	bp.ctx = ctx
	bp.cancel = cancel

	log.GlobalInfo("browser pool chrome started")
	return nil
}

// WithTab executes fn with exclusive access to a browser tab.
// Waiting for the tab and the tab itself are bound to ctx.
func (bp *BrowserPool) WithTab(ctx context.Context, fn func(tabCtx context.Context) error) error {
	select {
	case bp.tabSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-bp.tabSem }()

	tabCtx, tabCancel, err := bp.acquireTab()
	if err != nil {
		return err
	}
	defer tabCancel()

	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	return fn(tabCtx)
}

// acquireTab creates a new browser tab and performs a health check.
// If the browser is unhealthy, it restarts Chrome and creates a new tab.
func (bp *BrowserPool) acquireTab() (context.Context, context.CancelFunc, error) {
	bp.mu.Lock()
	tabCtx, tabCancel := chromedp.NewContext(bp.ctx)
	bp.mu.Unlock()

	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()

		log.GlobalWarn("browser pool tab failed, restarting chrome", "error", err)

		if restartErr := bp.start(); restartErr != nil {
			return nil, nil, restartErr
		}

		bp.mu.Lock()
		tabCtx, tabCancel = chromedp.NewContext(bp.ctx)
		bp.mu.Unlock()
	}

	return tabCtx, tabCancel, nil
}

// Close shuts down the browser completely.
func (bp *BrowserPool) Close() {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.cancel != nil {
		bp.cancel()
		log.GlobalInfo("browser pool chrome stopped")
	}
}

// tabRunner is satisfied by BrowserPool and by test pools.
type tabRunner interface {
	WithTab(ctx context.Context, fn func(tabCtx context.Context) error) error
}

// ChromePageLoader loads pages through a browser tab.
type ChromePageLoader struct {
	pool tabRunner
}

// NewChromePageLoader creates a page loader backed by the browser pool.
func NewChromePageLoader(pool *BrowserPool) *ChromePageLoader {
	return &ChromePageLoader{pool: pool}
}

// Load navigates to url with the extra headers and returns the document HTML.
func (l *ChromePageLoader) Load(ctx context.Context, url string, headers map[string]string) (string, error) {
	extra := make(network.Headers, len(headers))
	for k, v := range headers {
		extra[k] = v
	}

	var html string
	err := l.pool.WithTab(ctx, func(tabCtx context.Context) error {
		return chromedp.Run(tabCtx,
			network.Enable(),
			network.SetExtraHTTPHeaders(extra),
			chromedp.Navigate(url),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.OuterHTML("html", &html),
		)
	})
	if err != nil {
		return "", err
	}

	return html, nil
}
