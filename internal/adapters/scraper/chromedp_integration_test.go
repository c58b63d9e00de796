//go:build integration

package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"instatistics/test/fixtures"

	"github.com/chromedp/chromedp"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// ChromeContainer wraps a testcontainers Chrome instance
type ChromeContainer struct {
	testcontainers.Container
	wsURL string
}

// setupChromeContainer starts a Chrome container with CDP exposed
func setupChromeContainer(ctx context.Context) (*ChromeContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "chromedp/headless-shell:latest",
		ExposedPorts: []string{"9222/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("DevTools listening").WithStartupTimeout(60*time.Second),
			wait.ForHTTP("/json/version").WithPort("9222/tcp").WithStartupTimeout(60*time.Second),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	port, err := container.MappedPort(ctx, "9222")
	if err != nil {
		return nil, fmt.Errorf("failed to get port: %w", err)
	}

	// Get the actual WebSocket URL from Chrome's /json/version endpoint
	versionURL := fmt.Sprintf("http://%s:%s/json/version", host, port.Port())
	wsURL, err := getWebSocketURL(versionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get WebSocket URL: %w", err)
	}

	// Replace internal container hostname with actual host
	wsURL = replaceHost(wsURL, host, port.Port())

	return &ChromeContainer{
		Container: container,
		wsURL:     wsURL,
	}, nil
}

// getWebSocketURL fetches the DevTools WebSocket URL from Chrome
func getWebSocketURL(versionURL string) (string, error) {
	resp, err := http.Get(versionURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.WebSocketDebuggerURL, nil
}

// replaceHost replaces the container internal host with the external mapped host
func replaceHost(wsURL, host, port string) string {
	// The Chrome returns ws://127.0.0.1:9222/devtools/browser/<uuid>
	// We need to replace the host:port with the mapped external ones
	// Find the path part starting from /devtools
	idx := 0
	for i := len("ws://"); i < len(wsURL); i++ {
		if wsURL[i] == '/' {
			idx = i
			break
		}
	}
	if idx > 0 {
		return fmt.Sprintf("ws://%s:%s%s", host, port, wsURL[idx:])
	}
	return wsURL
}

// remoteBrowserPool connects to a remote Chrome and hands out one tab at a time.
type remoteBrowserPool struct {
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	tabSem chan struct{}
}

// newRemoteBrowserPool creates a browser pool connected to remote Chrome
func newRemoteBrowserPool(wsURL string) (*remoteBrowserPool, error) {
	allocCtx, cancel := chromedp.NewRemoteAllocator(context.Background(), wsURL)
	ctx, _ := chromedp.NewContext(allocCtx)

	// Verify connection
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}

	return &remoteBrowserPool{
		ctx:    ctx,
		cancel: cancel,
		tabSem: make(chan struct{}, 1),
	}, nil
}

// WithTab executes with exclusive tab access (same contract as BrowserPool)
func (bp *remoteBrowserPool) WithTab(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case bp.tabSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-bp.tabSem }()

	bp.mu.Lock()
	tabCtx, tabCancel := chromedp.NewContext(bp.ctx)
	bp.mu.Unlock()
	defer tabCancel()

	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	return fn(tabCtx)
}

// Close shuts down the browser pool
func (bp *remoteBrowserPool) Close() {
	if bp.cancel != nil {
		bp.cancel()
	}
}

// --- Integration Tests ---

func setupRemotePool(t *testing.T) *remoteBrowserPool {
	t.Helper()
	ctx := context.Background()

	chrome, err := setupChromeContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to setup Chrome container: %v", err)
	}
	t.Cleanup(func() { _ = chrome.Terminate(ctx) })

	pool, err := newRemoteBrowserPool(chrome.wsURL)
	if err != nil {
		t.Fatalf("Failed to create browser pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

func TestIntegration_ChromePageLoader_RendersJSONDocument(t *testing.T) {
	pool := setupRemotePool(t)
	loader := &ChromePageLoader{pool: pool}

	body := fixtures.GenerateProfileJSON("7", "rendered", fixtures.GenerateNodes(3, time.Now(), time.Hour), 3, false, "")
	dataURL := "data:application/json," + url.PathEscape(body)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page, err := loader.Load(ctx, dataURL, map[string]string{"accept": "application/json"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	user, err := parseProfilePage(page)
	if err != nil {
		t.Fatalf("parseProfilePage() error = %v", err)
	}
	if user.ID != "7" || len(user.Media.Edges) != 3 {
		t.Errorf("unexpected profile: id=%s edges=%d", user.ID, len(user.Media.Edges))
	}
}

func TestIntegration_BrowserPool_Backpressure_OnlyOneTabAtATime(t *testing.T) {
	pool := setupRemotePool(t)

	var concurrentCount int32
	var maxConcurrent int32
	var wg sync.WaitGroup

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_ = pool.WithTab(context.Background(), func(tabCtx context.Context) error {
				current := atomic.AddInt32(&concurrentCount, 1)

				for {
					max := atomic.LoadInt32(&maxConcurrent)
					if current <= max || atomic.CompareAndSwapInt32(&maxConcurrent, max, current) {
						break
					}
				}

				var html string
				err := chromedp.Run(tabCtx,
					chromedp.Navigate("data:text/html,<p>tab</p>"),
					chromedp.OuterHTML("html", &html),
				)

				t.Logf("Tab %d: concurrent=%d", idx, current)

				atomic.AddInt32(&concurrentCount, -1)
				return err
			})
		}(i)
	}

	wg.Wait()

	if maxConcurrent != 1 {
		t.Errorf("maxConcurrent: got %d, want 1 (backpressure violated!)", maxConcurrent)
	}
}

func TestIntegration_ChromePageLoader_CanceledContext(t *testing.T) {
	pool := setupRemotePool(t)
	loader := &ChromePageLoader{pool: pool}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := loader.Load(ctx, "data:text/html,<p>late</p>", nil); err == nil {
		t.Error("expected error for canceled context")
	}
}
