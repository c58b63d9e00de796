package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"instatistics/internal/domain"
	"instatistics/test/fixtures"
)

const testFeedYAML = `
profile:
  url: "https://feed.test/profile?username={username}"
timeline:
  url: "https://feed.test/timeline?query_hash={query_hash}&variables={variables}"
  query_hash: "abc123"
  page_size: 50
headers:
  x-test: "1"
`

// fakeFeed serves a profile with a fixed list of posts.
// The profile document holds the first 12 posts, timeline pages hold 50.
type fakeFeed struct {
	nodes   []fixtures.Node
	wrap    bool
	calls   []string
	headers map[string]string
	failAt  int // Fail the n-th call (1-based), 0 disables
}

func (f *fakeFeed) Load(ctx context.Context, rawURL string, headers map[string]string) (string, error) {
	f.calls = append(f.calls, rawURL)
	f.headers = headers
	if f.failAt == len(f.calls) {
		return "", errors.New("connection reset")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	var body string
	switch u.Path {
	case "/profile":
		end := min(12, len(f.nodes))
		body = fixtures.GenerateProfileJSON("42", u.Query().Get("username"), f.nodes[:end], len(f.nodes), end < len(f.nodes), cursor(end))
	case "/timeline":
		var vars struct {
			ID    string `json:"id"`
			First int    `json:"first"`
			After string `json:"after"`
		}
		if err := json.Unmarshal([]byte(u.Query().Get("variables")), &vars); err != nil {
			return "", err
		}
		start, _ := strconv.Atoi(strings.TrimPrefix(vars.After, "c"))
		end := min(start+vars.First, len(f.nodes))
		body = fixtures.GenerateTimelineJSON(f.nodes[start:end], len(f.nodes), end < len(f.nodes), cursor(end))
	default:
		return "", errors.New("unexpected path " + u.Path)
	}

	if f.wrap {
		return fixtures.WrapInBrowserDocument(body), nil
	}
	return body, nil
}

func cursor(i int) string {
	return "c" + strconv.Itoa(i)
}

func newTestFeed(t *testing.T, loader PageLoader) *ProfileFeed {
	t.Helper()
	config, err := ParseFeedConfig([]byte(testFeedYAML))
	if err != nil {
		t.Fatalf("ParseFeedConfig() error = %v", err)
	}
	return NewProfileFeed(loader, config, time.UTC)
}

func TestProfileFeed_Fetch_StopsAtLimit(t *testing.T) {
	// Arrange
	newest := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	loader := &fakeFeed{nodes: fixtures.GenerateNodes(200, newest, 9*time.Hour)}
	feed := newTestFeed(t, loader)

	// Act
	posts, err := feed.Fetch(context.Background(), "natgeo", 50)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 50 {
		t.Fatalf("posts: got %d, want 50", len(posts))
	}
	for i, p := range posts {
		if p.Shortcode != loader.nodes[i].Shortcode {
			t.Fatalf("post %d: got %s, want %s", i, p.Shortcode, loader.nodes[i].Shortcode)
		}
		if i > 0 && p.Timestamp.After(posts[i-1].Timestamp) {
			t.Fatalf("post %d is newer than post %d", i, i-1)
		}
	}
	if len(loader.calls) != 2 {
		t.Errorf("page loads: got %d, want 2", len(loader.calls))
	}
}

func TestProfileFeed_Fetch_ExhaustedFeedReturnsAll(t *testing.T) {
	// Arrange
	loader := &fakeFeed{nodes: fixtures.GenerateNodes(70, time.Now(), time.Hour), wrap: true}
	feed := newTestFeed(t, loader)

	// Act
	posts, err := feed.Fetch(context.Background(), "small", 1000)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 70 {
		t.Errorf("posts: got %d, want 70", len(posts))
	}
	if len(loader.calls) != 3 {
		t.Errorf("page loads: got %d, want 3", len(loader.calls))
	}
}

func TestProfileFeed_Fetch_MapsNodeFields(t *testing.T) {
	// Arrange
	taken := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	loader := &fakeFeed{nodes: []fixtures.Node{{Shortcode: "Cx1", TakenAt: taken, Likes: 321, Comments: 12, IsVideo: true}}}
	feed := newTestFeed(t, loader)

	// Act
	posts, err := feed.Fetch(context.Background(), "one", 50)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("posts: got %d, want 1", len(posts))
	}
	p := posts[0]
	if !p.Timestamp.Equal(taken) || p.Likes != 321 || p.Comments != 12 || !p.IsVideo || p.Shortcode != "Cx1" {
		t.Errorf("unexpected post %+v", p)
	}
	if loader.headers["x-test"] != "1" {
		t.Errorf("headers: got %v, want x-test=1", loader.headers)
	}
}

func TestProfileFeed_Fetch_EmptyProfileIsNotAnError(t *testing.T) {
	loader := &fakeFeed{}
	feed := newTestFeed(t, loader)

	posts, err := feed.Fetch(context.Background(), "newbie", 50)

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("posts: got %d, want 0", len(posts))
	}
}

func TestProfileFeed_Fetch_PageFailure_SourceUnavailable(t *testing.T) {
	loader := &fakeFeed{nodes: fixtures.GenerateNodes(100, time.Now(), time.Hour), failAt: 2}
	feed := newTestFeed(t, loader)

	posts, err := feed.Fetch(context.Background(), "flaky", 100)

	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
	if posts != nil {
		t.Errorf("expected no partial posts, got %d", len(posts))
	}
}

// staticLoader always returns the same page.
type staticLoader struct {
	page string
	err  error
}

func (s staticLoader) Load(ctx context.Context, url string, headers map[string]string) (string, error) {
	return s.page, s.err
}

func TestProfileFeed_Fetch_ProfileErrors(t *testing.T) {
	testCases := []struct {
		name    string
		loader  staticLoader
		wantErr error
	}{
		{name: "missing profile", loader: staticLoader{page: fixtures.GenerateMissingProfile()}, wantErr: domain.ErrProfileNotFound},
		{name: "private profile", loader: staticLoader{page: fixtures.GeneratePrivateProfile()}, wantErr: domain.ErrProfilePrivate},
		{name: "login wall", loader: staticLoader{page: fixtures.GenerateLoginWall()}, wantErr: domain.ErrSourceUnavailable},
		{name: "network failure", loader: staticLoader{err: errors.New("dial tcp: i/o timeout")}, wantErr: domain.ErrSourceUnavailable},
		{name: "broken json", loader: staticLoader{page: `{"data":`}, wantErr: domain.ErrSourceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			feed := newTestFeed(t, tc.loader)

			_, err := feed.Fetch(context.Background(), "someone", 50)

			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if !errors.Is(err, domain.ErrSourceUnavailable) {
				t.Errorf("expected error to wrap ErrSourceUnavailable, got %v", err)
			}
		})
	}
}

func TestProfileFeed_Fetch_CanceledContext(t *testing.T) {
	config, _ := ParseFeedConfig([]byte(testFeedYAML + "pacing:\n  requests_per_second: 0.001\n  burst: 1\n"))
	loader := &fakeFeed{nodes: fixtures.GenerateNodes(100, time.Now(), time.Hour)}
	feed := NewProfileFeed(loader, config, time.UTC)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// The second page would wait ~1000s for the limiter.
	_, err := feed.Fetch(ctx, "slow", 100)

	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
	if len(loader.calls) != 1 {
		t.Errorf("page loads: got %d, want 1", len(loader.calls))
	}
}

func TestProfileFeed_Fetch_AppliesReloadedPacing(t *testing.T) {
	// Arrange
	config, err := ParseFeedConfig([]byte(testFeedYAML + "pacing:\n  requests_per_second: 0.001\n  burst: 1\n"))
	if err != nil {
		t.Fatalf("ParseFeedConfig() error = %v", err)
	}
	loader := &fakeFeed{nodes: fixtures.GenerateNodes(100, time.Now(), time.Hour)}
	feed := NewProfileFeed(loader, config, time.UTC)

	slowCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := feed.Fetch(slowCtx, "paced", 100); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected the slow pacing to block, got %v", err)
	}

	// Act
	if err := config.apply([]byte(testFeedYAML + "pacing:\n  requests_per_second: 1000\n  burst: 5\n")); err != nil {
		t.Fatalf("apply() error = %v", err)
	}
	ctx, cancelFast := context.WithTimeout(context.Background(), time.Second)
	defer cancelFast()
	posts, err := feed.Fetch(ctx, "paced", 100)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error after reload: %v", err)
	}
	if len(posts) != 100 {
		t.Errorf("posts: got %d, want 100", len(posts))
	}
	if feed.limiter.Burst() != 5 {
		t.Errorf("burst: got %d, want 5", feed.limiter.Burst())
	}
}

func TestProfileFeed_Fetch_ConvertsToLocation(t *testing.T) {
	istanbul := time.FixedZone("TRT", 3*60*60)
	taken := time.Date(2024, 3, 5, 22, 0, 0, 0, time.UTC)
	config, _ := ParseFeedConfig([]byte(testFeedYAML))
	feed := NewProfileFeed(&fakeFeed{nodes: []fixtures.Node{{TakenAt: taken}}}, config, istanbul)

	posts, err := feed.Fetch(context.Background(), "tz", 50)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if posts[0].Hour() != 1 || posts[0].DateOnly().String() != "2024-03-06" {
		t.Errorf("expected local hour 1 on 2024-03-06, got %v", posts[0].Timestamp)
	}
}

func TestFeedConfig_TimelineEndpoint_EncodesVariables(t *testing.T) {
	config, err := ParseFeedConfig([]byte(testFeedYAML))
	if err != nil {
		t.Fatalf("ParseFeedConfig() error = %v", err)
	}

	u, err := url.Parse(config.TimelineEndpoint("42", "QVFD=="))
	if err != nil {
		t.Fatalf("invalid URL: %v", err)
	}

	if got := u.Query().Get("query_hash"); got != "abc123" {
		t.Errorf("query_hash: got %q, want abc123", got)
	}
	if got := u.Query().Get("variables"); got != `{"id":"42","first":50,"after":"QVFD=="}` {
		t.Errorf("variables: got %q", got)
	}
}

func TestParseFeedConfig_MissingEndpoints(t *testing.T) {
	_, err := ParseFeedConfig([]byte("headers:\n  a: b\n"))
	if !errors.Is(err, ErrInvalidFeedConfig) {
		t.Errorf("expected ErrInvalidFeedConfig, got %v", err)
	}
}

func TestExtractJSON_BrowserDocument(t *testing.T) {
	body := `{"a":"<b> & c"}`

	got, err := extractJSON(fixtures.WrapInBrowserDocument(body))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != body {
		t.Errorf("got %s, want %s", got, body)
	}
}
