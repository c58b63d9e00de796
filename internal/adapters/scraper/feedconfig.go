package scraper

import (
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"instatistics/pkg/log"

	"gopkg.in/yaml.v3"
)

// ErrInvalidFeedConfig is returned when the feed configuration lacks endpoints.
var ErrInvalidFeedConfig = errors.New("invalid feed config")

const defaultPageSize = 50

// FeedConfig holds the endpoints used to read a public profile feed.
type FeedConfig struct {
	ProfileURL        string
	TimelineURL       string
	QueryHash         string
	PageSize          int
	Headers           map[string]string
	RequestsPerSecond float64
	Burst             int

	mu          sync.RWMutex
	lastModTime time.Time
	filePath    string
	done        chan struct{}
	closeOnce   sync.Once
}

// rawFeedConfig represents the YAML structure.
type rawFeedConfig struct {
	Profile struct {
		URL string `yaml:"url"`
	} `yaml:"profile"`
	Timeline struct {
		URL       string `yaml:"url"`
		QueryHash string `yaml:"query_hash"`
		PageSize  int    `yaml:"page_size"`
	} `yaml:"timeline"`
	Headers map[string]string `yaml:"headers"`
	Pacing  struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"pacing"`
}

// LoadFeedConfig loads the feed configuration from a YAML file.
// It starts a background goroutine for hot-reloading, stopped by Close.
func LoadFeedConfig(filePath string) (*FeedConfig, error) {
	config := &FeedConfig{filePath: filePath, done: make(chan struct{})}
	if err := config.reload(); err != nil {
		return nil, err
	}

	go config.watch()

	return config, nil
}

// ParseFeedConfig builds a static configuration from YAML bytes.
func ParseFeedConfig(data []byte) (*FeedConfig, error) {
	config := &FeedConfig{done: make(chan struct{})}
	if err := config.apply(data); err != nil {
		return nil, err
	}
	return config, nil
}

// reload reads the configuration from the file.
func (c *FeedConfig) reload() error {
	info, err := os.Stat(c.filePath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return err
	}

	if err := c.apply(data); err != nil {
		return err
	}

	c.mu.Lock()
	c.lastModTime = info.ModTime()
	c.mu.Unlock()
	return nil
}

func (c *FeedConfig) apply(data []byte) error {
	var raw rawFeedConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Profile.URL == "" || raw.Timeline.URL == "" {
		return ErrInvalidFeedConfig
	}
	if raw.Timeline.PageSize <= 0 {
		raw.Timeline.PageSize = defaultPageSize
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.ProfileURL = raw.Profile.URL
	c.TimelineURL = raw.Timeline.URL
	c.QueryHash = raw.Timeline.QueryHash
	c.PageSize = raw.Timeline.PageSize
	c.Headers = raw.Headers
	c.RequestsPerSecond = raw.Pacing.RequestsPerSecond
	c.Burst = raw.Pacing.Burst

	return nil
}

// watch monitors the configuration file for changes and reloads it.
func (c *FeedConfig) watch() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		info, err := os.Stat(c.filePath)
		if err != nil {
			continue
		}

		c.mu.RLock()
		changed := info.ModTime().After(c.lastModTime)
		c.mu.RUnlock()

		if changed {
			if err := c.reload(); err != nil {
				log.GlobalWarn("feed config reload failed", "path", c.filePath, "error", err)
				continue
			}
			log.GlobalInfo("feed config reloaded", "path", c.filePath)
		}
	}
}

// Close stops the hot-reload watcher.
func (c *FeedConfig) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// ProfileEndpoint returns the profile document URL for a username (thread-safe).
func (c *FeedConfig) ProfileEndpoint(username string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return strings.ReplaceAll(c.ProfileURL, "{username}", url.QueryEscape(username))
}

// TimelineEndpoint returns the URL of the timeline page after cursor (thread-safe).
func (c *FeedConfig) TimelineEndpoint(userID, cursor string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	vars, _ := json.Marshal(struct {
		ID    string `json:"id"`
		First int    `json:"first"`
		After string `json:"after"`
	}{ID: userID, First: c.PageSize, After: cursor})

	return strings.NewReplacer(
		"{query_hash}", url.QueryEscape(c.QueryHash),
		"{variables}", url.QueryEscape(string(vars)),
	).Replace(c.TimelineURL)
}

// RequestHeaders returns a copy of the extra request headers (thread-safe).
func (c *FeedConfig) RequestHeaders() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	headers := make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		headers[k] = v
	}
	return headers
}

// Pacing returns the page request rate and burst (thread-safe).
func (c *FeedConfig) Pacing() (float64, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.RequestsPerSecond, c.Burst
}
