// Package cache memoizes the text of local files and remote URLs for the
// duration of one generation run.
//
// Entries are never invalidated: a run is short-lived and the filesystem and
// network are assumed stable while it lasts. Start a new Cache per run.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gorewood/rustme/internal/logfields"
	"github.com/gorewood/rustme/internal/scan"
)

// DefaultUserAgent identifies rustme to remote hosts.
const DefaultUserAgent = "rustme"

// ErrNotFound is returned for a missing local file or an HTTP 404.
var ErrNotFound = errors.New("resource not found")

// HTTPError reports a non-success, non-404 HTTP response.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s returned status %d", e.URL, e.Status)
}

// HTTPDoer defines the HTTP operations required by Cache.
// This allows injection of test doubles for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Key identifies a cached resource.
type Key struct {
	URL  string
	Path string
}

func (k Key) String() string {
	if k.URL != "" {
		return k.URL
	}
	return k.Path
}

// IsRemote reports whether resource must be fetched over HTTP.
func IsRemote(resource string) bool {
	return strings.HasPrefix(resource, "http://") || strings.HasPrefix(resource, "https://")
}

// KeyFor canonicalizes resource. Local paths are joined to baseDir, made
// absolute, and cleaned.
func KeyFor(resource, baseDir string) (Key, error) {
	if IsRemote(resource) {
		return Key{URL: resource}, nil
	}
	path, err := filepath.Abs(filepath.Join(baseDir, resource))
	if err != nil {
		return Key{}, fmt.Errorf("resolving %s: %w", resource, err)
	}
	return Key{Path: path}, nil
}

// Stats counts cache activity.
type Stats struct {
	Hits          int `json:"hits"`
	Misses        int `json:"misses"`
	LocalReads    int `json:"local_reads"`
	RemoteFetches int `json:"remote_fetches"`
}

// Cache holds resource text keyed by canonical location.
// It is not safe for concurrent use.
type Cache struct {
	entries    map[Key]string
	httpClient HTTPDoer
	userAgent  string
	readFile   func(string) ([]byte, error)
	logger     *slog.Logger
	stats      Stats
}

// Option configures a Cache.
type Option func(*Cache)

// WithHTTPClient sets the client used for remote resources.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Cache) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(agent string) Option {
	return func(c *Cache) {
		if agent != "" {
			c.userAgent = agent
		}
	}
}

// WithLogger sets the logger used to report remote requests.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReadFile replaces os.ReadFile, mainly for tests.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(c *Cache) {
		if fn != nil {
			c.readFile = fn
		}
	}
}

// New returns an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[Key]string),
		httpClient: http.DefaultClient,
		userAgent:  DefaultUserAgent,
		readFile:   os.ReadFile,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the text of resource, reading or fetching it on first use.
// Relative paths are resolved against baseDir. A missing resource yields an
// error matching ErrNotFound.
func (c *Cache) Get(ctx context.Context, resource, baseDir string) (string, error) {
	key, err := KeyFor(resource, baseDir)
	if err != nil {
		return "", err
	}
	if text, ok := c.entries[key]; ok {
		c.stats.Hits++
		return text, nil
	}
	c.stats.Misses++

	var text string
	if key.URL != "" {
		text, err = c.fetch(ctx, key.URL)
	} else {
		text, err = c.read(key.Path)
	}
	if err != nil {
		return "", err
	}

	c.entries[key] = text
	return text, nil
}

// Len returns the number of cached resources.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() Stats {
	return c.stats
}

func (c *Cache) read(path string) (string, error) {
	data, err := c.readFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	c.stats.LocalReads++
	return decodeText(path, data)
}

func (c *Cache) fetch(ctx context.Context, url string) (string, error) {
	c.logger.Info("Requesting", logfields.URL(url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http error: requesting %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", &HTTPError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("http error: reading %s: %w", url, err)
	}
	c.stats.RemoteFetches++
	return decodeText(url, body)
}

func decodeText(location string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", location, scan.ErrInvalidUTF8)
	}
	return string(data), nil
}
