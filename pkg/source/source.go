// Package source reads the precomputed dataset assets.
//
// A data directory is either a local path or an http(s) base URL. Remote
// assets are fetched with retry on transient failures and written through to
// a persistent [cache.Cache], so a later session can skip the download.
// Local assets are read straight from disk.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/latentscope/pkg/buildinfo"
	"github.com/matzehuels/latentscope/pkg/cache"
	"github.com/matzehuels/latentscope/pkg/dataset"
	"github.com/matzehuels/latentscope/pkg/errors"
	"github.com/matzehuels/latentscope/pkg/httputil"
	"github.com/matzehuels/latentscope/pkg/latent"
	"github.com/matzehuels/latentscope/pkg/observability"
)

const httpTimeout = 10 * time.Second

// Source provides the decoded dataset assets.
type Source interface {
	// Defaults returns the shared defaults table.
	Defaults(ctx context.Context) (*dataset.Defaults, error)

	// Tree returns the reconstruction tree for sample.
	Tree(ctx context.Context, sample int) (*dataset.Tree, error)
}

// Options configures a [Client].
type Options struct {
	// Cache stores remote asset bytes. Nil disables persistent caching.
	Cache cache.Cache
	// Keyer builds cache keys. Nil uses cache.DefaultKeyer.
	Keyer cache.Keyer
	// TTL bounds the lifetime of persisted assets; 0 keeps them forever.
	TTL time.Duration
	// HTTPClient overrides the default client (10s timeout).
	HTTPClient *http.Client
	// Headers are added to every remote request.
	Headers map[string]string
	// Attempts is the retry budget for transient failures (default 3).
	Attempts int
	// RetryDelay is the initial backoff (default 1s).
	RetryDelay time.Duration
	Logger     *log.Logger
}

// Client reads assets from a data directory.
type Client struct {
	base    string
	remote  bool
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	headers map[string]string

	retry  httputil.Policy
	logger *log.Logger
}

// New creates a client for dataDir.
func New(dataDir string, opts Options) (*Client, error) {
	if strings.TrimSpace(dataDir) == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "data_dir is required")
	}
	c := &Client{
		base:    dataDir,
		http:    opts.HTTPClient,
		cache:   opts.Cache,
		keyer:   opts.Keyer,
		ttl:     opts.TTL,
		headers: opts.Headers,
		retry:   httputil.Policy{Attempts: opts.Attempts, Delay: opts.RetryDelay}.WithDefaults(),
		logger:  opts.Logger,
	}
	if IsRemote(dataDir) {
		if err := errors.ValidateURL(dataDir); err != nil {
			return nil, err
		}
		c.remote = true
		if !strings.HasSuffix(c.base, "/") {
			c.base += "/"
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: httpTimeout}
	}
	if c.cache == nil {
		c.cache = cache.NewNullCache()
	}
	if c.keyer == nil {
		c.keyer = cache.NewDefaultKeyer()
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c, nil
}

// IsRemote reports whether dataDir names an http(s) location.
func IsRemote(dataDir string) bool {
	return strings.HasPrefix(dataDir, "http://") || strings.HasPrefix(dataDir, "https://")
}

// Base returns the normalized data directory.
func (c *Client) Base() string { return c.base }

// Defaults implements Source.
func (c *Client) Defaults(ctx context.Context) (*dataset.Defaults, error) {
	data, err := c.Asset(ctx, dataset.DefaultsFile)
	if err != nil {
		return nil, err
	}
	return dataset.DecodeDefaults(data)
}

// Tree implements Source.
func (c *Client) Tree(ctx context.Context, sample int) (*dataset.Tree, error) {
	if sample < 0 {
		return nil, errors.New(errors.ErrCodeInvalidSample, "negative sample %d", sample)
	}
	data, err := c.Asset(ctx, dataset.SampleFile(sample))
	if err != nil {
		return nil, err
	}
	t, err := dataset.DecodeTree(data)
	if err != nil {
		return nil, err
	}
	if d := t.Depth(); d != latent.Dims {
		return nil, errors.New(errors.ErrCodeMalformed, "sample %d: tree depth %d, want %d", sample, d, latent.Dims)
	}
	return t, nil
}

// Asset returns the raw bytes of a named asset.
func (c *Client) Asset(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateAssetName(name); err != nil {
		return nil, err
	}
	hooks := observability.Fetch()
	hooks.OnFetchStart(ctx, name)
	start := time.Now()

	var (
		data []byte
		err  error
	)
	if c.remote {
		data, err = c.remoteAsset(ctx, name)
	} else {
		data, err = c.localAsset(name)
	}
	hooks.OnFetchComplete(ctx, name, len(data), time.Since(start), err)
	if err != nil {
		c.logger.Debug("asset fetch failed", "asset", name, "err", err)
		return nil, err
	}
	c.logger.Debug("asset fetched", "asset", name, "bytes", len(data), "duration", time.Since(start).Round(time.Millisecond))
	return data, nil
}

func (c *Client) localAsset(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(c.base, name))
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "asset %s", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read asset %s", name)
	}
	return data, nil
}

func (c *Client) remoteAsset(ctx context.Context, name string) ([]byte, error) {
	key := c.keyer.AssetKey(c.base, name)
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, name)
		return data, nil
	} else if err != nil {
		c.logger.Warn("asset cache read failed", "asset", name, "err", err)
	}
	observability.Cache().OnCacheMiss(ctx, name)

	var data []byte
	err := httputil.Retry(ctx, c.retry, func() error {
		var err error
		data, err = c.get(ctx, c.base+url.PathEscape(name))
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("asset cache write failed", "asset", name, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, name, len(data))
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, httputil.Transient(err, "GET %s", rawURL)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp.StatusCode, rawURL); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httputil.Transient(err, "read %s", rawURL)
	}
	return data, nil
}

// =============================================================================
// Memory
// =============================================================================

// Memory serves assets from values held in memory.
type Memory struct {
	defaults *dataset.Defaults
	trees    map[int]*dataset.Tree
}

// NewMemory returns a Source over the given defaults table and trees.
func NewMemory(defaults *dataset.Defaults, trees map[int]*dataset.Tree) *Memory {
	return &Memory{defaults: defaults, trees: trees}
}

// Defaults implements Source.
func (m *Memory) Defaults(ctx context.Context) (*dataset.Defaults, error) {
	if m.defaults == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "asset %s", dataset.DefaultsFile)
	}
	return m.defaults, nil
}

// Tree implements Source.
func (m *Memory) Tree(ctx context.Context, sample int) (*dataset.Tree, error) {
	t, ok := m.trees[sample]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "asset %s", dataset.SampleFile(sample))
	}
	return t, nil
}

var (
	_ Source = (*Client)(nil)
	_ Source = (*Memory)(nil)
)

// Describe returns a short human-readable description of a data directory.
func Describe(dataDir string) string {
	if IsRemote(dataDir) {
		return fmt.Sprintf("remote %s", dataDir)
	}
	return fmt.Sprintf("local %s", dataDir)
}
