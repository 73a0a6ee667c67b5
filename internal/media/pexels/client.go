package pexels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"shorts_factory/internal/config"
	"shorts_factory/internal/domain"
)

const DefaultBaseURL = "https://api.pexels.com/v1"

var ErrNoResults = errors.New("no photos found")

// errPermanent marks responses that retrying cannot fix.
type errPermanent struct{ status int }

func (e errPermanent) Error() string { return fmt.Sprintf("unexpected status: %d", e.status) }

// Client searches Pexels for stills and downloads them.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	orientation    string
	perPage        int
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

func New(cfg config.MediaConfig, logger *slog.Logger) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		orientation:    cfg.Orientation,
		perPage:        cfg.PerPage,
		maxAttempts:    cfg.Retry.MaxAttempts,
		initialBackoff: cfg.Retry.InitialBackoff,
		maxBackoff:     cfg.Retry.MaxBackoff,
		logger:         logger.With("component", "pexels"),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.perPage <= 0 {
		c.perPage = 5
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 1
	}
	return c
}

// Fetch downloads the query.Rank-th search result for query.Keyword to
// outPath. When there are fewer results the last one is used.
func (c *Client) Fetch(ctx context.Context, query domain.ImageQuery, outPath string) error {
	resp, err := c.search(ctx, query.Keyword)
	if err != nil {
		return fmt.Errorf("search %q: %w", query.Keyword, err)
	}
	if len(resp.Photos) == 0 {
		return fmt.Errorf("search %q: %w", query.Keyword, ErrNoResults)
	}

	idx := query.Rank
	if idx >= len(resp.Photos) {
		idx = len(resp.Photos) - 1
	}
	if idx < 0 {
		idx = 0
	}
	photo := resp.Photos[idx]

	src := photo.Src.best()
	if src == "" {
		return fmt.Errorf("photo %d: no download url", photo.ID)
	}
	if err := c.download(ctx, src, outPath); err != nil {
		return fmt.Errorf("download photo %d: %w", photo.ID, err)
	}

	c.logger.Debug("image downloaded",
		"keyword", query.Keyword,
		"rank", query.Rank,
		"photo_id", photo.ID,
		"path", outPath,
	)
	return nil
}

func (c *Client) search(ctx context.Context, keyword string) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("per_page", strconv.Itoa(c.perPage))
	if c.orientation != "" {
		q.Set("orientation", c.orientation)
	}
	endpoint := c.baseURL + "/search?" + q.Encode()

	var resp *SearchResponse
	var err error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err = c.doSearch(ctx, endpoint)
		if err == nil {
			return resp, nil
		}

		var perm errPermanent
		if errors.As(err, &perm) || attempt == c.maxAttempts {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("search failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", c.maxAttempts, err)
}

func (c *Client) doSearch(ctx context.Context, endpoint string) (*SearchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	default:
		return nil, errPermanent{status: resp.StatusCode}
	}

	var out SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// download streams src into a temp file next to outPath and renames it into
// place so a half-written image is never left behind.
func (c *Client) download(ctx context.Context, src, outPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".img-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("empty image body")
	}

	return os.Rename(tmp.Name(), outPath)
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}
