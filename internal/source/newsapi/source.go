package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"shorts_factory/internal/config"
	"shorts_factory/internal/domain"
)

const (
	SourceID       = "newsapi"
	SourceName     = "NewsAPI"
	DefaultBaseURL = "https://newsapi.org/v2"
	removedMarker  = "[Removed]"
)

// truncatedSuffix matches the "… [+1234 chars]" tail NewsAPI appends.
var truncatedSuffix = regexp.MustCompile(`\s*(…|\.\.\.)?\s*\[\+\d+ chars\]\s*$`)

// Source implements service.Source for the NewsAPI /everything endpoint.
type Source struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	language       string
	pageSize       int
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

func New(cfg config.NewsAPIConfig, logger *slog.Logger) *Source {
	s := &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		language:       cfg.Language,
		pageSize:       cfg.PageSize,
		maxAttempts:    cfg.Retry.MaxAttempts,
		initialBackoff: cfg.Retry.InitialBackoff,
		maxBackoff:     cfg.Retry.MaxBackoff,
		logger:         logger.With("source", SourceID),
	}
	if s.baseURL == "" {
		s.baseURL = DefaultBaseURL
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = 1
	}
	return s
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return SourceID
}

// Name returns human-readable name.
func (s *Source) Name() string {
	return SourceName
}

// FetchStories returns the newest articles matching the niche query.
func (s *Source) FetchStories(ctx context.Context, niche domain.Niche, limit int) ([]domain.Story, error) {
	query := niche.Query
	if query == "" {
		query = niche.Name
	}
	if query == "" {
		return nil, fmt.Errorf("niche has no query")
	}

	size := s.pageSize
	if limit > 0 && (size <= 0 || limit < size) {
		size = limit
	}

	resp, err := s.fetch(ctx, query, size)
	if err != nil {
		return nil, err
	}

	stories := s.transform(resp.Articles)
	s.logger.Debug("fetched stories",
		"niche", niche.Name,
		"articles", len(resp.Articles),
		"stories", len(stories),
	)
	return stories, nil
}

func (s *Source) fetch(ctx context.Context, query string, size int) (*APIResponse, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("sortBy", "publishedAt")
	if s.language != "" {
		q.Set("language", s.language)
	}
	if size > 0 {
		q.Set("pageSize", strconv.Itoa(size))
	}
	endpoint := s.baseURL + "/everything?" + q.Encode()

	var resp *APIResponse
	var err error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		resp, err = s.doRequest(ctx, endpoint)
		if err == nil {
			return resp, nil
		}

		if attempt == s.maxAttempts {
			break
		}

		backoff := s.calculateBackoff(attempt)
		s.logger.Warn("request failed, retrying",
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

	return nil, fmt.Errorf("after %d attempts: %w", s.maxAttempts, err)
}

func (s *Source) doRequest(ctx context.Context, endpoint string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ShortsFactory/1.0")
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var apiResp APIResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&apiResp)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && apiResp.Message != "" {
			return nil, fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, apiResp.Message)
		}
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if apiResp.Status != "ok" {
		return nil, fmt.Errorf("api error %s: %s", apiResp.Code, apiResp.Message)
	}

	return &apiResp, nil
}

func (s *Source) calculateBackoff(attempt int) time.Duration {
	backoff := s.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > s.maxBackoff {
		backoff = s.maxBackoff
	}
	return backoff
}

func (s *Source) transform(articles []Article) []domain.Story {
	stories := make([]domain.Story, 0, len(articles))

	for _, a := range articles {
		title := strings.TrimSpace(a.Title)
		if title == "" || title == removedMarker {
			continue
		}

		publishedAt, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			s.logger.Warn("failed to parse date",
				"url", a.URL,
				"date", a.PublishedAt,
			)
			continue
		}

		stories = append(stories, domain.Story{
			SourceID:    SourceID,
			ExternalID:  a.URL,
			Title:       title,
			Content:     articleText(a),
			URL:         a.URL,
			PublishedAt: publishedAt,
		})
	}

	return stories
}

// articleText joins description and the truncated body preview.
func articleText(a Article) string {
	var parts []string
	if a.Description != nil {
		if d := strings.TrimSpace(*a.Description); d != "" {
			parts = append(parts, d)
		}
	}
	if a.Content != nil {
		c := strings.TrimSpace(truncatedSuffix.ReplaceAllString(*a.Content, ""))
		if c != "" && (len(parts) == 0 || !strings.HasPrefix(c, parts[0])) {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "\n\n")
}
