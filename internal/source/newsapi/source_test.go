package newsapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"shorts_factory/internal/config"
	"shorts_factory/internal/domain"
)

const everythingBody = `{
  "status": "ok",
  "totalResults": 3,
  "articles": [
    {
      "source": {"id": null, "name": "Space.com"},
      "author": "Jane Doe",
      "title": "NASA finds water on Mars",
      "description": "Liquid water was detected under the south pole.",
      "url": "https://example.com/mars-water",
      "urlToImage": null,
      "publishedAt": "2026-03-14T08:12:00Z",
      "content": "Scientists working with orbiter data said on Friday… [+2143 chars]"
    },
    {
      "source": {"id": null, "name": "[Removed]"},
      "author": null,
      "title": "[Removed]",
      "description": "[Removed]",
      "url": "https://removed.com",
      "urlToImage": null,
      "publishedAt": "2026-03-14T07:00:00Z",
      "content": "[Removed]"
    },
    {
      "source": {"id": "bbc-news", "name": "BBC News"},
      "author": null,
      "title": "Comet visible tonight",
      "description": null,
      "url": "https://example.com/comet",
      "urlToImage": null,
      "publishedAt": "not-a-date",
      "content": null
    }
  ]
}`

type SourceTestSuite struct {
	suite.Suite
	server   *httptest.Server
	requests atomic.Int32
	failures int32
	status   int
	body     string
	lastKey  string
	lastURL  *url.URL
}

func (s *SourceTestSuite) SetupTest() {
	s.requests.Store(0)
	s.failures = 0
	s.status = http.StatusOK
	s.body = everythingBody

	mux := http.NewServeMux()
	mux.HandleFunc("/everything", func(w http.ResponseWriter, r *http.Request) {
		n := s.requests.Add(1)
		s.lastKey = r.Header.Get("X-Api-Key")
		s.lastURL = r.URL
		w.Header().Set("Content-Type", "application/json")
		if n <= s.failures {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"status":"error","code":"unexpectedError","message":"try later"}`)
			return
		}
		w.WriteHeader(s.status)
		fmt.Fprint(w, s.body)
	})
	s.server = httptest.NewServer(mux)
}

func (s *SourceTestSuite) TearDownTest() {
	s.server.Close()
}

func TestSourceTestSuite(t *testing.T) {
	suite.Run(t, new(SourceTestSuite))
}

func (s *SourceTestSuite) newSource(attempts int) *Source {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(config.NewsAPIConfig{
		BaseURL:  s.server.URL,
		APIKey:   "secret",
		Language: "en",
		PageSize: 20,
		Timeout:  5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:    attempts,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     5 * time.Millisecond,
		},
	}, logger)
}

func (s *SourceTestSuite) TestFetchStories() {
	src := s.newSource(1)

	stories, err := src.FetchStories(context.Background(), domain.Niche{Name: "space", Query: "NASA"}, 5)
	s.Require().NoError(err)
	s.Require().Len(stories, 1)

	st := stories[0]
	s.Equal(SourceID, st.SourceID)
	s.Equal("NASA finds water on Mars", st.Title)
	s.Equal("https://example.com/mars-water", st.URL)
	s.Equal("https://example.com/mars-water", st.ExternalID)
	s.Equal(time.Date(2026, 3, 14, 8, 12, 0, 0, time.UTC), st.PublishedAt.UTC())
	s.Equal("Liquid water was detected under the south pole.\n\nScientists working with orbiter data said on Friday", st.Content)

	s.Equal("secret", s.lastKey)
	s.Equal("NASA", s.lastURL.Query().Get("q"))
	s.Equal("en", s.lastURL.Query().Get("language"))
	s.Equal("5", s.lastURL.Query().Get("pageSize"))
	s.Equal("publishedAt", s.lastURL.Query().Get("sortBy"))
}

func (s *SourceTestSuite) TestFetchStories_FallsBackToNicheName() {
	src := s.newSource(1)

	_, err := src.FetchStories(context.Background(), domain.Niche{Name: "cooking"}, 50)
	s.Require().NoError(err)
	s.Equal("cooking", s.lastURL.Query().Get("q"))
	s.Equal("20", s.lastURL.Query().Get("pageSize"))
}

func (s *SourceTestSuite) TestFetchStories_EmptyNiche() {
	_, err := s.newSource(1).FetchStories(context.Background(), domain.Niche{}, 5)
	s.Error(err)
	s.Zero(s.requests.Load())
}

func (s *SourceTestSuite) TestFetchStories_RetriesServerErrors() {
	s.failures = 2
	src := s.newSource(3)

	stories, err := src.FetchStories(context.Background(), domain.Niche{Name: "space", Query: "NASA"}, 5)
	s.Require().NoError(err)
	s.Len(stories, 1)
	s.Equal(int32(3), s.requests.Load())
}

func (s *SourceTestSuite) TestFetchStories_GivesUp() {
	s.failures = 10
	src := s.newSource(2)

	_, err := src.FetchStories(context.Background(), domain.Niche{Name: "space", Query: "NASA"}, 5)
	s.Require().Error(err)
	s.Contains(err.Error(), "after 2 attempts")
	s.Contains(err.Error(), "try later")
	s.Equal(int32(2), s.requests.Load())
}

func (s *SourceTestSuite) TestFetchStories_APIErrorStatus() {
	s.body = `{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid"}`
	_, err := s.newSource(1).FetchStories(context.Background(), domain.Niche{Name: "space", Query: "NASA"}, 5)
	s.Require().Error(err)
	s.Contains(err.Error(), "apiKeyInvalid")
}

func (s *SourceTestSuite) TestFetchStories_ContextCancelled() {
	s.failures = 10
	src := s.newSource(5)
	src.initialBackoff = time.Second
	src.maxBackoff = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := src.FetchStories(ctx, domain.Niche{Name: "space", Query: "NASA"}, 5)
	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *SourceTestSuite) TestCalculateBackoff() {
	src := s.newSource(5)
	src.initialBackoff = time.Second
	src.maxBackoff = 5 * time.Second

	s.Equal(time.Second, src.calculateBackoff(1))
	s.Equal(2*time.Second, src.calculateBackoff(2))
	s.Equal(4*time.Second, src.calculateBackoff(3))
	s.Equal(5*time.Second, src.calculateBackoff(4))
}

func (s *SourceTestSuite) TestIdentity() {
	src := s.newSource(1)
	s.Equal("newsapi", src.ID())
	s.Equal("NewsAPI", src.Name())
}
