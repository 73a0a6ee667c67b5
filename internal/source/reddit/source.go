package reddit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"shorts_factory/internal/config"
	"shorts_factory/internal/domain"
)

const (
	SourceID   = "reddit"
	SourceName = "Reddit"
	siteURL    = "https://www.reddit.com"
)

// postLister is the part of reddit.SubredditService the source needs.
type postLister interface {
	TopPosts(ctx context.Context, subreddit string, opts *reddit.ListPostOptions) ([]*reddit.Post, *reddit.Response, error)
}

// Source reads the top posts of each niche subreddit without authentication.
type Source struct {
	posts      postLister
	timeFilter string
	logger     *slog.Logger
}

func New(cfg config.RedditConfig, logger *slog.Logger) (*Source, error) {
	client, err := reddit.NewReadonlyClient(reddit.WithUserAgent(cfg.UserAgent))
	if err != nil {
		return nil, fmt.Errorf("create reddit client: %w", err)
	}
	return newSource(client.Subreddit, cfg.TimeFilter, logger), nil
}

func newSource(posts postLister, timeFilter string, logger *slog.Logger) *Source {
	if timeFilter == "" {
		timeFilter = "day"
	}
	return &Source{
		posts:      posts,
		timeFilter: timeFilter,
		logger:     logger.With("source", SourceID),
	}
}

func (s *Source) ID() string {
	return SourceID
}

func (s *Source) Name() string {
	return SourceName
}

// FetchStories merges the top posts of every niche subreddit, highest score
// first. A failing subreddit is skipped unless all of them fail.
func (s *Source) FetchStories(ctx context.Context, niche domain.Niche, limit int) ([]domain.Story, error) {
	if len(niche.Subreddits) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	var (
		stories []domain.Story
		errs    []error
	)
	for _, sub := range niche.Subreddits {
		posts, _, err := s.posts.TopPosts(ctx, sub, &reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: limit},
			Time:        s.timeFilter,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("failed to fetch subreddit", "subreddit", sub, "error", err)
			errs = append(errs, fmt.Errorf("r/%s: %w", sub, err))
			continue
		}
		stories = append(stories, s.transform(posts)...)
	}

	if len(errs) == len(niche.Subreddits) {
		return nil, errors.Join(errs...)
	}

	sort.SliceStable(stories, func(i, j int) bool { return stories[i].Score > stories[j].Score })
	if len(stories) > limit {
		stories = stories[:limit]
	}

	s.logger.Debug("fetched stories", "niche", niche.Name, "stories", len(stories))
	return stories, nil
}

func (s *Source) transform(posts []*reddit.Post) []domain.Story {
	stories := make([]domain.Story, 0, len(posts))

	for _, p := range posts {
		if p == nil || p.Stickied || p.NSFW {
			continue
		}
		title := strings.TrimSpace(p.Title)
		if title == "" {
			continue
		}

		content := strings.TrimSpace(p.Body)
		if content == "" {
			content = title
		}

		story := domain.Story{
			SourceID:   SourceID,
			ExternalID: p.FullID,
			Title:      title,
			Content:    content,
			URL:        siteURL + p.Permalink,
			Score:      p.Score,
		}
		if p.Created != nil {
			story.PublishedAt = p.Created.Time
		}
		stories = append(stories, story)
	}

	return stories
}
