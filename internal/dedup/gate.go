package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shorts_factory/internal/domain"
)

const (
	// Window bounds how far back fuzzy matching looks.
	Window = 7 * 24 * time.Hour

	// Threshold is the similarity a title must exceed to count as a duplicate.
	Threshold = 0.85
)

// TitleIndex is the read side of the task store used by the gate.
type TitleIndex interface {
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	TitlesCreatedSince(ctx context.Context, since time.Time) ([]string, error)
}

type Gate struct {
	index  TitleIndex
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Gate)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

func NewGate(index TitleIndex, logger *slog.Logger, opts ...Option) *Gate {
	g := &Gate{
		index:  index,
		now:    time.Now,
		logger: logger.With("component", "dedup"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check runs the exact rule against every stored title, then the fuzzy rule
// against titles created within Window. The first hit wins.
func (g *Gate) Check(ctx context.Context, title string) (domain.DuplicateVerdict, error) {
	title = strings.TrimSpace(title)

	exists, err := g.index.ExistsByTitle(ctx, title)
	if err != nil {
		return domain.DuplicateVerdict{}, fmt.Errorf("exact title lookup: %w", err)
	}
	if exists {
		return domain.DuplicateVerdict{
			Duplicate:  true,
			Reason:     domain.ReasonExact,
			Match:      title,
			Similarity: 1,
		}, nil
	}

	since := g.now().Add(-Window)
	recent, err := g.index.TitlesCreatedSince(ctx, since)
	if err != nil {
		return domain.DuplicateVerdict{}, fmt.Errorf("recent titles lookup: %w", err)
	}

	for _, existing := range recent {
		ratio := Ratio(title, existing)
		if ratio > Threshold {
			return domain.DuplicateVerdict{
				Duplicate:  true,
				Reason:     domain.ReasonFuzzy,
				Match:      existing,
				Similarity: ratio,
			}, nil
		}
	}

	g.logger.Debug("title is unique", "title", title, "compared", len(recent))
	return domain.DuplicateVerdict{}, nil
}
