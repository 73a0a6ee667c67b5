package service

import (
	"context"
	"fmt"

	"shorts_factory/internal/domain"
)

const (
	maxUploadTitle       = 100
	maxUploadDescription = 4000
	fallbackCategory     = "22"
)

var defaultCategories = map[string]string{
	"motivation": "22",
	"tech":       "28",
	"space":      "28",
	"nature":     "15",
	"history":    "27",
	"general":    "24",
}

func (p *Pipeline) publish(ctx context.Context, task *domain.Task, _ *domain.StageReport) (domain.TaskUpdate, error) {
	req := p.uploadRequest(task)
	if !fileExists(req.VideoPath) {
		return domain.TaskUpdate{}, fmt.Errorf("%w: final video %q", domain.ErrMissingMedia, req.VideoPath)
	}

	res, err := p.uploader.Upload(ctx, req)
	if err != nil {
		return domain.TaskUpdate{}, fmt.Errorf("upload video: %w", err)
	}
	if res == nil || res.VideoID == "" {
		return domain.TaskUpdate{}, fmt.Errorf("upload video: no video id returned")
	}

	uploadedAt := res.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = p.now()
	}

	return domain.TaskUpdate{
		YouTubeID:  &res.VideoID,
		UploadedAt: &uploadedAt,
	}, nil
}

func (p *Pipeline) uploadRequest(task *domain.Task) domain.UploadRequest {
	video := ""
	if task.FinalVideoPath != nil {
		video = *task.FinalVideoPath
	}

	desc := truncateRunes(task.Content, maxUploadDescription) + "\n\n#Shorts"
	if task.SourceURL != "" {
		desc += "\n\nSource: " + task.SourceURL
	}

	tags := append([]string(nil), task.Metadata.Tags...)
	tags = append(tags, "Shorts", task.Niche)

	return domain.UploadRequest{
		VideoPath:   video,
		Title:       truncateRunes(task.UploadTitle(), maxUploadTitle),
		Description: desc,
		Tags:        domain.CleanKeywords(tags),
		CategoryID:  p.categoryFor(task.Niche),
		Privacy:     p.config.Privacy,
	}
}

// categoryFor maps a niche to a platform category id. Configured niches win
// over the built-in table; anything unknown lands in People & Blogs.
func (p *Pipeline) categoryFor(niche string) string {
	if n, ok := p.niches[niche]; ok && n.CategoryID != "" {
		return n.CategoryID
	}
	if id, ok := defaultCategories[niche]; ok {
		return id
	}
	return fallbackCategory
}
