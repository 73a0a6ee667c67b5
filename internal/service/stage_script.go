package service

import (
	"context"
	"fmt"
	"strings"

	"shorts_factory/internal/domain"
)

func (p *Pipeline) writeScript(ctx context.Context, task *domain.Task, report *domain.StageReport) (domain.TaskUpdate, error) {
	draft, err := p.writer.WriteScript(ctx, domain.ScriptRequest{
		Title:   task.Title,
		Content: truncateRunes(task.Content, p.config.SourceTextLimit),
		Niche:   task.Niche,
	})
	if err != nil {
		return domain.TaskUpdate{}, fmt.Errorf("write script: %w", err)
	}
	if draft == nil {
		return domain.TaskUpdate{}, fmt.Errorf("%w: writer returned no draft", domain.ErrInvalidScript)
	}

	scenes, repaired, err := domain.NormalizeScenes(draft.Scenes, p.config.MaxImagesPerScene)
	if err != nil {
		return domain.TaskUpdate{}, err
	}
	if repaired > 0 {
		report.NoteRepair(fmt.Sprintf("%d scene(s) without keywords got fallback keywords", repaired))
	}

	meta := draft.Metadata
	if strings.TrimSpace(meta.Title) == "" {
		meta.Title = task.Title
	}
	meta.Tags = domain.CleanKeywords(meta.Tags)

	return domain.TaskUpdate{
		Script:   &domain.Script{Scenes: scenes},
		Metadata: &meta,
	}, nil
}
