package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"shorts_factory/internal/domain"
)

const (
	manualSlot   = "manual"
	defaultNiche = "general"
)

// CreateTask admits a story as a pending task unless the duplicate gate
// rejects its title, in which case it returns ("", false, nil).
func (p *Pipeline) CreateTask(ctx context.Context, req domain.AdmissionRequest) (string, bool, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Title == "" || req.Content == "" {
		return "", false, fmt.Errorf("%w: title and content are required", domain.ErrInvalidAdmission)
	}
	if req.Slot == "" {
		req.Slot = manualSlot
	}
	if req.Niche == "" {
		req.Niche = defaultNiche
	}

	logger := p.logger.With("title", req.Title, "slot", req.Slot)

	var (
		task   *domain.Task
		folder string
	)
	err := p.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		verdict, err := p.gate.Check(txCtx, req.Title)
		if err != nil {
			return fmt.Errorf("check duplicate: %w", err)
		}
		if verdict.Duplicate {
			logger.Info("duplicate story skipped",
				"reason", verdict.Reason,
				"match", verdict.Match,
				"similarity", verdict.Similarity,
			)
			return nil
		}

		id := uuid.NewString()
		folder, err = p.folders.Prepare(req.Title, req.Slot, p.now(), id)
		if err != nil {
			return fmt.Errorf("prepare task folder: %w", err)
		}

		t := &domain.Task{
			ID:         id,
			Title:      req.Title,
			Content:    req.Content,
			Source:     req.Source,
			SourceURL:  req.SourceURL,
			Niche:      req.Niche,
			Slot:       req.Slot,
			Status:     domain.StatusPending,
			FolderPath: folder,
		}
		if err := p.tasks.Create(txCtx, t); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		task = t
		return nil
	})
	if err != nil {
		if folder != "" {
			p.folders.Remove(folder)
		}
		return "", false, err
	}
	if task == nil {
		return "", false, nil
	}

	logger.Info("task admitted", "task_id", task.ID, "folder", task.FolderPath)
	p.emit(ctx, domain.TaskEvent{
		Kind:   domain.EventAdmitted,
		TaskID: task.ID,
		Title:  task.Title,
		Slot:   task.Slot,
		To:     domain.StatusPending,
	})

	return task.ID, true, nil
}

// Scout asks each source for the slot's niche in turn and admits the first
// story that passes the duplicate gate. At most one task is admitted.
func (p *Pipeline) Scout(ctx context.Context, slot string) (string, bool, error) {
	s, ok := p.slots[slot]
	if !ok {
		return "", false, fmt.Errorf("%w: %q", domain.ErrUnknownSlot, slot)
	}
	niche, ok := p.niches[s.Niche]
	if !ok {
		niche = domain.Niche{Name: s.Niche}
	}

	logger := p.logger.With("slot", slot, "niche", niche.Name)

	for _, src := range p.sources {
		stories, err := src.FetchStories(ctx, niche, p.config.ScoutLimit)
		if err != nil {
			logger.Warn("source failed", "source", src.ID(), "error", err)
			continue
		}
		logger.Debug("fetched stories", "source", src.ID(), "count", len(stories))

		for _, story := range stories {
			if strings.TrimSpace(story.Title) == "" {
				continue
			}
			content := story.Content
			if strings.TrimSpace(content) == "" {
				content = story.Title
			}

			id, admitted, err := p.CreateTask(ctx, domain.AdmissionRequest{
				Title:     story.Title,
				Content:   content,
				Source:    src.Name(),
				SourceURL: story.URL,
				Niche:     niche.Name,
				Slot:      slot,
			})
			if err != nil {
				return "", false, err
			}
			if admitted {
				return id, true, nil
			}
		}
	}

	return "", false, nil
}
