package service

import (
	"context"
	"fmt"

	"shorts_factory/internal/domain"
)

// Repair is the operator escape hatch for stuck tasks.
func (p *Pipeline) Repair(ctx context.Context, id string, r domain.Repair) (*domain.Task, error) {
	task, cleared, err := p.tasks.Repair(ctx, id, r)
	if err != nil {
		return nil, fmt.Errorf("repair task %s: %w", id, err)
	}

	p.logger.Warn("task repaired",
		"task_id", id,
		"status", task.Status,
		"cleared", cleared,
		"reason", r.Reason,
	)
	p.emit(ctx, domain.TaskEvent{
		Kind:   domain.EventRepaired,
		TaskID: task.ID,
		Title:  task.Title,
		Slot:   task.Slot,
		To:     task.Status,
	})

	return task, nil
}

func (p *Pipeline) Tasks(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	tasks, err := p.tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (p *Pipeline) Task(ctx context.Context, id string) (*domain.Task, error) {
	return p.tasks.GetByID(ctx, id)
}

func (p *Pipeline) RecentUploads(ctx context.Context, limit int) ([]domain.RunLogEntry, error) {
	entries, err := p.runLog.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent uploads: %w", err)
	}
	return entries, nil
}
