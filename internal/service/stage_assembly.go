package service

import (
	"context"
	"fmt"
	"path/filepath"

	"shorts_factory/internal/domain"
)

const (
	assembledFile = "assembled.mp4"
	finalFile     = "final_video.mp4"
)

// assemble renders the scene clips into one video, transcribes it and burns
// word-level captions on top.
func (p *Pipeline) assemble(ctx context.Context, task *domain.Task, report *domain.StageReport) (domain.TaskUpdate, error) {
	raw := filepath.Join(task.FolderPath, assembledFile)
	if err := p.renderer.Compose(ctx, task.Script.Scenes, raw); err != nil {
		return domain.TaskUpdate{}, fmt.Errorf("compose video: %w", err)
	}

	words, err := p.transcriber.Transcribe(ctx, raw)
	if err != nil {
		return domain.TaskUpdate{}, fmt.Errorf("transcribe narration: %w", err)
	}

	final := filepath.Join(task.FolderPath, finalFile)
	if len(words) == 0 {
		report.Skip("transcription returned no words, video has no captions")
		final = raw
	} else if err := p.renderer.BurnCaptions(ctx, raw, words, final); err != nil {
		return domain.TaskUpdate{}, fmt.Errorf("burn captions: %w", err)
	}

	return domain.TaskUpdate{FinalVideoPath: &final}, nil
}
