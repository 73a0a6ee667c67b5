package service

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"shorts_factory/internal/domain"
)

// narrate synthesizes every scene concurrently. Any failed scene fails the
// stage so the task stays scripted.
func (p *Pipeline) narrate(ctx context.Context, task *domain.Task, _ *domain.StageReport) (domain.TaskUpdate, error) {
	scenes := cloneScenes(task.Script.Scenes)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency())

	for i := range scenes {
		g.Go(func() error {
			path := filepath.Join(task.FolderPath, fmt.Sprintf("audio_%d.mp3", i))

			if err := p.synth.Synthesize(gctx, scenes[i].Text, path); err != nil {
				return fmt.Errorf("scene %d: synthesize: %w", i, err)
			}

			seconds, err := p.prober.Duration(gctx, path)
			if err != nil {
				return fmt.Errorf("scene %d: probe duration: %w", i, err)
			}
			if seconds <= 0 {
				return fmt.Errorf("scene %d: %w: empty audio %s", i, domain.ErrMissingMedia, path)
			}

			scenes[i].AudioPath = path
			scenes[i].AudioSeconds = seconds
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.TaskUpdate{}, err
	}

	return domain.TaskUpdate{Script: &domain.Script{Scenes: scenes}}, nil
}

func cloneScenes(in []domain.Scene) []domain.Scene {
	out := make([]domain.Scene, len(in))
	for i, sc := range in {
		sc.Keywords = append([]string(nil), sc.Keywords...)
		sc.ImagePaths = append([]string(nil), sc.ImagePaths...)
		out[i] = sc
	}
	return out
}
