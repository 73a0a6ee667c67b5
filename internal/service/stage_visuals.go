package service

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"shorts_factory/internal/domain"
)

type imageJob struct {
	scene int
	image int
	query domain.ImageQuery
	path  string
	err   error
}

// sourceVisuals downloads image_count images per scene. Failed downloads are
// retried once with the fallback keywords; a scene left without any image
// fails the stage.
func (p *Pipeline) sourceVisuals(ctx context.Context, task *domain.Task, report *domain.StageReport) (domain.TaskUpdate, error) {
	scenes := cloneScenes(task.Script.Scenes)

	var jobs []*imageJob
	for i, sc := range scenes {
		scenes[i].ImagePaths = nil
		for j, q := range domain.ImageQueries(sc) {
			jobs = append(jobs, &imageJob{
				scene: i,
				image: j,
				query: q,
				path:  filepath.Join(task.FolderPath, fmt.Sprintf("scene_%d_img_%d.jpg", i, j)),
			})
		}
	}

	var g errgroup.Group
	g.SetLimit(p.concurrency())
	for _, job := range jobs {
		g.Go(func() error {
			job.err = p.images.Fetch(ctx, job.query, job.path)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return domain.TaskUpdate{}, err
	}

	for _, job := range jobs {
		if job.err == nil {
			continue
		}
		fallback := domain.ImageQuery{
			Keyword: domain.FallbackKeywords[job.image%len(domain.FallbackKeywords)],
			Rank:    job.image / len(domain.FallbackKeywords),
		}
		if err := p.images.Fetch(ctx, fallback, job.path); err != nil {
			report.Skip(fmt.Sprintf("scene %d image %d (%q): %v", job.scene, job.image, job.query.Keyword, job.err))
			continue
		}
		report.NoteRepair(fmt.Sprintf("scene %d image %d: used fallback %q", job.scene, job.image, fallback.Keyword))
		job.err = nil
	}

	for _, job := range jobs {
		if job.err == nil {
			scenes[job.scene].ImagePaths = append(scenes[job.scene].ImagePaths, job.path)
		}
	}

	for i, sc := range scenes {
		if len(sc.ImagePaths) == 0 {
			return domain.TaskUpdate{}, fmt.Errorf("scene %d: %w: no image could be fetched", i, domain.ErrMissingMedia)
		}
	}

	return domain.TaskUpdate{Script: &domain.Script{Scenes: scenes}}, nil
}
