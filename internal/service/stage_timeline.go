package service

import (
	"context"
	"fmt"
	"os"

	"shorts_factory/internal/domain"
)

// planTimeline checks that every asset is on disk and spreads each scene's
// narration evenly over its images.
func (p *Pipeline) planTimeline(_ context.Context, task *domain.Task, report *domain.StageReport) (domain.TaskUpdate, error) {
	scenes := cloneScenes(task.Script.Scenes)

	for i := range scenes {
		sc := &scenes[i]
		if !fileExists(sc.AudioPath) {
			return domain.TaskUpdate{}, fmt.Errorf("scene %d: %w: %s", i, domain.ErrMissingMedia, sc.AudioPath)
		}

		var kept []string
		for _, img := range sc.ImagePaths {
			if fileExists(img) {
				kept = append(kept, img)
				continue
			}
			report.Skip(fmt.Sprintf("scene %d: image %s is missing", i, img))
		}
		if len(kept) == 0 {
			return domain.TaskUpdate{}, fmt.Errorf("scene %d: %w: no images on disk", i, domain.ErrMissingMedia)
		}

		sc.ImagePaths = kept
		sc.ImageSeconds = domain.ImageDurations(sc.AudioSeconds, len(kept))[0]
	}

	return domain.TaskUpdate{Script: &domain.Script{Scenes: scenes}}, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
