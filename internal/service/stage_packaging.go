package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shorts_factory/internal/domain"
)

const (
	metadataFile = "metadata.txt"
	manifestFile = "package.json"
)

type packageManifest struct {
	TaskID          string          `json:"task_id"`
	Title           string          `json:"title"`
	UploadTitle     string          `json:"upload_title"`
	Niche           string          `json:"niche"`
	Slot            string          `json:"slot"`
	Source          string          `json:"source,omitempty"`
	SourceURL       string          `json:"source_url,omitempty"`
	Video           string          `json:"video"`
	Metadata        domain.Metadata `json:"metadata"`
	Scenes          int             `json:"scenes"`
	DurationSeconds float64         `json:"duration_seconds"`
	CreatedAt       time.Time       `json:"created_at"`
	PackagedAt      time.Time       `json:"packaged_at"`
}

// pack writes the human-readable metadata and the JSON manifest next to the
// final video and, when an archiver is configured, mirrors them off-host.
// A failed mirror is reported but does not hold the task back.
func (p *Pipeline) pack(ctx context.Context, task *domain.Task, report *domain.StageReport) (domain.TaskUpdate, error) {
	video := ""
	if task.FinalVideoPath != nil {
		video = *task.FinalVideoPath
	}
	if !fileExists(video) {
		return domain.TaskUpdate{}, fmt.Errorf("%w: final video %q", domain.ErrMissingMedia, video)
	}

	metaPath := filepath.Join(task.FolderPath, metadataFile)
	if err := os.WriteFile(metaPath, []byte(metadataText(task)), 0o644); err != nil {
		return domain.TaskUpdate{}, fmt.Errorf("write metadata: %w", err)
	}

	manifest := packageManifest{
		TaskID:          task.ID,
		Title:           task.Title,
		UploadTitle:     task.UploadTitle(),
		Niche:           task.Niche,
		Slot:            task.Slot,
		Source:          task.Source,
		SourceURL:       task.SourceURL,
		Video:           video,
		Metadata:        task.Metadata,
		Scenes:          len(task.Script.Scenes),
		DurationSeconds: task.Script.TotalSeconds(),
		CreatedAt:       task.CreatedAt,
		PackagedAt:      p.now().UTC(),
	}
	body, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return domain.TaskUpdate{}, fmt.Errorf("marshal manifest: %w", err)
	}

	manifestPath := filepath.Join(task.FolderPath, manifestFile)
	if err := os.WriteFile(manifestPath, body, 0o644); err != nil {
		return domain.TaskUpdate{}, fmt.Errorf("write manifest: %w", err)
	}

	update := domain.TaskUpdate{PackagePath: &manifestPath}

	if p.archiver != nil {
		url, err := p.archiver.Archive(ctx, task.ID, []string{video, manifestPath, metaPath})
		if err != nil {
			report.Skip(fmt.Sprintf("archive: %v", err))
		} else {
			update.ArchiveURL = &url
		}
	}

	return update, nil
}

func metadataText(task *domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TITLE: %s\n\n", task.UploadTitle())
	fmt.Fprintf(&b, "DESCRIPTION:\n%s\n\n", task.Metadata.Description)
	if task.SourceURL != "" {
		fmt.Fprintf(&b, "SOURCE: %s\n\n", task.SourceURL)
	}
	fmt.Fprintf(&b, "HASHTAGS: %s\n\n", task.Metadata.Hashtags)
	fmt.Fprintf(&b, "TAGS: %s\n", strings.Join(task.Metadata.Tags, ", "))
	return b.String()
}
