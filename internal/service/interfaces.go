package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"shorts_factory/internal/domain"
)

type TaskStore interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ClaimNext(ctx context.Context, status domain.Status) (*domain.Task, error)
	Advance(ctx context.Context, id string, expected, next domain.Status, update domain.TaskUpdate) error
	Repair(ctx context.Context, id string, r domain.Repair) (*domain.Task, []domain.Field, error)
	List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
}

type RunLogStore interface {
	Append(ctx context.Context, entry *domain.RunLogEntry) error
	Recent(ctx context.Context, limit int) ([]domain.RunLogEntry, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type DuplicateGate interface {
	Check(ctx context.Context, title string) (domain.DuplicateVerdict, error)
}

type Source interface {
	ID() string
	Name() string
	FetchStories(ctx context.Context, niche domain.Niche, limit int) ([]domain.Story, error)
}

type Publisher interface {
	Publish(ctx context.Context, event domain.TaskEvent) error
	Close() error
}

type ScriptWriter interface {
	WriteScript(ctx context.Context, req domain.ScriptRequest) (*domain.ScriptDraft, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

type AudioProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

type ImageFetcher interface {
	Fetch(ctx context.Context, query domain.ImageQuery, outPath string) error
}

type Renderer interface {
	Compose(ctx context.Context, scenes []domain.Scene, outPath string) error
	BurnCaptions(ctx context.Context, videoPath string, words []domain.CaptionWord, outPath string) error
}

type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) ([]domain.CaptionWord, error)
}

type Archiver interface {
	Archive(ctx context.Context, taskID string, files []string) (string, error)
}

type Uploader interface {
	Upload(ctx context.Context, req domain.UploadRequest) (*domain.UploadResult, error)
}
