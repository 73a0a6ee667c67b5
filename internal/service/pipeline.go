package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shorts_factory/internal/config"
	"shorts_factory/internal/domain"
)

// Dependencies bundles the stores and collaborators a Pipeline drives.
// Publisher and Archiver are optional.
type Dependencies struct {
	Tasks     TaskStore
	RunLog    RunLogStore
	TxManager TransactionManager
	Gate      DuplicateGate
	Sources   []Source
	Publisher Publisher

	Writer      ScriptWriter
	Synthesizer Synthesizer
	Prober      AudioProber
	Images      ImageFetcher
	Renderer    Renderer
	Transcriber Transcriber
	Archiver    Archiver
	Uploader    Uploader
}

type Pipeline struct {
	tasks     TaskStore
	runLog    RunLogStore
	txManager TransactionManager
	gate      DuplicateGate
	sources   []Source
	publisher Publisher

	writer      ScriptWriter
	synth       Synthesizer
	prober      AudioProber
	images      ImageFetcher
	renderer    Renderer
	transcriber Transcriber
	archiver    Archiver
	uploader    Uploader

	folders *FolderLayout
	slots   map[string]domain.Slot
	niches  map[string]domain.Niche
	stages  []stage
	logger  *slog.Logger
	config  config.PipelineConfig
	now     func() time.Time
}

type Option func(*Pipeline)

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(
	deps Dependencies,
	slots []domain.Slot,
	niches map[string]domain.Niche,
	cfg config.PipelineConfig,
	logger *slog.Logger,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		tasks:       deps.Tasks,
		runLog:      deps.RunLog,
		txManager:   deps.TxManager,
		gate:        deps.Gate,
		sources:     deps.Sources,
		publisher:   deps.Publisher,
		writer:      deps.Writer,
		synth:       deps.Synthesizer,
		prober:      deps.Prober,
		images:      deps.Images,
		renderer:    deps.Renderer,
		transcriber: deps.Transcriber,
		archiver:    deps.Archiver,
		uploader:    deps.Uploader,
		folders:     NewFolderLayout(cfg.VideosDir),
		slots:       make(map[string]domain.Slot, len(slots)),
		niches:      niches,
		logger:      logger.With("component", "pipeline"),
		config:      cfg,
		now:         time.Now,
	}
	for _, s := range slots {
		p.slots[s.Name] = s
	}
	for _, opt := range opts {
		opt(p)
	}
	p.stages = p.buildStages()
	return p
}

// stage is one fixed step of the pipeline. run computes the output fields
// for a claimed task; it must not write the task itself.
type stage struct {
	name string
	from domain.Status
	to   domain.Status
	run  func(ctx context.Context, task *domain.Task, report *domain.StageReport) (domain.TaskUpdate, error)
}

func (p *Pipeline) buildStages() []stage {
	return []stage{
		{name: "script", from: domain.StatusPending, to: domain.StatusScripted, run: p.writeScript},
		{name: "narration", from: domain.StatusScripted, to: domain.StatusVoiced, run: p.narrate},
		{name: "visuals", from: domain.StatusVoiced, to: domain.StatusVisualsReady, run: p.sourceVisuals},
		{name: "timeline", from: domain.StatusVisualsReady, to: domain.StatusReadyToAssemble, run: p.planTimeline},
		{name: "assembly", from: domain.StatusReadyToAssemble, to: domain.StatusReadyToUpload, run: p.assemble},
		{name: "packaging", from: domain.StatusReadyToUpload, to: domain.StatusCompletedPackaged, run: p.pack},
		{name: "publish", from: domain.StatusCompletedPackaged, to: domain.StatusUploaded, run: p.publish},
	}
}

// StageNames lists the stages in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, st := range p.stages {
		names[i] = st.name
	}
	return names
}

// Run is one scheduled invocation: admit at most one new story for slot,
// then give every stage one chance to advance its oldest task.
func (p *Pipeline) Run(ctx context.Context, slot string) (*domain.RunReport, error) {
	if _, ok := p.slots[slot]; !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSlot, slot)
	}

	start := p.now()
	logger := p.logger.With("slot", slot)
	logger.Info("pipeline run started")

	report := &domain.RunReport{Slot: slot}

	id, admitted, err := p.Scout(ctx, slot)
	switch {
	case err != nil:
		logger.Error("scouting failed", "error", err)
	case admitted:
		report.AdmittedID = id
	default:
		logger.Info("no new story admitted")
	}

	for _, st := range p.stages {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res, task := p.runStage(ctx, st)
		report.Stages = append(report.Stages, res)

		if res.Outcome == domain.OutcomeAdvanced && st.to == domain.StatusUploaded {
			report.Uploaded = p.recordUpload(ctx, slot, task)
		}
	}

	report.Duration = p.now().Sub(start)
	logger.Info("pipeline run finished",
		"admitted", report.AdmittedID != "",
		"advanced", report.Advanced(),
		"failed", report.Failed(),
		"duration", report.Duration,
	)

	return report, nil
}

// RunStage runs a single stage by name outside of a full run.
func (p *Pipeline) RunStage(ctx context.Context, name string) (domain.StageResult, error) {
	for _, st := range p.stages {
		if st.name == name {
			res, _ := p.runStage(ctx, st)
			return res, nil
		}
	}
	return domain.StageResult{}, fmt.Errorf("unknown stage %q", name)
}

func (p *Pipeline) runStage(ctx context.Context, st stage) (domain.StageResult, *domain.Task) {
	logger := p.logger.With("stage", st.name)
	res := domain.StageResult{
		Stage:   st.name,
		From:    st.from,
		To:      st.to,
		Outcome: domain.OutcomeIdle,
	}

	task, err := p.tasks.ClaimNext(ctx, st.from)
	if err != nil {
		res.Outcome = domain.OutcomeFailed
		res.Err = fmt.Errorf("claim %s task: %w", st.from, err)
		logger.Error("claim failed", "error", err)
		return res, nil
	}
	if task == nil {
		logger.Debug("no task waiting", "status", st.from)
		return res, nil
	}

	res.TaskID = task.ID
	logger = logger.With("task_id", task.ID)
	logger.Info("stage started", "title", task.Title)

	update, err := st.run(ctx, task, &res.Report)
	if err == nil {
		err = p.tasks.Advance(ctx, task.ID, st.from, st.to, update)
	}

	if res.Report.Skipped > 0 || res.Report.Repaired > 0 {
		logger.Warn("stage finished with partial failures",
			"skipped", res.Report.Skipped,
			"repaired", res.Report.Repaired,
			"reasons", res.Report.Reasons,
		)
	}

	switch {
	case err == nil:
		res.Outcome = domain.OutcomeAdvanced
		task.Apply(update)
		task.Status = st.to
		logger.Info("stage completed", "status", st.to)
		p.emit(ctx, eventFor(task, st))
	case errors.Is(err, domain.ErrStatusConflict):
		res.Outcome = domain.OutcomeConflict
		logger.Info("task already moved on, nothing to do", "error", err)
	case errors.Is(err, domain.ErrIllegalTransition):
		res.Outcome = domain.OutcomeFailed
		res.Err = err
		logger.Error("illegal transition", "error", err)
	default:
		res.Outcome = domain.OutcomeFailed
		res.Err = err
		logger.Error("stage failed, task left in place", "status", st.from, "error", err)
	}

	return res, task
}

func eventFor(task *domain.Task, st stage) domain.TaskEvent {
	ev := domain.TaskEvent{
		Kind:   domain.EventAdvanced,
		TaskID: task.ID,
		Title:  task.Title,
		Slot:   task.Slot,
		From:   st.from,
		To:     st.to,
	}
	if st.to == domain.StatusUploaded && task.YouTubeID != nil {
		ev.Kind = domain.EventUploaded
		ev.YouTubeID = *task.YouTubeID
	}
	return ev
}

// recordUpload appends the run log entry for a confirmed upload.
func (p *Pipeline) recordUpload(ctx context.Context, slot string, task *domain.Task) *domain.RunLogEntry {
	entry := &domain.RunLogEntry{
		TaskID:      task.ID,
		Title:       task.UploadTitle(),
		Slot:        slot,
		CompletedAt: p.now(),
	}
	if task.YouTubeID != nil {
		entry.YouTubeID = *task.YouTubeID
	}
	if task.UploadedAt != nil {
		entry.CompletedAt = *task.UploadedAt
	}

	if err := p.runLog.Append(ctx, entry); err != nil {
		p.logger.Error("append run log failed",
			"task_id", task.ID,
			"youtube_id", entry.YouTubeID,
			"error", err,
		)
	}
	return entry
}

func (p *Pipeline) emit(ctx context.Context, ev domain.TaskEvent) {
	if p.publisher == nil {
		return
	}
	ev.Timestamp = p.now().UTC()
	if err := p.publisher.Publish(ctx, ev); err != nil {
		p.logger.Warn("publish task event failed",
			"kind", ev.Kind,
			"task_id", ev.TaskID,
			"error", err,
		)
	}
}

func (p *Pipeline) concurrency() int {
	if p.config.Concurrency < 1 {
		return 1
	}
	return p.config.Concurrency
}
