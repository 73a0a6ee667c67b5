package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"shorts_factory/internal/domain"
)

// Runner defines the interface for one slot run.
type Runner interface {
	Run(ctx context.Context, slot string) (*domain.RunReport, error)
}

// Trigger fires a slot run every day at Hour:Minute local time.
type Trigger struct {
	Slot   string
	Hour   int
	Minute int
}

func (t Trigger) String() string {
	return fmt.Sprintf("%02d:%02d %s", t.Hour, t.Minute, t.Slot)
}

// latest returns the most recent scheduled instant at or before now.
func (t Trigger) latest(now time.Time) time.Time {
	at := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	if at.After(now) {
		at = time.Date(now.Year(), now.Month(), now.Day()-1, t.Hour, t.Minute, 0, 0, now.Location())
	}
	return at
}

// NewTriggers parses the HH:MM of every slot.
func NewTriggers(slots []domain.Slot) ([]Trigger, error) {
	triggers := make([]Trigger, 0, len(slots))
	for _, s := range slots {
		at, err := time.Parse("15:04", s.At)
		if err != nil {
			return nil, fmt.Errorf("slot %q: parse time %q: %w", s.Name, s.At, err)
		}
		triggers = append(triggers, Trigger{Slot: s.Name, Hour: at.Hour(), Minute: at.Minute()})
	}
	return triggers, nil
}

// Due returns the triggers whose most recent instant lies in (last, now],
// oldest first. Each trigger appears at most once however long the gap.
func Due(triggers []Trigger, last, now time.Time) []Trigger {
	type pending struct {
		trigger Trigger
		at      time.Time
	}

	var due []pending
	for _, t := range triggers {
		at := t.latest(now)
		if at.After(last) && !at.After(now) {
			due = append(due, pending{trigger: t, at: at})
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })

	out := make([]Trigger, len(due))
	for i, d := range due {
		out[i] = d.trigger
	}
	return out
}

type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

type Scheduler struct {
	runner     Runner
	triggers   []Trigger
	interval   time.Duration
	runTimeout time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

func NewScheduler(runner Runner, triggers []Trigger, interval, runTimeout time.Duration, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner:     runner,
		triggers:   triggers,
		interval:   interval,
		runTimeout: runTimeout,
		now:        time.Now,
		logger:     logger.With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval <= 0 {
		s.interval = time.Minute
	}
	if s.runTimeout <= 0 {
		s.runTimeout = 30 * time.Minute
	}
	return s
}

// Start polls until ctx is cancelled. Instants that passed before Start are
// not run.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval, "triggers", len(s.triggers))

	last := s.now()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			now := s.now()
			s.tick(ctx, last, now)
			last = now
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, last, now time.Time) {
	for _, t := range Due(s.triggers, last, now) {
		if ctx.Err() != nil {
			return
		}
		s.runSlot(ctx, t.Slot)
	}
}

func (s *Scheduler) runSlot(ctx context.Context, slot string) {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	logger := s.logger.With("slot", slot)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("run panicked", "panic", r)
		}
	}()

	logger.Info("slot triggered")
	report, err := s.runner.Run(runCtx, slot)
	if err != nil {
		logger.Error("run failed", "error", err)
		return
	}

	logger.Info("run finished",
		"advanced", report.Advanced(),
		"failed", report.Failed(),
		"uploaded", report.Uploaded != nil,
		"duration", report.Duration,
	)
}
