package captions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"shorts_factory/internal/cmdrun"
	"shorts_factory/internal/config"
	"shorts_factory/internal/domain"
)

const (
	DefaultWhisperCommand = "whisper"
	DefaultModel          = "base"
)

// Whisper transcribes narration with the openai-whisper CLI and returns
// word-level timestamps.
type Whisper struct {
	command  string
	model    string
	language string
	run      cmdrun.Runner
	logger   *slog.Logger
}

type Option func(*Whisper)

// WithRunner replaces the process runner (for testing).
func WithRunner(run cmdrun.Runner) Option {
	return func(w *Whisper) { w.run = run }
}

func NewWhisper(cfg config.CaptionsConfig, logger *slog.Logger, opts ...Option) *Whisper {
	w := &Whisper{
		command:  cfg.WhisperCommand,
		model:    cfg.Model,
		language: cfg.Language,
		run:      cmdrun.Exec,
		logger:   logger.With("component", "captions"),
	}
	if w.command == "" {
		w.command = DefaultWhisperCommand
	}
	if w.model == "" {
		w.model = DefaultModel
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// whisperOutput is the subset of whisper's JSON output we read.
type whisperOutput struct {
	Segments []struct {
		Words []struct {
			Word  string  `json:"word"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		} `json:"words"`
	} `json:"segments"`
}

func (w *Whisper) Transcribe(ctx context.Context, mediaPath string) ([]domain.CaptionWord, error) {
	outDir, err := os.MkdirTemp(filepath.Dir(mediaPath), ".whisper-")
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{
		mediaPath,
		"--model", w.model,
		"--word_timestamps", "True",
		"--output_format", "json",
		"--output_dir", outDir,
	}
	if w.language != "" {
		args = append(args, "--language", w.language)
	}

	if _, err := w.run(ctx, w.command, args...); err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	data, err := os.ReadFile(filepath.Join(outDir, base+".json"))
	if err != nil {
		return nil, fmt.Errorf("transcribe: read output: %w", err)
	}

	words, err := parseWords(data)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	w.logger.Debug("transcribed narration", "path", mediaPath, "words", len(words))
	return words, nil
}

func parseWords(data []byte) ([]domain.CaptionWord, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode whisper output: %w", err)
	}

	var words []domain.CaptionWord
	for _, seg := range out.Segments {
		for _, wd := range seg.Words {
			text := strings.TrimSpace(wd.Word)
			if text == "" || wd.End <= wd.Start {
				continue
			}
			words = append(words, domain.CaptionWord{Text: text, Start: wd.Start, End: wd.End})
		}
	}
	return words, nil
}
