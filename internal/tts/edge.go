package tts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"shorts_factory/internal/cmdrun"
	"shorts_factory/internal/config"
)

const (
	DefaultCommand = "edge-tts"
	DefaultVoice   = "en-US-ChristopherNeural"
	DefaultFFprobe = "ffprobe"
)

type Option func(*options)

type options struct {
	run cmdrun.Runner
}

// WithRunner replaces the process runner (for testing).
func WithRunner(run cmdrun.Runner) Option {
	return func(o *options) { o.run = run }
}

func buildOptions(opts []Option) options {
	o := options{run: cmdrun.Exec}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// EdgeTTS narrates text with the edge-tts command line client.
type EdgeTTS struct {
	command string
	voice   string
	rate    string
	run     cmdrun.Runner
	logger  *slog.Logger
}

func NewEdgeTTS(cfg config.TTSConfig, logger *slog.Logger, opts ...Option) *EdgeTTS {
	o := buildOptions(opts)
	e := &EdgeTTS{
		command: cfg.Command,
		voice:   cfg.Voice,
		rate:    cfg.Rate,
		run:     o.run,
		logger:  logger.With("component", "tts"),
	}
	if e.command == "" {
		e.command = DefaultCommand
	}
	if e.voice == "" {
		e.voice = DefaultVoice
	}
	return e
}

func (e *EdgeTTS) Synthesize(ctx context.Context, text, outPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("synthesize: empty text")
	}

	args := []string{"--voice", e.voice}
	if e.rate != "" {
		args = append(args, "--rate="+e.rate)
	}
	args = append(args, "--text", text, "--write-media", outPath)

	if _, err := e.run(ctx, e.command, args...); err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("synthesize: %s is empty", outPath)
	}

	e.logger.Debug("narration written", "path", outPath, "bytes", info.Size())
	return nil
}

// FFprobe reads media durations with ffprobe.
type FFprobe struct {
	command string
	run     cmdrun.Runner
}

func NewFFprobe(command string, opts ...Option) *FFprobe {
	o := buildOptions(opts)
	if command == "" {
		command = DefaultFFprobe
	}
	return &FFprobe{command: command, run: o.run}
}

// Duration returns the container duration of path in seconds.
func (f *FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	out, err := f.run(ctx, f.command,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("probe duration: %w", err)
	}
	return parseDuration(out)
}

func parseDuration(out []byte) (float64, error) {
	raw := strings.TrimSpace(string(out))
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("probe duration: no duration reported")
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("probe duration: parse %q: %w", raw, err)
	}
	return seconds, nil
}
