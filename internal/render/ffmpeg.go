// Package render composes task assets into a vertical video with ffmpeg.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"shorts_factory/internal/captions"
	"shorts_factory/internal/cmdrun"
	"shorts_factory/internal/config"
	"shorts_factory/internal/domain"
)

const (
	DefaultFFmpeg        = "ffmpeg"
	DefaultWidth         = 1080
	DefaultHeight        = 1920
	DefaultFPS           = 30
	DefaultZoomPerSecond = 0.04
	DefaultPreset        = "veryfast"
	maxZoom              = 1.5
)

// FFmpeg renders each image as a Ken Burns clip, lays every scene over its
// narration and concatenates the scenes.
type FFmpeg struct {
	command string
	width   int
	height  int
	fps     int
	zoom    float64
	preset  string
	style   captions.Style
	run     cmdrun.Runner
	logger  *slog.Logger
}

type Option func(*FFmpeg)

// WithRunner replaces the process runner (for testing).
func WithRunner(run cmdrun.Runner) Option {
	return func(f *FFmpeg) { f.run = run }
}

func New(cfg config.RenderConfig, style captions.Style, logger *slog.Logger, opts ...Option) *FFmpeg {
	f := &FFmpeg{
		command: cfg.FFmpegCommand,
		width:   cfg.Width,
		height:  cfg.Height,
		fps:     cfg.FPS,
		zoom:    cfg.ZoomPerSecond,
		preset:  cfg.Preset,
		style:   style,
		run:     cmdrun.Exec,
		logger:  logger.With("component", "render"),
	}
	if f.command == "" {
		f.command = DefaultFFmpeg
	}
	if f.width <= 0 {
		f.width = DefaultWidth
	}
	if f.height <= 0 {
		f.height = DefaultHeight
	}
	if f.fps <= 0 {
		f.fps = DefaultFPS
	}
	if f.zoom <= 0 {
		f.zoom = DefaultZoomPerSecond
	}
	if f.preset == "" {
		f.preset = DefaultPreset
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FFmpeg) Compose(ctx context.Context, scenes []domain.Scene, outPath string) error {
	if len(scenes) == 0 {
		return fmt.Errorf("compose: no scenes")
	}

	work, err := os.MkdirTemp(filepath.Dir(outPath), ".render-")
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}
	defer os.RemoveAll(work)

	sceneClips := make([]string, 0, len(scenes))
	for i, sc := range scenes {
		if len(sc.ImagePaths) == 0 {
			return fmt.Errorf("compose: scene %d has no images", i)
		}

		seconds := sc.ImageSeconds
		if seconds <= 0 {
			seconds = sc.AudioSeconds / float64(len(sc.ImagePaths))
		}

		imageClips := make([]string, 0, len(sc.ImagePaths))
		for j, img := range sc.ImagePaths {
			clip := filepath.Join(work, fmt.Sprintf("scene_%d_clip_%d.mp4", i, j))
			if _, err := f.run(ctx, f.command, f.kenBurnsArgs(img, seconds, clip)...); err != nil {
				return fmt.Errorf("compose: scene %d image %d: %w", i, j, err)
			}
			imageClips = append(imageClips, clip)
		}

		list := filepath.Join(work, fmt.Sprintf("scene_%d.txt", i))
		if err := writeConcatList(list, imageClips); err != nil {
			return fmt.Errorf("compose: %w", err)
		}

		sceneClip := filepath.Join(work, fmt.Sprintf("scene_%d.mp4", i))
		if _, err := f.run(ctx, f.command, f.sceneArgs(list, sc.AudioPath, sceneClip)...); err != nil {
			return fmt.Errorf("compose: scene %d: %w", i, err)
		}
		sceneClips = append(sceneClips, sceneClip)
	}

	list := filepath.Join(work, "scenes.txt")
	if err := writeConcatList(list, sceneClips); err != nil {
		return fmt.Errorf("compose: %w", err)
	}
	if _, err := f.run(ctx, f.command,
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "concat", "-safe", "0",
		"-i", list,
		"-c", "copy",
		"-movflags", "+faststart",
		outPath,
	); err != nil {
		return fmt.Errorf("compose: concat scenes: %w", err)
	}

	f.logger.Info("video composed", "path", outPath, "scenes", len(scenes))
	return nil
}

func (f *FFmpeg) BurnCaptions(ctx context.Context, videoPath string, words []domain.CaptionWord, outPath string) error {
	subs := filepath.Join(filepath.Dir(outPath), "captions.ass")

	file, err := os.Create(subs)
	if err != nil {
		return fmt.Errorf("burn captions: %w", err)
	}
	if err := captions.WriteASS(file, words, f.style); err != nil {
		file.Close()
		return fmt.Errorf("burn captions: write subtitles: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("burn captions: %w", err)
	}

	if _, err := f.run(ctx, f.command,
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vf", "ass="+escapeFilterPath(subs),
		"-c:v", "libx264", "-preset", f.preset, "-crf", "20",
		"-c:a", "copy",
		"-movflags", "+faststart",
		outPath,
	); err != nil {
		return fmt.Errorf("burn captions: %w", err)
	}
	return nil
}

// kenBurnsArgs renders a single still as a slow centered zoom of the given
// length.
func (f *FFmpeg) kenBurnsArgs(image string, seconds float64, out string) []string {
	frames := int(seconds*float64(f.fps) + 0.5)
	if frames < 1 {
		frames = 1
	}
	step := f.zoom / float64(f.fps)

	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,"+
			"zoompan=z='min(zoom+%s,%s)':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=%d:s=%dx%d:fps=%d,"+
			"format=yuv420p",
		f.width*2, f.height*2, f.width*2, f.height*2,
		formatFloat(step), formatFloat(maxZoom), frames, f.width, f.height, f.fps,
	)

	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", image,
		"-vf", filter,
		"-frames:v", strconv.Itoa(frames),
		"-c:v", "libx264", "-preset", f.preset,
		"-an",
		out,
	}
}

func (f *FFmpeg) sceneArgs(list, audio, out string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "concat", "-safe", "0",
		"-i", list,
		"-i", audio,
		"-map", "0:v:0", "-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac", "-b:a", "192k", "-ar", "44100",
		"-shortest",
		out,
	}
}

func writeConcatList(path string, clips []string) error {
	var b strings.Builder
	for _, c := range clips {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(c, "'", `'\''`))
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func escapeFilterPath(p string) string {
	r := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`, `,`, `\,`)
	return r.Replace(p)
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
