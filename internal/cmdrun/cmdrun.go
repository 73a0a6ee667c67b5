// Package cmdrun runs the external media tools (ffmpeg, ffprobe, whisper,
// edge-tts) the pipeline shells out to.
package cmdrun

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const maxStderr = 2048

// Runner executes name with args and returns its stdout. Collaborators hold
// a Runner so tests can replace the process with a fake.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Exec is the default Runner. A non-zero exit is reported together with the
// tail of the tool's stderr.
func Exec(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return out, fmt.Errorf("%s: %w", filepath.Base(name), ctx.Err())
		}
		return out, fmt.Errorf("%s: %w: %s", filepath.Base(name), err, tail(stderr.String()))
	}
	return out, nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = "..." + s[len(s)-maxStderr:]
	}
	return s
}
