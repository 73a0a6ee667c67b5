package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"shorts_factory/internal/domain"
)

const timeLayout = "2006-01-02 15:04"

func taskRows(tasks []domain.Task) [][]string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			shortenID(t.ID),
			string(t.Status),
			t.Slot,
			t.Niche,
			truncate(t.Title, 48),
			t.CreatedAt.Local().Format(timeLayout),
			deref(t.YouTubeID),
		})
	}
	return rows
}

func uploadRows(entries []domain.RunLogEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.CompletedAt.Local().Format(timeLayout),
			e.Slot,
			truncate(e.Title, 48),
			e.YouTubeID,
			shortenID(e.TaskID),
		})
	}
	return rows
}

func stageRows(results []domain.StageResult, colorize bool) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		detail := ""
		switch {
		case r.Err != nil:
			detail = r.Err.Error()
		case len(r.Report.Reasons) > 0:
			detail = strings.Join(r.Report.Reasons, "; ")
		}
		rows = append(rows, []string{
			r.Stage,
			outcomeLabel(r.Outcome, colorize),
			shortenID(r.TaskID),
			strconv.Itoa(r.Report.Skipped),
			strconv.Itoa(r.Report.Repaired),
			truncate(detail, 60),
		})
	}
	return rows
}

func outcomeLabel(outcome domain.StageOutcome, colorize bool) string {
	if !colorize {
		return string(outcome)
	}
	var c *color.Color
	switch outcome {
	case domain.OutcomeAdvanced:
		c = color.New(color.FgGreen)
	case domain.OutcomeFailed:
		c = color.New(color.FgRed, color.Bold)
	case domain.OutcomeConflict:
		c = color.New(color.FgYellow)
	default:
		return string(outcome)
	}
	c.EnableColor()
	return c.Sprint(string(outcome))
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

var stageHeaders = []string{"Stage", "Outcome", "Task", "Skipped", "Repaired", "Detail"}

var stageAligns = []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}

func formatRunSummary(report *domain.RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Slot: %s\n", report.Slot)
	if report.AdmittedID != "" {
		fmt.Fprintf(&b, "Admitted: %s\n", report.AdmittedID)
	} else {
		b.WriteString("Admitted: none\n")
	}
	if report.Uploaded != nil {
		fmt.Fprintf(&b, "Uploaded: %s (%s)\n", report.Uploaded.Title, report.Uploaded.YouTubeID)
	}
	fmt.Fprintf(&b, "Advanced: %d  Failed: %d  Took: %s\n",
		report.Advanced(), report.Failed(), report.Duration.Round(time.Second))
	return b.String()
}

// parseStatuses accepts a comma-separated status list.
func parseStatuses(raw []string) ([]domain.Status, error) {
	var out []domain.Status
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			s, err := domain.ParseStatus(part)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// loadScript reads a script document, either {"scenes": [...]} or a bare
// scene array.
func loadScript(path string) (*domain.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script file: %w", err)
	}

	var script domain.Script
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal(data, &script.Scenes)
	} else {
		err = json.Unmarshal(data, &script)
	}
	if err != nil {
		return nil, fmt.Errorf("parse script file: %w", err)
	}
	if script.Empty() {
		return nil, fmt.Errorf("script file %s has no scenes", path)
	}
	return &script, nil
}

func shortenID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
