package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"shorts_factory/internal/domain"
	"shorts_factory/internal/runlock"
	"shorts_factory/internal/scheduler"
	"shorts_factory/internal/youtube"
)

// withLock holds the host-wide run lock for the duration of fn.
func (c *commandContext) withLock(fn func() error) error {
	cfg, logger, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock, err := runlock.Acquire(cfg.Scheduler.LockFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release lock", "path", lock.Path(), "error", err)
		}
	}()
	return fn()
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the slot scheduler until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			triggers, err := scheduler.NewTriggers(cfg.DomainSlots())
			if err != nil {
				return err
			}

			runCtx, cancel := signalContext(cmd.Context())
			defer cancel()

			return ctx.withLock(func() error {
				return ctx.withApp(runCtx, func(a *app) error {
					sched := scheduler.NewScheduler(a.pipeline, triggers,
						cfg.Scheduler.PollInterval, cfg.Scheduler.RunTimeout, logger)

					for _, t := range triggers {
						logger.Info("slot scheduled", "trigger", t.String())
					}

					err := sched.Start(runCtx)
					if errors.Is(err, context.Canceled) {
						logger.Info("received shutdown signal")
						return nil
					}
					return err
				})
			})
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <slot>",
		Short: "Run one slot now: scout a story and advance every stage once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			runCtx, cancel := signalContext(cmd.Context())
			defer cancel()
			runCtx, cancelTimeout := context.WithTimeout(runCtx, cfg.Scheduler.RunTimeout)
			defer cancelTimeout()

			return ctx.withLock(func() error {
				return ctx.withApp(runCtx, func(a *app) error {
					report, err := a.pipeline.Run(runCtx, args[0])
					if report != nil {
						out := cmd.OutOrStdout()
						fmt.Fprint(out, formatRunSummary(report))
						fmt.Fprint(out, renderTable(stageHeaders, stageRows(report.Stages, shouldColorize(out)), stageAligns))
					}
					return err
				})
			})
		},
	}
}

func newStageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stage <name>",
		Short: "Run a single stage once",
		Long:  "Run a single stage once. Stages: script, narration, visuals, timeline, assembly, packaging, publish.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := signalContext(cmd.Context())
			defer cancel()

			return ctx.withLock(func() error {
				return ctx.withApp(runCtx, func(a *app) error {
					res, err := a.pipeline.RunStage(runCtx, args[0])
					if err != nil {
						return fmt.Errorf("%w (known: %s)", err, strings.Join(a.pipeline.StageNames(), ", "))
					}
					out := cmd.OutOrStdout()
					fmt.Fprint(out, renderTable(stageHeaders, stageRows([]domain.StageResult{res}, shouldColorize(out)), stageAligns))
					if res.Outcome == domain.OutcomeFailed {
						return res.Err
					}
					return nil
				})
			})
		},
	}
}

func newAdmitCommand(ctx *commandContext) *cobra.Command {
	var req domain.AdmissionRequest
	var contentFile string

	cmd := &cobra.Command{
		Use:   "admit",
		Short: "Admit a story by hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if contentFile != "" {
				data, err := os.ReadFile(contentFile)
				if err != nil {
					return fmt.Errorf("read content file: %w", err)
				}
				req.Content = string(data)
			}
			if req.Source == "" {
				req.Source = "manual"
			}

			return ctx.withApp(cmd.Context(), func(a *app) error {
				id, admitted, err := a.pipeline.CreateTask(cmd.Context(), req)
				if err != nil {
					return err
				}
				if !admitted {
					fmt.Fprintln(cmd.OutOrStdout(), "Skipped: duplicate title")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Admitted task %s\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Story title")
	cmd.Flags().StringVar(&req.Content, "content", "", "Story text")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "Read story text from a file")
	cmd.Flags().StringVar(&req.Niche, "niche", "", "Niche (defaults to the slot's niche)")
	cmd.Flags().StringVar(&req.Slot, "slot", "", "Slot (defaults to manual)")
	cmd.Flags().StringVar(&req.Source, "source", "", "Source name")
	cmd.Flags().StringVar(&req.SourceURL, "url", "", "Source URL")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newRepairCommand(ctx *commandContext) *cobra.Command {
	var (
		status     string
		scriptFile string
		reason     string
	)

	cmd := &cobra.Command{
		Use:   "repair <task-id>",
		Short: "Force a task back to an earlier status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := domain.ParseStatus(status)
			if err != nil {
				return err
			}
			r := domain.Repair{Status: s, Reason: reason}
			if scriptFile != "" {
				if r.Script, err = loadScript(scriptFile); err != nil {
					return err
				}
			}

			return ctx.withLock(func() error {
				return ctx.withApp(cmd.Context(), func(a *app) error {
					task, err := a.pipeline.Repair(cmd.Context(), args[0], r)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", task.ID, task.Status)
					return nil
				})
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Target status")
	cmd.Flags().StringVar(&scriptFile, "script", "", "Replacement script JSON")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the task was repaired")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func newTasksCommand(ctx *commandContext) *cobra.Command {
	var (
		statuses []string
		filter   domain.TaskFilter
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseStatuses(statuses)
			if err != nil {
				return err
			}
			filter.Statuses = parsed

			return ctx.withApp(cmd.Context(), func(a *app) error {
				tasks, err := a.pipeline.Tasks(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if len(tasks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Status", "Slot", "Niche", "Title", "Created", "YouTube"},
					taskRows(tasks),
					nil,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (repeatable or comma-separated)")
	cmd.Flags().StringVar(&filter.Slot, "slot", "", "Filter by slot")
	cmd.Flags().IntVar(&filter.Limit, "limit", 50, "Maximum rows")

	return cmd
}

func newUploadsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "uploads",
		Short: "Show the most recent uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				entries, err := a.pipeline.RecentUploads(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No uploads yet")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"Completed", "Slot", "Title", "YouTube", "Task"},
					uploadRows(entries),
					nil,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows")
	return cmd
}

func newYouTubeAuthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "youtube-auth",
		Short: "Authorize uploads and store the OAuth token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			uploader := youtube.New(cfg.YouTube, logger)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Open this URL, approve access and paste the code parameter from the redirect:")
			fmt.Fprintln(out, uploader.AuthURL())
			fmt.Fprint(out, "Code: ")

			code, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && strings.TrimSpace(code) == "" {
				return fmt.Errorf("read code: %w", err)
			}
			if err := uploader.Exchange(cmd.Context(), strings.TrimSpace(code)); err != nil {
				return err
			}
			fmt.Fprintf(out, "Token saved to %s\n", cfg.YouTube.TokenFile)
			return nil
		},
	}
}
