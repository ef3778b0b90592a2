// Command cli generates an SRT subtitle file from a video without the
// desktop shell. It drives the same pipeline and observes it the same
// way the GUI does, by polling the run event bus.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"video-subtitle/internal/config"
	"video-subtitle/internal/diagnostics"
	"video-subtitle/internal/domain"
	"video-subtitle/internal/jobs"
	"video-subtitle/internal/media"
	"video-subtitle/internal/models"
	"video-subtitle/internal/pipeline"
)

const pollInterval = 100 * time.Millisecond

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		language   string
		model      string
		configPath string
		skipChecks bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "video-subtitle <input-video> <output-srt>",
		Short: "Generate an SRT subtitle file from a video's audio track",
		Long: "Extracts the audio track with ffmpeg, transcribes it with a " +
			"whisper.cpp model, and writes the result as an SRT subtitle file. " +
			"Models are downloaded into a local cache on first use.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), runOptions{
				inputPath:  args[0],
				outputPath: args[1],
				language:   language,
				model:      model,
				configPath: configPath,
				skipChecks: skipChecks,
				verbose:    verbose,
			})
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "spoken language hint (default: auto-detect)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "whisper model file name (default: from settings)")
	cmd.Flags().StringVar(&configPath, "config", "", "settings file location (default: user config dir)")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "skip startup diagnostics")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every pipeline event")
	return cmd
}

type runOptions struct {
	inputPath  string
	outputPath string
	language   string
	model      string
	configPath string
	skipChecks bool
	verbose    bool
}

func run(ctx context.Context, opts runOptions) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	configPath := opts.configPath
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
	}

	store := config.NewTOMLStore(configPath)
	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if opts.model != "" {
		settings.Model = opts.model
	}
	if opts.language != "" {
		settings.Language = opts.language
	}

	cacheDir := config.ModelCacheDir(configPath)
	if !opts.skipChecks {
		report := diagnostics.NewChecker().Run(configPath, cacheDir)
		for _, item := range report.Items {
			if item.Status != domain.DiagnosticStatusFail {
				continue
			}
			logger.Error(item.Message, "check", item.ID, "hint", item.Hint)
		}
		if report.HasFailures {
			return errors.New("startup diagnostics failed")
		}
	}

	runner := pipeline.NewRunner(models.NewStore(cacheDir), media.NewExtractor(), logger)
	manager := jobs.NewManager()
	bus := jobs.NewEventBus(1000)

	if err := manager.SelectFile(opts.inputPath, opts.outputPath); err != nil {
		return err
	}
	if err := manager.Start(); err != nil {
		return err
	}

	logger.Info("starting subtitle run",
		"input", opts.inputPath,
		"output", opts.outputPath,
		"model", settings.Model,
		"language", settings.Language,
	)

	go func() {
		_, _ = runner.Run(ctx, pipeline.Request{
			InputPath:  opts.inputPath,
			OutputPath: opts.outputPath,
			Model:      settings.Model,
			Language:   settings.Language,
			OnEvent: func(ev domain.ProgressEvent) {
				manager.Apply(ev)
				bus.Publish(jobs.FromProgress(ev))
			},
		})
	}()

	if err := observe(ctx, manager, bus, logger, opts.verbose); err != nil {
		return err
	}

	snap := manager.Current()
	logger.Info("subtitle file written", "path", snap.OutputPath)
	return nil
}

// observe polls the event bus until the run resolves. The worker owns
// the pipeline; this loop only reads published state.
func observe(ctx context.Context, manager *jobs.Manager, bus *jobs.EventBus, logger *slog.Logger, verbose bool) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastSeq int64
	lastStage := ""
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		for _, ev := range bus.Since(lastSeq) {
			lastSeq = ev.Seq
			switch ev.Kind {
			case domain.ProgressStage:
				if verbose {
					logger.Debug("pipeline progress", "stage", ev.Stage, "fraction", ev.Fraction)
				} else if ev.Stage != lastStage {
					logger.Info("pipeline stage", "stage", ev.Stage)
					lastStage = ev.Stage
				}
			case domain.ProgressFailed:
				return errors.New(ev.Error)
			}
		}

		switch manager.State() {
		case domain.RunStateCompleted:
			return nil
		case domain.RunStateError:
			snap := manager.Current()
			return errors.New(snap.Error)
		}
	}
}
