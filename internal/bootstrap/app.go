// Package bootstrap wires configuration, the model store, the pipeline,
// and the run state machine into the desktop application.
package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"video-subtitle/internal/config"
	"video-subtitle/internal/diagnostics"
	"video-subtitle/internal/domain"
	"video-subtitle/internal/jobs"
	"video-subtitle/internal/media"
	"video-subtitle/internal/models"
	"video-subtitle/internal/pipeline"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var videoDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Video files",
		Pattern:     "*.mp4;*.mov;*.mkv;*.avi;*.webm;*.ts;*.m4v",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// pipelineRunner isolates the subtitle pipeline behind an interface.
type pipelineRunner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

// modelLibrary is the subset of the model store the UI needs.
type modelLibrary interface {
	Describe(modelID string) domain.ModelDescriptor
	Ensure(ctx context.Context, modelID string, onProgress func(domain.DownloadProgress)) (string, error)
}

// App wires configuration, jobs, pipeline, and UI runtime callbacks.
type App struct {
	Store       config.Store
	Jobs        *jobs.Manager
	Pipeline    pipelineRunner
	Models      modelLibrary
	Diagnostics domain.DiagnosticReport

	assets   fs.FS
	checker  *diagnostics.Checker
	cacheDir string
	logger   *slog.Logger

	mu         sync.Mutex
	runtimeCtx context.Context
	events     *jobs.EventBus
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	configPath, err := config.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	store := config.NewTOMLStore(configPath)
	if _, err := store.Load(); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	cacheDir := config.ModelCacheDir(configPath)
	modelStore := models.NewStore(cacheDir)
	logger := slog.Default()

	checker := diagnostics.NewChecker()
	report := checker.Run(configPath, cacheDir)

	return &App{
		Store:       store,
		Jobs:        jobs.NewManager(),
		Pipeline:    pipeline.NewRunner(modelStore, media.NewExtractor(), logger),
		Models:      modelStore,
		Diagnostics: report,
		assets:      assets,
		checker:     checker,
		cacheDir:    cacheDir,
		logger:      logger,
		events:      jobs.NewEventBus(1000),
	}, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Video Subtitle",
		Width:       960,
		Height:      640,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for dialogs and push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reruns dependency checks. Bound methods run
// concurrently, so the cached report is only touched under the lock.
func (a *App) RefreshDiagnostics() domain.DiagnosticReport {
	report := a.checker.Run(a.Store.Path(), a.cacheDir)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.Diagnostics = report
	return report
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// SaveSettings persists settings. Empty fields fall back to defaults.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	if err := a.Store.Save(settings); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return a.Store.Load()
}

// PickInputFile opens a native file dialog and records the selection.
// Cancelling the dialog leaves the current state untouched.
func (a *App) PickInputFile() (jobs.Snapshot, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return a.Jobs.Current(), err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select video file",
		Filters: videoDialogFilter,
	})
	if err != nil {
		return a.Jobs.Current(), err
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return a.Jobs.Current(), nil
	}

	if err := a.Jobs.SelectFile(path, DeriveOutputPath(path)); err != nil {
		return a.Jobs.Current(), err
	}
	return a.Jobs.Current(), nil
}

// StartRun begins processing the selected video in the background.
func (a *App) StartRun() (jobs.Snapshot, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return a.Jobs.Current(), fmt.Errorf("load settings: %w", err)
	}

	if err := a.Jobs.Start(); err != nil {
		return a.Jobs.Current(), err
	}

	snap := a.Jobs.Current()
	go a.runPipeline(snap.InputPath, snap.OutputPath, settings)
	return snap, nil
}

// runPipeline executes one run on a worker goroutine. Every pipeline
// event is folded into the state machine and published to the bus.
func (a *App) runPipeline(inputPath, outputPath string, settings domain.Settings) {
	_, err := a.Pipeline.Run(context.Background(), pipeline.Request{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Model:      settings.Model,
		Language:   settings.Language,
		OnEvent: func(ev domain.ProgressEvent) {
			a.Jobs.Apply(ev)
			a.publishEvent(jobs.FromProgress(ev))
		},
	})
	if err != nil {
		a.logger.Error("subtitle run failed",
			"input", inputPath,
			"error", err,
		)
	}
}

// ConfirmSave resolves a completed run by verifying the subtitle file.
func (a *App) ConfirmSave() (jobs.Snapshot, error) {
	snap := a.Jobs.Current()
	_, statErr := os.Stat(snap.OutputPath)
	if err := a.Jobs.MarkSaved(statErr); err != nil {
		return a.Jobs.Current(), err
	}
	return a.Jobs.Current(), nil
}

// NextRun returns to the initial state after a saved run.
func (a *App) NextRun() (jobs.Snapshot, error) {
	if err := a.Jobs.Next(); err != nil {
		return a.Jobs.Current(), err
	}
	return a.Jobs.Current(), nil
}

// RestartRun clears a failed run back to the initial state.
func (a *App) RestartRun() (jobs.Snapshot, error) {
	if err := a.Jobs.Restart(); err != nil {
		return a.Jobs.Current(), err
	}
	return a.Jobs.Current(), nil
}

// CurrentRun returns the latest run snapshot for polling observers.
func (a *App) CurrentRun() jobs.Snapshot {
	return a.Jobs.Current()
}

// RunEvents returns all events with sequence greater than sinceSeq.
func (a *App) RunEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// OpenOutputFolder opens the written subtitle's directory in the file manager.
func (a *App) OpenOutputFolder() error {
	snap := a.Jobs.Current()
	if snap.OutputPath == "" {
		return fmt.Errorf("no subtitle file has been written")
	}

	info, err := os.Stat(snap.OutputPath)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	openPath := snap.OutputPath
	if !info.IsDir() {
		openPath = filepath.Dir(snap.OutputPath)
	}
	return openInFileManager(openPath)
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "run:event", published)
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// DeriveOutputPath places the subtitle next to the video with the
// extension replaced by .srt.
func DeriveOutputPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return strings.TrimSuffix(videoPath, ext) + ".srt"
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
