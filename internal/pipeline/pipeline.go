// Package pipeline sequences model acquisition, audio extraction,
// inference, and subtitle serialization for one run, reporting progress
// through a single ordered event stream.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"video-subtitle/internal/domain"
	"video-subtitle/internal/media"
	"video-subtitle/internal/subtitle"
	"video-subtitle/internal/transcribe"
)

// Stage names in execution order.
const (
	StageInit       = "init"
	StageModelCheck = "model_check"
	StageExtract    = "audio_extract"
	StageDecode     = "decode"
	StageTranscribe = "transcribe"
	StageWrite      = "write_subtitle"
	StageCleanup    = "cleanup"
)

// ErrInputNotFound is returned when the input video does not exist.
var ErrInputNotFound = errors.New("input video not found")

// Error is a stage-aware pipeline failure.
type Error struct {
	Stage string
	Err   error
}

// Error formats the failure with its originating stage.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Request contains input media and execution callbacks for one run.
type Request struct {
	InputPath  string
	OutputPath string
	Model      string
	Language   string
	OnEvent    func(domain.ProgressEvent)
}

// Result contains the written subtitle path and segment count.
type Result struct {
	OutputPath   string
	SegmentCount int
}

// ModelEnsurer guarantees a named model artifact is cached locally.
type ModelEnsurer interface {
	Ensure(ctx context.Context, modelID string, onProgress func(domain.DownloadProgress)) (string, error)
}

// AudioExtractor produces a normalized WAV from an input video.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath, wavPath string) error
}

// Transcriber turns samples into transcript segments with seconds.
type Transcriber interface {
	Run(ctx context.Context, samples []float32, language string, onProgress func(fraction float64)) ([]domain.TranscriptSegment, error)
}

// Runner orchestrates the pipeline stages. Stages execute sequentially
// and are attempted at most once; no stage has a timeout, so a hung
// external tool blocks the run.
type Runner struct {
	models         ModelEnsurer
	extractor      AudioExtractor
	newTranscriber func(modelPath string) (Transcriber, error)
	logger         *slog.Logger

	tempDir  string
	decode   func(wavPath string) ([]float32, error)
	write    func(path string, segments []domain.TranscriptSegment) error
	remove   func(path string) error
	stat     func(path string) (os.FileInfo, error)
	newRunID func() string
}

// NewRunner constructs the production pipeline over the given model
// store and extractor, using a whisper-cli engine for inference.
func NewRunner(models ModelEnsurer, extractor AudioExtractor, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		models:    models,
		extractor: extractor,
		newTranscriber: func(modelPath string) (Transcriber, error) {
			return transcribe.NewAdapter(transcribe.NewCLIEngine("", modelPath)), nil
		},
		logger:   logger,
		tempDir:  os.TempDir(),
		decode:   media.DecodeSamples,
		write:    subtitle.WriteFile,
		remove:   os.Remove,
		stat:     os.Stat,
		newRunID: uuid.NewString,
	}
}

// NewRunnerForTests constructs a runner with injectable dependencies.
func NewRunnerForTests(
	models ModelEnsurer,
	extractor AudioExtractor,
	newTranscriber func(modelPath string) (Transcriber, error),
	tempDir string,
	decode func(string) ([]float32, error),
	write func(string, []domain.TranscriptSegment) error,
	remove func(string) error,
	stat func(string) (os.FileInfo, error),
	logger *slog.Logger,
) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		models:         models,
		extractor:      extractor,
		newTranscriber: newTranscriber,
		logger:         logger,
		tempDir:        tempDir,
		decode:         decode,
		write:          write,
		remove:         remove,
		stat:           stat,
		newRunID:       uuid.NewString,
	}
}

// Run executes all stages for one request. The temporary audio file is
// removed on every exit path; the final emitted event is Completed or
// Failed. The runner holds no state across calls, but callers must not
// invoke Run concurrently within one observer session.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	emit := func(ev domain.ProgressEvent) {
		if req.OnEvent != nil {
			req.OnEvent(ev)
		}
	}

	wavPath := filepath.Join(r.tempDir, "video-subtitle-"+r.newRunID()+".wav")
	fail := func(stage string, err error) (Result, error) {
		wrapped := &Error{Stage: stage, Err: err}
		r.cleanup(wavPath, emit)
		emit(domain.ProgressEvent{Kind: domain.ProgressFailed, Err: wrapped})
		return Result{}, wrapped
	}

	emit(domain.ProgressEvent{Kind: domain.ProgressStarted})

	if _, err := r.stat(req.InputPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fail(StageInit, fmt.Errorf("%w: %s", ErrInputNotFound, req.InputPath))
		}
		return fail(StageInit, fmt.Errorf("stat input %s: %w", req.InputPath, err))
	}

	emit(domain.StageEvent(StageModelCheck, 0))
	modelPath, err := r.models.Ensure(ctx, req.Model, func(p domain.DownloadProgress) {
		if p.Total > 0 {
			emit(domain.StageEvent(StageModelCheck, float64(p.Downloaded)/float64(p.Total)))
		}
	})
	if err != nil {
		return fail(StageModelCheck, err)
	}

	emit(domain.StageEvent(StageExtract, 0))
	if err := r.extractor.Extract(ctx, req.InputPath, wavPath); err != nil {
		return fail(StageExtract, err)
	}

	emit(domain.StageEvent(StageDecode, 0))
	samples, err := r.decode(wavPath)
	if err != nil {
		return fail(StageDecode, err)
	}

	emit(domain.StageEvent(StageTranscribe, 0))
	transcriber, err := r.newTranscriber(modelPath)
	if err != nil {
		return fail(StageTranscribe, err)
	}
	segments, err := transcriber.Run(ctx, samples, req.Language, func(fraction float64) {
		emit(domain.StageEvent(StageTranscribe, fraction))
	})
	if err != nil {
		return fail(StageTranscribe, err)
	}

	emit(domain.StageEvent(StageWrite, 0))
	if err := r.write(req.OutputPath, segments); err != nil {
		return fail(StageWrite, err)
	}

	r.cleanup(wavPath, emit)
	emit(domain.ProgressEvent{Kind: domain.ProgressCompleted, OutputPath: req.OutputPath})
	return Result{OutputPath: req.OutputPath, SegmentCount: len(segments)}, nil
}

// cleanup attempts temp audio removal. A failure is demoted to a
// warning; it never changes the run's primary outcome.
func (r *Runner) cleanup(wavPath string, emit func(domain.ProgressEvent)) {
	emit(domain.StageEvent(StageCleanup, 0))
	if err := r.remove(wavPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("failed to remove temporary audio file",
			"path", wavPath,
			"error", err,
		)
	}
}
