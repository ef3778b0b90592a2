// Package media turns input video into the normalized mono 16 kHz PCM
// sample buffer the transcription engine expects.
package media

import (
	"context"
	"fmt"
	"os"
)

// Extractor invokes the external decode tool to demux and resample
// video into a WAV file.
type Extractor struct {
	ffmpegPath string
	runner     commandRunner
}

// NewExtractor constructs an extractor using ffmpeg from PATH.
func NewExtractor() *Extractor {
	return &Extractor{
		ffmpegPath: "ffmpeg",
		runner:     &execRunner{},
	}
}

// NewExtractorForTests constructs an extractor with injected execution.
func NewExtractorForTests(ffmpegPath string, runner commandRunner) *Extractor {
	return &Extractor{ffmpegPath: ffmpegPath, runner: runner}
}

// Extract writes a mono 16 kHz 16-bit PCM WAV for the given video. The
// tool's exit code is not trusted on its own: callers validate the
// produced file with DecodeSamples.
func (e *Extractor) Extract(ctx context.Context, videoPath, wavPath string) error {
	args := buildFFmpegArgs(videoPath, wavPath)
	result, err := e.runner.Run(ctx, e.ffmpegPath, args...)
	if err != nil {
		return &ToolError{
			Tool:     e.ffmpegPath,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
			Err:      err,
		}
	}

	if _, err := os.Stat(wavPath); err != nil {
		return fmt.Errorf("%s completed but output file is missing: %w", e.ffmpegPath, err)
	}
	return nil
}

// buildFFmpegArgs builds extraction CLI args for mono 16k PCM WAV output.
func buildFFmpegArgs(inputPath, outPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outPath,
	}
}
