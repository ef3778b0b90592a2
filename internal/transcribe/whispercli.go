package transcribe

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"video-subtitle/internal/media"
)

// progressRe matches whisper.cpp progress lines on stderr, emitted when
// the process runs with --print-progress.
var progressRe = regexp.MustCompile(`progress\s*=\s*(\d+)%`)

// CLIEngine runs inference through the whisper-cli executable. The
// sample buffer is written back out as a temporary WAV because the
// process only accepts file input.
type CLIEngine struct {
	binPath   string
	modelPath string
}

// NewCLIEngine creates an engine over the given whisper-cli binary and
// model file.
func NewCLIEngine(binPath, modelPath string) *CLIEngine {
	if binPath == "" {
		binPath = "whisper-cli"
	}
	return &CLIEngine{binPath: binPath, modelPath: modelPath}
}

// Transcribe runs one whisper-cli invocation over the whole buffer and
// parses the JSON transcript it produces.
func (e *CLIEngine) Transcribe(ctx context.Context, samples []float32, language string, onProgress func(pct int)) ([]Segment, error) {
	workDir, err := os.MkdirTemp("", "video-subtitle-whisper-*")
	if err != nil {
		return nil, &EngineError{Op: "create workspace", Err: err}
	}
	defer os.RemoveAll(workDir)

	audioPath := filepath.Join(workDir, "audio.wav")
	if err := media.EncodeSamples(audioPath, samples); err != nil {
		return nil, &EngineError{Op: "stage audio", Err: err}
	}

	outBase := filepath.Join(workDir, "transcript")
	args := buildWhisperArgs(e.modelPath, audioPath, outBase, language)

	if err := e.run(ctx, args, onProgress); err != nil {
		return nil, err
	}

	return readTranscript(outBase + ".json")
}

// Close releases engine resources; the process engine holds none.
func (e *CLIEngine) Close() error {
	return nil
}

// run executes whisper-cli, forwarding progress lines as they appear.
func (e *CLIEngine) run(ctx context.Context, args []string, onProgress func(pct int)) error {
	cmd := exec.CommandContext(ctx, e.binPath, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &EngineError{Op: "attach stderr", Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &EngineError{Op: "start " + e.binPath, Err: err}
	}

	// Keep a short tail of stderr for error reporting.
	var tail []string
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		if m := progressRe.FindStringSubmatch(line); m != nil {
			if onProgress != nil {
				if pct, err := strconv.Atoi(m[1]); err == nil {
					onProgress(pct)
				}
			}
			continue
		}
		tail = append(tail, line)
		if len(tail) > 20 {
			tail = tail[1:]
		}
	}

	if err := cmd.Wait(); err != nil {
		return &EngineError{
			Op:  "inference",
			Err: fmt.Errorf("%s: %w: %s", e.binPath, err, strings.Join(tail, "\n")),
		}
	}
	return nil
}

// buildWhisperArgs builds whisper-cli args for JSON transcript export.
func buildWhisperArgs(modelPath, audioPath, outBase, language string) []string {
	args := []string{
		"-m", modelPath,
		"-f", audioPath,
		"-of", outBase,
		"-oj",
		"--print-progress",
	}
	if language != "" {
		args = append(args, "-l", language)
	}
	return args
}

// cliTranscript mirrors the whisper.cpp JSON output layout. Offsets are
// milliseconds; they are converted to the engine's centisecond ticks.
type cliTranscript struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// readTranscript parses the JSON file whisper-cli wrote.
func readTranscript(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &EngineError{Op: "read transcript", Err: err}
	}

	var out cliTranscript
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &EngineError{Op: "parse transcript", Err: err}
	}

	segments := make([]Segment, 0, len(out.Transcription))
	for _, s := range out.Transcription {
		segments = append(segments, Segment{
			T0:   s.Offsets.From / 10,
			T1:   s.Offsets.To / 10,
			Text: s.Text,
		})
	}
	return segments, nil
}
