package media

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// fakeRunner simulates command execution outcomes.
type fakeRunner struct {
	run func(ctx context.Context, name string, args ...string) (commandResult, error)
}

// Run delegates to injected behavior.
func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	if f.run == nil {
		return commandResult{}, nil
	}
	return f.run(ctx, name, args...)
}

// writeWAV creates a WAV fixture with the given header parameters.
func writeWAV(t *testing.T, path string, numChans, sampleRate, bitDepth int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	enc := wav.NewEncoder(f, sampleRate, bitDepth, numChans, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChans, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
		Data:           data,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}

// TestExtractSuccess checks the happy path and argument construction.
func TestExtractSuccess(t *testing.T) {
	root := t.TempDir()
	wavPath := filepath.Join(root, "audio.wav")

	var gotArgs []string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			if name != "ffmpeg-custom" {
				t.Fatalf("command name = %q, want ffmpeg-custom", name)
			}
			gotArgs = append([]string{}, args...)
			writeWAV(t, wavPath, 1, 16000, 16, []int{0, 0})
			return commandResult{ExitCode: 0}, nil
		},
	}

	extractor := NewExtractorForTests("ffmpeg-custom", runner)
	if err := extractor.Extract(context.Background(), "/in.mp4", wavPath); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := buildFFmpegArgs("/in.mp4", wavPath)
	if len(gotArgs) != len(want) {
		t.Fatalf("args len = %d, want %d", len(gotArgs), len(want))
	}
	for i := range want {
		if gotArgs[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, gotArgs[i], want[i])
		}
	}
}

// TestExtractToolFailure checks non-zero exit handling.
func TestExtractToolFailure(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			return commandResult{Stderr: "no such file", ExitCode: 1}, errors.New("exit status 1")
		},
	}

	extractor := NewExtractorForTests("ffmpeg", runner)
	err := extractor.Extract(context.Background(), "/in.mp4", filepath.Join(t.TempDir(), "audio.wav"))
	if err == nil {
		t.Fatal("expected error")
	}

	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error type = %T, want *ToolError", err)
	}
	if toolErr.ExitCode != 1 {
		t.Fatalf("exit code = %d, want 1", toolErr.ExitCode)
	}
	if toolErr.Stderr != "no such file" {
		t.Fatalf("stderr = %q", toolErr.Stderr)
	}
}

// TestExtractMissingOutput checks the zero-exit-but-no-file path.
func TestExtractMissingOutput(t *testing.T) {
	runner := &fakeRunner{}
	extractor := NewExtractorForTests("ffmpeg", runner)
	err := extractor.Extract(context.Background(), "/in.mp4", filepath.Join(t.TempDir(), "audio.wav"))
	if err == nil {
		t.Fatal("expected error for missing output file")
	}
}

// TestDecodeSamplesNormalization checks PCM16 to float conversion.
func TestDecodeSamplesNormalization(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.wav")
	writeWAV(t, path, 1, 16000, 16, []int{0, 16384, -32768, 32767})

	samples, err := DecodeSamples(path)
	if err != nil {
		t.Fatalf("DecodeSamples() error = %v", err)
	}
	want := []float32{0, 0.5, -1.0, float32(32767) / 32768.0}
	if len(samples) != len(want) {
		t.Fatalf("sample count = %d, want %d", len(samples), len(want))
	}
	for i := range want {
		if math.Abs(float64(samples[i]-want[i])) > 1e-6 {
			t.Fatalf("sample[%d] = %f, want %f", i, samples[i], want[i])
		}
	}
}

// TestDecodeSamplesRejectsWrongFormat checks all four header validations.
func TestDecodeSamplesRejectsWrongFormat(t *testing.T) {
	tests := []struct {
		name       string
		numChans   int
		sampleRate int
		bitDepth   int
	}{
		{name: "stereo", numChans: 2, sampleRate: 16000, bitDepth: 16},
		{name: "44100hz", numChans: 1, sampleRate: 44100, bitDepth: 16},
		{name: "8bit", numChans: 1, sampleRate: 16000, bitDepth: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "audio.wav")
			writeWAV(t, path, tt.numChans, tt.sampleRate, tt.bitDepth, []int{0, 0, 0, 0})

			_, err := DecodeSamples(path)
			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("error = %v, want *FormatError", err)
			}
		})
	}
}

// TestEncodeDecodeRoundTrip checks sample fidelity through a WAV file.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.wav")
	in := []float32{0, 0.25, -0.25, 0.999, -1.0}
	if err := EncodeSamples(path, in); err != nil {
		t.Fatalf("EncodeSamples() error = %v", err)
	}

	out, err := DecodeSamples(path)
	if err != nil {
		t.Fatalf("DecodeSamples() error = %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("sample count = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if math.Abs(float64(out[i]-in[i])) > 1.0/32768.0 {
			t.Fatalf("sample[%d] = %f, want ~%f", i, out[i], in[i])
		}
	}
}
