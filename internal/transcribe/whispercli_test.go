package transcribe

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTranscriptFixture stores a JSON transcript in a temp file.
func writeTranscriptFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// TestReadTranscriptMissingFile checks the missing-output error path.
func TestReadTranscriptMissingFile(t *testing.T) {
	_, err := readTranscript(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing transcript")
	}
}

// TestReadTranscriptMalformed checks JSON parse failure typing.
func TestReadTranscriptMalformed(t *testing.T) {
	path := writeTranscriptFixture(t, "{not json")
	if _, err := readTranscript(path); err == nil {
		t.Fatal("expected parse error")
	}
}

// TestProgressRe verifies the stderr progress line pattern.
func TestProgressRe(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{line: "whisper_print_progress_callback: progress =   5%", want: "5"},
		{line: "whisper_print_progress_callback: progress = 100%", want: "100"},
		{line: "whisper_init_from_file_with_params_no_state: loading model", want: ""},
	}

	for _, tt := range tests {
		m := progressRe.FindStringSubmatch(tt.line)
		got := ""
		if m != nil {
			got = m[1]
		}
		if got != tt.want {
			t.Fatalf("progress match for %q = %q, want %q", tt.line, got, tt.want)
		}
	}
}
