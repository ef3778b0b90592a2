package jobs

import (
	"errors"
	"testing"

	"video-subtitle/internal/domain"
)

// TestHappyPathTransitions walks the full lifecycle from file selection
// through processing, completion, save, and reset.
func TestHappyPathTransitions(t *testing.T) {
	m := NewManager()
	if got := m.State(); got != domain.RunStateInitial {
		t.Fatalf("initial state = %q, want %q", got, domain.RunStateInitial)
	}

	if err := m.SelectFile("/in/clip.mp4", "/in/clip.srt"); err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if got := m.State(); got != domain.RunStateFileSelected {
		t.Fatalf("state = %q, want %q", got, domain.RunStateFileSelected)
	}

	if err := m.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := m.State(); got != domain.RunStateProcessing {
		t.Fatalf("state = %q, want %q", got, domain.RunStateProcessing)
	}

	m.Apply(domain.ProgressEvent{Kind: domain.ProgressCompleted, OutputPath: "/in/clip.srt"})
	if got := m.State(); got != domain.RunStateCompleted {
		t.Fatalf("state = %q, want %q", got, domain.RunStateCompleted)
	}

	if err := m.MarkSaved(nil); err != nil {
		t.Fatalf("MarkSaved() error = %v", err)
	}
	if got := m.State(); got != domain.RunStateSaveSuccess {
		t.Fatalf("state = %q, want %q", got, domain.RunStateSaveSuccess)
	}

	if err := m.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	snap := m.Current()
	if snap.State != domain.RunStateInitial || snap.InputPath != "" || snap.OutputPath != "" {
		t.Fatalf("snapshot after Next = %+v, want cleared initial state", snap)
	}
}

// TestReselectReplacesChoice verifies picking a different file before
// starting keeps the machine in file_selected with the new paths.
func TestReselectReplacesChoice(t *testing.T) {
	m := NewManager()
	if err := m.SelectFile("/in/a.mp4", "/in/a.srt"); err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if err := m.SelectFile("/in/b.mp4", "/in/b.srt"); err != nil {
		t.Fatalf("reselect error = %v", err)
	}
	snap := m.Current()
	if snap.State != domain.RunStateFileSelected || snap.InputPath != "/in/b.mp4" {
		t.Fatalf("snapshot = %+v, want file_selected with /in/b.mp4", snap)
	}
}

func TestStartGuards(t *testing.T) {
	m := NewManager()
	if err := m.Start(); !errors.Is(err, ErrNoFileSelected) {
		t.Fatalf("Start() from initial error = %v, want ErrNoFileSelected", err)
	}

	if err := m.SelectFile("/in/a.mp4", "/in/a.srt"); err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := m.Start(); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("second Start() error = %v, want ErrRunInProgress", err)
	}
	if err := m.SelectFile("/in/b.mp4", "/in/b.srt"); err == nil {
		t.Fatalf("SelectFile() during processing succeeded, want error")
	}
}

func TestFailureAndRestart(t *testing.T) {
	m := NewManager()
	if err := m.SelectFile("/in/a.mp4", "/in/a.srt"); err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	m.Apply(domain.ProgressEvent{Kind: domain.ProgressFailed, Err: errors.New("ffmpeg exited with status 1")})
	snap := m.Current()
	if snap.State != domain.RunStateError {
		t.Fatalf("state = %q, want %q", snap.State, domain.RunStateError)
	}
	if snap.Error != "ffmpeg exited with status 1" {
		t.Fatalf("snapshot error = %q, want failure message", snap.Error)
	}

	if err := m.Next(); err == nil {
		t.Fatalf("Next() from error succeeded, want invalid transition")
	}
	if err := m.Restart(); err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	snap = m.Current()
	if snap.State != domain.RunStateInitial || snap.InputPath != "" || snap.Error != "" {
		t.Fatalf("snapshot after Restart = %+v, want cleared initial state", snap)
	}
}

func TestSaveFailureMovesToError(t *testing.T) {
	m := NewManager()
	if err := m.SelectFile("/in/a.mp4", "/in/a.srt"); err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	m.Apply(domain.ProgressEvent{Kind: domain.ProgressCompleted, OutputPath: "/in/a.srt"})

	if err := m.MarkSaved(errors.New("read-only filesystem")); err != nil {
		t.Fatalf("MarkSaved() error = %v", err)
	}
	snap := m.Current()
	if snap.State != domain.RunStateError || snap.Error != "read-only filesystem" {
		t.Fatalf("snapshot = %+v, want error state with message", snap)
	}
}

// TestApplyUpdatesProgressInPlace verifies stage events mutate the
// snapshot without leaving the processing state.
func TestApplyUpdatesProgressInPlace(t *testing.T) {
	m := NewManager()
	if err := m.SelectFile("/in/a.mp4", "/in/a.srt"); err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	m.Apply(domain.StageEvent("transcribe", 0.42))
	snap := m.Current()
	if snap.State != domain.RunStateProcessing {
		t.Fatalf("state = %q, want %q", snap.State, domain.RunStateProcessing)
	}
	if snap.Stage != "transcribe" || snap.Fraction != 0.42 {
		t.Fatalf("snapshot = %+v, want transcribe at 0.42", snap)
	}
}

// TestApplyIgnoredOutsideProcessing verifies stray worker events cannot
// move the machine once the run has resolved.
func TestApplyIgnoredOutsideProcessing(t *testing.T) {
	m := NewManager()
	m.Apply(domain.StageEvent("transcribe", 0.5))
	if got := m.State(); got != domain.RunStateInitial {
		t.Fatalf("state = %q, want %q", got, domain.RunStateInitial)
	}

	if err := m.SelectFile("/in/a.mp4", "/in/a.srt"); err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	m.Apply(domain.ProgressEvent{Kind: domain.ProgressCompleted, OutputPath: "/in/a.srt"})
	m.Apply(domain.ProgressEvent{Kind: domain.ProgressFailed, Err: errors.New("late")})
	if got := m.State(); got != domain.RunStateCompleted {
		t.Fatalf("state = %q, want %q after late failure event", got, domain.RunStateCompleted)
	}
}
