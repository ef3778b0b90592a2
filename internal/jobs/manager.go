// Package jobs tracks the foreground lifecycle of subtitle runs and
// buffers run events for polling observers.
package jobs

import (
	"errors"
	"fmt"
	"sync"

	"video-subtitle/internal/domain"
)

// ErrRunInProgress is returned when starting while a run is active.
var ErrRunInProgress = errors.New("a run is already in progress")

// ErrNoFileSelected is returned when starting without an input file.
var ErrNoFileSelected = errors.New("no input file selected")

// Snapshot is the latest observable state of the manager. Observers
// poll it instead of subscribing; each read returns a consistent copy.
type Snapshot struct {
	State      domain.RunState `json:"state"`
	InputPath  string          `json:"inputPath"`
	OutputPath string          `json:"outputPath"`
	Stage      string          `json:"stage,omitempty"`
	Fraction   float64         `json:"fraction"`
	Error      string          `json:"error,omitempty"`
}

// Manager is the single-run state machine. All mutations happen under
// one lock so a poller never observes a half-applied transition.
type Manager struct {
	mu      sync.RWMutex
	current Snapshot
}

// NewManager creates a manager in the initial state.
func NewManager() *Manager {
	return &Manager{
		current: Snapshot{State: domain.RunStateInitial},
	}
}

// SelectFile records a chosen input video and its derived output path.
// Selecting again before a run starts replaces the previous choice.
func (m *Manager) SelectFile(inputPath, outputPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.current.State {
	case domain.RunStateInitial, domain.RunStateFileSelected:
	default:
		return fmt.Errorf("invalid transition: %s -> %s", m.current.State, domain.RunStateFileSelected)
	}

	m.current = Snapshot{
		State:      domain.RunStateFileSelected,
		InputPath:  inputPath,
		OutputPath: outputPath,
	}
	return nil
}

// Start moves a selected run into processing.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.current.State {
	case domain.RunStateFileSelected:
	case domain.RunStateProcessing:
		return ErrRunInProgress
	default:
		return ErrNoFileSelected
	}

	m.current.State = domain.RunStateProcessing
	m.current.Stage = ""
	m.current.Fraction = 0
	m.current.Error = ""
	return nil
}

// Apply folds one pipeline event into the snapshot. Stage events update
// progress in place; terminal events move the state machine. Events
// arriving outside processing are dropped.
func (m *Manager) Apply(ev domain.ProgressEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.State != domain.RunStateProcessing {
		return
	}

	switch ev.Kind {
	case domain.ProgressStage:
		m.current.Stage = ev.Stage
		m.current.Fraction = ev.Fraction
	case domain.ProgressCompleted:
		m.current.State = domain.RunStateCompleted
		m.current.OutputPath = ev.OutputPath
		m.current.Fraction = 1
	case domain.ProgressFailed:
		m.current.State = domain.RunStateError
		if ev.Err != nil {
			m.current.Error = ev.Err.Error()
		}
	}
}

// MarkSaved resolves a completed run: nil confirms the subtitle file,
// an error moves the run to the error state.
func (m *Manager) MarkSaved(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.State != domain.RunStateCompleted {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.State, domain.RunStateSaveSuccess)
	}
	if err != nil {
		m.current.State = domain.RunStateError
		m.current.Error = err.Error()
		return nil
	}
	m.current.State = domain.RunStateSaveSuccess
	return nil
}

// Next returns from a saved run to the initial state for another file.
func (m *Manager) Next() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.State != domain.RunStateSaveSuccess {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.State, domain.RunStateInitial)
	}
	m.current = Snapshot{State: domain.RunStateInitial}
	return nil
}

// Restart clears a failed run back to the initial state.
func (m *Manager) Restart() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.State != domain.RunStateError {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.State, domain.RunStateInitial)
	}
	m.current = Snapshot{State: domain.RunStateInitial}
	return nil
}

// Current returns a copy of the latest snapshot.
func (m *Manager) Current() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// State returns only the machine state.
func (m *Manager) State() domain.RunState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.State
}
