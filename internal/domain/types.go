package domain

// RunState tracks the foreground lifecycle of one subtitle extraction.
type RunState string

const (
	RunStateInitial      RunState = "initial"
	RunStateFileSelected RunState = "file_selected"
	RunStateProcessing   RunState = "processing"
	RunStateCompleted    RunState = "completed"
	RunStateSaveSuccess  RunState = "save_success"
	RunStateError        RunState = "error"
)

// Settings contains user-selectable runtime configuration.
type Settings struct {
	Model    string `toml:"model" json:"model"`
	Language string `toml:"language" json:"language"`
}

// TranscriptSegment is one timed span of recognized speech, in seconds.
// Index is assigned by the subtitle formatter, not by the engine.
type TranscriptSegment struct {
	Index uint32  `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// DownloadProgress reports bytes written during an active model download.
type DownloadProgress struct {
	Downloaded int64 `json:"downloaded"`
	Total      int64 `json:"total"`
}
