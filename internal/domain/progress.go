package domain

// ProgressKind classifies events emitted during a pipeline run.
type ProgressKind string

const (
	ProgressStarted   ProgressKind = "started"
	ProgressStage     ProgressKind = "stage"
	ProgressCompleted ProgressKind = "completed"
	ProgressFailed    ProgressKind = "failed"
)

// ProgressEvent is the sole channel between the pipeline and its observer.
// Exactly one of the payload fields is meaningful per kind: Stage and
// Fraction for ProgressStage, OutputPath for ProgressCompleted, Err for
// ProgressFailed.
type ProgressEvent struct {
	Kind       ProgressKind
	Stage      string
	Fraction   float64
	OutputPath string
	Err        error
}

// StageEvent builds a stage progress event with fraction in [0, 1].
func StageEvent(stage string, fraction float64) ProgressEvent {
	return ProgressEvent{Kind: ProgressStage, Stage: stage, Fraction: fraction}
}
