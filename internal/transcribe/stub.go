package transcribe

import "context"

// StubEngine returns canned segments without running inference. It
// stands in for whisper-cli in development builds where the binary or a
// model is unavailable.
type StubEngine struct {
	Segments []Segment
}

// Transcribe reports full progress and returns a copy of the canned
// segments.
func (e *StubEngine) Transcribe(_ context.Context, _ []float32, _ string, onProgress func(pct int)) ([]Segment, error) {
	if onProgress != nil {
		onProgress(100)
	}
	out := make([]Segment, len(e.Segments))
	copy(out, e.Segments)
	return out, nil
}

// Close releases nothing; the stub holds no resources.
func (e *StubEngine) Close() error {
	return nil
}
