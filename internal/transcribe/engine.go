// Package transcribe runs speech recognition over a normalized sample
// buffer and converts engine output into transcript segments.
package transcribe

import (
	"context"
	"fmt"
)

// Segment is one recognized span in engine ticks (centiseconds).
type Segment struct {
	T0   int64
	T1   int64
	Text string
}

// Engine converts audio samples to timed text. Implementations may be
// backed by a whisper.cpp process or a stub for tests. The language is
// a hint; an empty string requests auto-detection. Progress callbacks
// carry raw 0-100 percentages as reported by the engine.
type Engine interface {
	Transcribe(ctx context.Context, samples []float32, language string, onProgress func(pct int)) ([]Segment, error)
	Close() error
}

// EngineError reports a failure inside the inference engine.
type EngineError struct {
	Op  string
	Err error
}

// Error formats engine failures for logs and UI.
func (e *EngineError) Error() string {
	return fmt.Sprintf("transcribe: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *EngineError) Unwrap() error {
	return e.Err
}
