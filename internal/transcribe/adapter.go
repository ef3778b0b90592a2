package transcribe

import (
	"context"
	"errors"
	"strings"

	"video-subtitle/internal/domain"
)

// Adapter wraps an Engine behind the pipeline's segment contract: it
// normalizes the language sentinel, forwards engine percentages as
// fractions, and converts centisecond timestamps to seconds.
type Adapter struct {
	engine Engine
}

// NewAdapter wraps the given engine.
func NewAdapter(engine Engine) *Adapter {
	return &Adapter{engine: engine}
}

// Run invokes the engine once over the whole sample buffer and returns
// segments with timestamps in seconds, in engine emission order.
func (a *Adapter) Run(ctx context.Context, samples []float32, language string, onProgress func(fraction float64)) ([]domain.TranscriptSegment, error) {
	var cb func(int)
	if onProgress != nil {
		cb = func(pct int) {
			onProgress(float64(pct) / 100)
		}
	}

	raw, err := a.engine.Transcribe(ctx, samples, normalizeLanguage(language), cb)
	if err != nil {
		var engineErr *EngineError
		if errors.As(err, &engineErr) {
			return nil, err
		}
		return nil, &EngineError{Op: "inference", Err: err}
	}

	segments := make([]domain.TranscriptSegment, len(raw))
	for i, s := range raw {
		segments[i] = domain.TranscriptSegment{
			// Engine timestamps are centiseconds.
			Start: float64(s.T0) / 100,
			End:   float64(s.T1) / 100,
			Text:  s.Text,
		}
	}
	return segments, nil
}

// normalizeLanguage maps "auto" and empty language to no engine hint.
func normalizeLanguage(raw string) string {
	lang := strings.TrimSpace(raw)
	if lang == "" || strings.EqualFold(lang, "auto") {
		return ""
	}
	return lang
}
