// Package subtitle serializes transcript segments as SRT documents.
package subtitle

import (
	"fmt"
	"os"
	"strings"

	"video-subtitle/internal/domain"
)

// FormatTimestamp renders non-negative seconds as HH:MM:SS,mmm. All
// components truncate; milliseconds never round up into the next second.
func FormatTimestamp(seconds float64) string {
	ms := int64(seconds * 1000)
	hours := ms / 3600000
	minutes := (ms % 3600000) / 60000
	secs := (ms % 60000) / 1000
	millis := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// Render produces the SRT document for the segments in order. Sequence
// numbers are assigned densely from 1 by position, ignoring any index
// already present on a segment.
func Render(segments []domain.TranscriptSegment) string {
	var b strings.Builder
	for i, seg := range segments {
		b.WriteString(fmt.Sprintf("%d\n", i+1))
		b.WriteString(FormatTimestamp(seg.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(seg.End))
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// WriteFile renders the document and writes it to path in a single
// write, overwriting any existing file.
func WriteFile(path string, segments []domain.TranscriptSegment) error {
	if err := os.WriteFile(path, []byte(Render(segments)), 0o644); err != nil {
		return fmt.Errorf("write subtitle file: %w", err)
	}
	return nil
}
