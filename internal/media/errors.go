package media

import "fmt"

// ToolError reports a decode tool run that exited non-zero.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

// Error formats the failure with the tool's stderr tail.
func (e *ToolError) Error() string {
	return fmt.Sprintf("%s failed (exit %d): %s", e.Tool, e.ExitCode, e.Stderr)
}

// Unwrap exposes the underlying exec error.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// FormatError reports an extracted file whose header does not match the
// required PCM layout, regardless of the tool's exit status.
type FormatError struct {
	Detail string
}

func (e *FormatError) Error() string {
	return "unexpected audio format: " + e.Detail
}
