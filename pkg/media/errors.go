package media

import (
	"fmt"
	"time"
)

// Operation names carried by processing errors.
const (
	OpProbe         = "probe"
	OpExtractAudio  = "extract-audio"
	OpCutAudio      = "cut-audio"
	OpBurnSubtitles = "burn-subtitles"
)

// ProcessingError reports an abnormal exit of a media toolchain invocation.
// Diagnostics carries the captured stderr output of the tool.
type ProcessingError struct {
	Op          string
	Diagnostics string
	Err         error
}

// Error implements the error interface
func (e *ProcessingError) Error() string {
	if e.Diagnostics != "" {
		return fmt.Sprintf("media %s failed: %v: %s", e.Op, e.Err, e.Diagnostics)
	}
	return fmt.Sprintf("media %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// TimeoutError reports a toolchain invocation that exceeded its time budget.
// Kept distinct from ProcessingError so callers can suggest a different
// remediation (shorter input vs. genuinely broken input).
type TimeoutError struct {
	Op     string
	Budget time.Duration
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("media %s exceeded time budget of %s", e.Op, e.Budget)
}
