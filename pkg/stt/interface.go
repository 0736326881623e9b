package stt

import (
	"context"
	"strings"
)

// Status classifies a per-chunk recognition outcome
type Status int

const (
	// StatusText means speech was recognized and Text is non-empty
	StatusText Status = iota
	// StatusNoSpeech means the chunk contained no recognizable speech
	StatusNoSpeech
	// StatusFailed means recognition failed for this chunk; Diagnostics
	// carries the reason
	StatusFailed
)

// Outcome is a per-chunk recognition result. NoSpeech and Failed are valid
// outcomes rather than errors: they contribute no caption text and never
// abort the surrounding transcription.
type Outcome struct {
	Status      Status
	Text        string
	Diagnostics string
}

// TextOutcome builds a recognized-text outcome. Whitespace-only text
// degrades to NoSpeech.
func TextOutcome(text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return NoSpeech()
	}
	return Outcome{Status: StatusText, Text: text}
}

// NoSpeech builds a no-speech-detected outcome
func NoSpeech() Outcome {
	return Outcome{Status: StatusNoSpeech}
}

// Failed builds a recognition-failed outcome
func Failed(diagnostics string) Outcome {
	return Outcome{Status: StatusFailed, Diagnostics: diagnostics}
}

// Recognizer wraps a speech-to-text capability. Recognize performs at most
// one recognition call per chunk and maps "no speech" and transient
// recognition errors to outcome variants; only structural failures
// (missing binary, bad credentials, connectivity) surface as errors.
type Recognizer interface {
	// Name returns the recognizer name (e.g. "whisper-cli")
	Name() string

	// Recognize transcribes one materialized audio chunk
	Recognize(ctx context.Context, audioPath string) (Outcome, error)

	// ValidateConfig validates the recognizer configuration
	ValidateConfig() error
}
