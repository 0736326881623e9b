package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/burnsub/burnsub/pkg/logger"
	"github.com/burnsub/burnsub/pkg/stt"
)

const defaultTimeout = 2 * time.Minute

// Recognizer runs a local whisper.cpp CLI binary per chunk
type Recognizer struct {
	binary   string
	model    string
	language string
	timeout  time.Duration
}

// Option customizes the recognizer
type Option func(*Recognizer)

// WithLanguage pins the recognition language
func WithLanguage(language string) Option {
	return func(r *Recognizer) {
		r.language = language
	}
}

// WithTimeout bounds a single recognition call
func WithTimeout(timeout time.Duration) Option {
	return func(r *Recognizer) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// NewRecognizer creates a whisper.cpp CLI recognizer
func NewRecognizer(binary, model string, options ...Option) *Recognizer {
	if binary == "" {
		binary = "whisper-cli"
	}
	r := &Recognizer{
		binary:  binary,
		model:   model,
		timeout: defaultTimeout,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Name returns the recognizer name
func (r *Recognizer) Name() string {
	return "whisper-cli"
}

// ValidateConfig validates the recognizer configuration
func (r *Recognizer) ValidateConfig() error {
	if r.model == "" {
		return fmt.Errorf("whisper model path is required")
	}
	if _, err := os.Stat(r.model); err != nil {
		return fmt.Errorf("whisper model not found: %s", r.model)
	}
	return nil
}

// Recognize transcribes one materialized audio chunk
func (r *Recognizer) Recognize(ctx context.Context, audioPath string) (stt.Outcome, error) {
	log := logger.WithComponent("whisper").WithField("chunk", filepath.Base(audioPath))

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := []string{"-m", r.model, "-f", audioPath, "--no-timestamps"}
	if r.language != "" {
		args = append(args, "-l", r.language)
	}

	cmd := exec.CommandContext(runCtx, r.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return stt.Outcome{}, fmt.Errorf("whisper binary not found: %s", r.binary)
		}
		diag := strings.TrimSpace(stderr.String())
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			diag = fmt.Sprintf("recognition timed out after %s", r.timeout)
		}
		log.Warn().Str("diagnostics", diag).Msg("Chunk recognition failed")
		return stt.Failed(diag), nil
	}

	text := cleanTranscript(stdout.String())
	if text == "" {
		log.Debug().Msg("No speech detected in chunk")
		return stt.NoSpeech(), nil
	}

	log.Debug().Int("text_length", len(text)).Msg("Chunk recognized")
	return stt.TextOutcome(text), nil
}

// markerPattern matches non-speech annotations whisper emits, such as
// [BLANK_AUDIO] or (wind blowing). Markers may span several words, so they
// are stripped before word splitting.
var markerPattern = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)

// cleanTranscript joins whisper output lines and drops non-speech markers
func cleanTranscript(raw string) string {
	var words []string
	for _, line := range strings.Split(raw, "\n") {
		line = markerPattern.ReplaceAllString(line, " ")
		words = append(words, strings.Fields(line)...)
	}
	return strings.Join(words, " ")
}
