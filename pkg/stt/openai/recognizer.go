package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/burnsub/burnsub/pkg/logger"
	"github.com/burnsub/burnsub/pkg/stt"
)

const defaultTimeout = 2 * time.Minute

// Recognizer transcribes chunks through the hosted Whisper transcription
// API
type Recognizer struct {
	client   *goopenai.Client
	apiKey   string
	model    string
	language string
	timeout  time.Duration
}

// Option customizes the recognizer
type Option func(*Recognizer)

// WithModel overrides the transcription model
func WithModel(model string) Option {
	return func(r *Recognizer) {
		if model != "" {
			r.model = model
		}
	}
}

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

// WithBaseURL points the client at an API-compatible server
func WithBaseURL(baseURL string) Option {
	return func(r *Recognizer) {
		cfg := goopenai.DefaultConfig(r.apiKey)
		cfg.BaseURL = baseURL
		r.client = goopenai.NewClientWithConfig(cfg)
	}
}

// NewRecognizer creates a Whisper API recognizer
func NewRecognizer(apiKey string, options ...Option) *Recognizer {
	r := &Recognizer{
		client:  goopenai.NewClient(apiKey),
		apiKey:  apiKey,
		model:   goopenai.Whisper1,
		timeout: defaultTimeout,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Name returns the recognizer name
func (r *Recognizer) Name() string {
	return "openai-whisper"
}

// ValidateConfig validates the recognizer configuration
func (r *Recognizer) ValidateConfig() error {
	if r.apiKey == "" {
		return fmt.Errorf("API key is required")
	}
	return nil
}

// Recognize transcribes one materialized audio chunk
func (r *Recognizer) Recognize(ctx context.Context, audioPath string) (stt.Outcome, error) {
	log := logger.WithComponent("openai-whisper").WithField("chunk", filepath.Base(audioPath))

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.CreateTranscription(runCtx, goopenai.AudioRequest{
		Model:    r.model,
		FilePath: audioPath,
		Language: r.language,
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			// Bad credentials are a configuration problem; anything else
			// the API returns is a per-chunk recognition failure.
			if apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden {
				return stt.Outcome{}, fmt.Errorf("transcription API rejected credentials: %w", err)
			}
			log.Warn().Int("status", apiErr.HTTPStatusCode).Str("message", apiErr.Message).Msg("Chunk recognition failed")
			return stt.Failed(apiErr.Message), nil
		}
		return stt.Outcome{}, fmt.Errorf("transcription request failed: %w", err)
	}

	if resp.Text == "" {
		log.Debug().Msg("No speech detected in chunk")
		return stt.NoSpeech(), nil
	}
	return stt.TextOutcome(resp.Text), nil
}
