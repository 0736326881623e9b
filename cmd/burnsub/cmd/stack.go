package cmd

import (
	"fmt"
	"time"

	"github.com/burnsub/burnsub/pkg/audio"
	"github.com/burnsub/burnsub/pkg/config"
	"github.com/burnsub/burnsub/pkg/media"
	"github.com/burnsub/burnsub/pkg/pipeline"
	"github.com/burnsub/burnsub/pkg/stt"
	"github.com/burnsub/burnsub/pkg/stt/openai"
	"github.com/burnsub/burnsub/pkg/stt/whisper"
)

// buildPipeline assembles the captioning pipeline from configuration
func buildPipeline(cfg *config.Config) (pipeline.Pipeline, error) {
	toolchain := media.NewFFmpeg(
		media.WithBinary(cfg.Media.FFmpegPath),
		media.WithTimeout(cfg.Media.Timeout),
	)

	chunker := audio.NewChunker(toolchain, time.Duration(cfg.Transcribe.ChunkSeconds)*time.Second)

	recognizer, err := buildRecognizer(cfg)
	if err != nil {
		return nil, err
	}

	return pipeline.New(toolchain, chunker, recognizer,
		pipeline.WithWorkers(cfg.Transcribe.Workers),
	), nil
}

// buildRecognizer creates the configured speech recognizer backend
func buildRecognizer(cfg *config.Config) (stt.Recognizer, error) {
	var recognizer stt.Recognizer

	switch cfg.Transcribe.Recognizer {
	case "whisper":
		recognizer = whisper.NewRecognizer(
			cfg.Transcribe.WhisperBinary,
			cfg.Transcribe.WhisperModel,
			whisper.WithLanguage(cfg.Transcribe.Language),
		)
	case "openai":
		opts := []openai.Option{
			openai.WithLanguage(cfg.Transcribe.Language),
		}
		if cfg.Transcribe.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Transcribe.Model))
		}
		if cfg.Transcribe.APIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.Transcribe.APIBaseURL))
		}
		recognizer = openai.NewRecognizer(cfg.Transcribe.APIKey, opts...)
	default:
		return nil, fmt.Errorf("unknown recognizer %q", cfg.Transcribe.Recognizer)
	}

	if err := recognizer.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("recognizer configuration invalid: %w", err)
	}
	return recognizer, nil
}
