package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/burnsub/burnsub/pkg/logger"
)

// Config represents the application configuration
type Config struct {
	// HTTP server configuration
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Media toolchain configuration
	Media MediaConfig `yaml:"media" mapstructure:"media"`

	// Transcription configuration
	Transcribe TranscribeConfig `yaml:"transcribe" mapstructure:"transcribe"`

	// Session workspace configuration
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// Watch mode configuration
	Watch WatchConfig `yaml:"watch" mapstructure:"watch"`

	// Logging configuration
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	CORSOrigins  []string      `yaml:"cors_origins" mapstructure:"cors_origins"`
	MaxUploadMB  int64         `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// MediaConfig contains media toolchain settings
type MediaConfig struct {
	// Path to the ffmpeg binary
	FFmpegPath string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`

	// Time budget for a single toolchain invocation
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// TranscribeConfig contains transcription settings
type TranscribeConfig struct {
	// Recognizer backend: "whisper" (local CLI) or "openai" (hosted API)
	Recognizer string `yaml:"recognizer" mapstructure:"recognizer"`

	// Transcription window length in seconds
	ChunkSeconds int `yaml:"chunk_seconds" mapstructure:"chunk_seconds"`

	// Concurrent recognition workers
	Workers int `yaml:"workers" mapstructure:"workers"`

	// Recognition language ("" = auto-detect)
	Language string `yaml:"language" mapstructure:"language"`

	// Local whisper.cpp settings
	WhisperBinary string `yaml:"whisper_binary" mapstructure:"whisper_binary"`
	WhisperModel  string `yaml:"whisper_model" mapstructure:"whisper_model"`

	// Hosted API settings
	APIKey     string `yaml:"api_key" mapstructure:"api_key"`
	APIBaseURL string `yaml:"api_base_url" mapstructure:"api_base_url"`
	Model      string `yaml:"model" mapstructure:"model"`
}

// SessionConfig contains session workspace settings
type SessionConfig struct {
	// Root directory holding per-session workspaces
	Dir string `yaml:"dir" mapstructure:"dir"`

	// How long an untouched workspace survives
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`

	// How often expired workspaces are swept
	SweepInterval time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
}

// WatchConfig contains watch mode settings
type WatchConfig struct {
	// File patterns to pick up (e.g. "*.mp4")
	Patterns []string `yaml:"patterns" mapstructure:"patterns"`

	// Time to wait for file stability before processing
	StabilityWait time.Duration `yaml:"stability_wait" mapstructure:"stability_wait"`

	// Maximum number of concurrent processing workers
	MaxWorkers int `yaml:"max_workers" mapstructure:"max_workers"`

	// Path to the BoltDB history database
	HistoryDB string `yaml:"history_db" mapstructure:"history_db"`

	// Directory to write captioned videos to (default: alongside input)
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8000",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 15 * time.Minute,
			CORSOrigins:  []string{"http://localhost:3000"},
			MaxUploadMB:  512,
		},
		Media: MediaConfig{
			FFmpegPath: "ffmpeg",
			Timeout:    10 * time.Minute,
		},
		Transcribe: TranscribeConfig{
			Recognizer:    "whisper",
			ChunkSeconds:  3,
			Workers:       3,
			WhisperBinary: "whisper-cli",
		},
		Session: SessionConfig{
			Dir:           filepath.Join(os.TempDir(), "burnsub-sessions"),
			TTL:           1 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Watch: WatchConfig{
			Patterns:      []string{"*.mp4", "*.mov", "*.mkv", "*.avi"},
			StabilityWait: 2 * time.Second,
			MaxWorkers:    2,
			HistoryDB:     ".burnsub-watch.db",
		},
		Logging: *logger.DefaultConfig(),
	}
}
