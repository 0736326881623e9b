package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Loader handles configuration loading and management
type Loader struct {
	configPath string
	viper      *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader(configPath string) *Loader {
	v := viper.New()

	v.SetEnvPrefix("BURNSUB")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, _ := os.UserHomeDir()
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/burnsub")
		v.SetConfigName(".burnsub")
		v.SetConfigType("yaml")
	}

	return &Loader{
		configPath: configPath,
		viper:      v,
	}
}

// Load reads and returns the configuration
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	if err := l.viper.ReadInConfig(); err != nil {
		// Config file not found is not an error - defaults and env vars apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := l.viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// GetConfigFile returns the path to the config file being used
func (l *Loader) GetConfigFile() string {
	return l.viper.ConfigFileUsed()
}

// setDefaults sets default configuration values
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.viper.SetDefault("server.addr", defaults.Server.Addr)
	l.viper.SetDefault("server.read_timeout", defaults.Server.ReadTimeout)
	l.viper.SetDefault("server.write_timeout", defaults.Server.WriteTimeout)
	l.viper.SetDefault("server.cors_origins", defaults.Server.CORSOrigins)
	l.viper.SetDefault("server.max_upload_mb", defaults.Server.MaxUploadMB)

	l.viper.SetDefault("media.ffmpeg_path", defaults.Media.FFmpegPath)
	l.viper.SetDefault("media.timeout", defaults.Media.Timeout)

	l.viper.SetDefault("transcribe.recognizer", defaults.Transcribe.Recognizer)
	l.viper.SetDefault("transcribe.chunk_seconds", defaults.Transcribe.ChunkSeconds)
	l.viper.SetDefault("transcribe.workers", defaults.Transcribe.Workers)
	l.viper.SetDefault("transcribe.whisper_binary", defaults.Transcribe.WhisperBinary)

	l.viper.SetDefault("session.dir", defaults.Session.Dir)
	l.viper.SetDefault("session.ttl", defaults.Session.TTL)
	l.viper.SetDefault("session.sweep_interval", defaults.Session.SweepInterval)

	l.viper.SetDefault("watch.patterns", defaults.Watch.Patterns)
	l.viper.SetDefault("watch.stability_wait", defaults.Watch.StabilityWait)
	l.viper.SetDefault("watch.max_workers", defaults.Watch.MaxWorkers)
	l.viper.SetDefault("watch.history_db", defaults.Watch.HistoryDB)

	l.viper.SetDefault("logging.level", defaults.Logging.Level)
	l.viper.SetDefault("logging.format", defaults.Logging.Format)
	l.viper.SetDefault("logging.output", defaults.Logging.Output)
}

// validateConfig validates the loaded configuration
func (l *Loader) validateConfig(cfg *Config) error {
	switch cfg.Transcribe.Recognizer {
	case "whisper", "openai":
	default:
		return fmt.Errorf("unknown recognizer %q (want whisper or openai)", cfg.Transcribe.Recognizer)
	}

	if cfg.Transcribe.ChunkSeconds <= 0 {
		return fmt.Errorf("chunk_seconds must be positive")
	}
	if cfg.Transcribe.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if cfg.Media.Timeout <= 0 {
		return fmt.Errorf("media timeout must be positive")
	}
	if cfg.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	return nil
}
