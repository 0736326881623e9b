package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/burnsub/burnsub/pkg/config"
	"github.com/burnsub/burnsub/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "burnsub",
	Short: "Burn speech-derived subtitles into videos",
	Long: `burnsub extracts a video's audio track, transcribes it in short windows
and burns the resulting captions back into the video.

Features:
- Chunked speech recognition with a local whisper.cpp binary or a hosted API
- SRT subtitle generation with proportional per-cue timing
- Styled burn-in (font size and color) via ffmpeg
- HTTP API with per-session workspaces and automatic expiry
- Watch mode that captions videos as they land in a directory`,
	Version: "1.0.0",
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.burnsub.yaml)")

	// Logging flags
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (console, json)")
	rootCmd.PersistentFlags().String("log-output", "", "log output (stdout, stderr, file path)")
	rootCmd.PersistentFlags().Bool("log-no-color", false, "disable colored log output")
}

// initConfig loads configuration and initializes the logger
func initConfig() {
	loader := config.NewLoader(cfgFile)

	loaded, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	// Flags win over file and environment values
	if v, _ := rootCmd.PersistentFlags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("log-format"); v != "" {
		cfg.Logging.Format = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("log-output"); v != "" {
		cfg.Logging.Output = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("log-no-color"); v {
		cfg.Logging.NoColor = true
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if used := loader.GetConfigFile(); used != "" {
		logger.Info().Str("config_file", used).Msg("Loaded configuration file")
	}
}
