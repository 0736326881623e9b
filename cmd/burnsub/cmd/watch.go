package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/burnsub/burnsub/pkg/logger"
	"github.com/burnsub/burnsub/pkg/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and caption videos as they appear",
	Long: `Continuously monitor a directory for new video files and caption each
one automatically.

Already-processed files are remembered across restarts, keyed by path,
size and modification time.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("output-dir", "", "directory for captioned videos (default: alongside input)")
	watchCmd.Flags().Bool("process-existing", false, "caption files already present at startup")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	watchDir := args[0]
	log := logger.WithComponent("watch")

	info, err := os.Stat(watchDir)
	if err != nil {
		return fmt.Errorf("cannot access watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", watchDir)
	}

	outputDir, _ := cmd.Flags().GetString("output-dir")
	processExisting, _ := cmd.Flags().GetBool("process-existing")

	pipe, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	fw, err := watcher.NewFileWatcher(watcher.Options{
		WatchDir:        watchDir,
		Patterns:        cfg.Watch.Patterns,
		StabilityWait:   cfg.Watch.StabilityWait,
		MaxWorkers:      cfg.Watch.MaxWorkers,
		HistoryDB:       cfg.Watch.HistoryDB,
		OutputDir:       outputDir,
		ProcessExisting: processExisting,
	}, pipe)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := fw.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	cancel()
	return fw.Stop()
}
