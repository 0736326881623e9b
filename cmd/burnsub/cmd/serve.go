package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/burnsub/burnsub/pkg/logger"
	"github.com/burnsub/burnsub/pkg/server"
	"github.com/burnsub/burnsub/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the captioning HTTP API",
	Long: `Start the HTTP server exposing the captioning pipeline.

Each client works inside a session workspace identified by the
X-Session-Id header. Workspaces expire after a period of inactivity.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	pipe, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	sessions, err := session.NewStore(cfg.Session.Dir, cfg.Session.TTL)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing session store")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sessions.Run(ctx, cfg.Session.SweepInterval)

	handlers := server.NewHandlers(sessions, pipe, cfg.Server.MaxUploadMB)
	srv := server.New(cfg.Server, handlers)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
