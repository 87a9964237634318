package cli

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

	"github.com/athena-labs/athena-cli/internal/adapters/driving/api"
)

// shutdownTimeout bounds request draining on SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the HTTP API exposing search, ask, and stats endpoints.
The server binds to localhost by default and runs until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "bind address (default from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}

	host := serveHost
	if host == "" {
		host = settings.ServerHost
	}
	port := servePort
	if port == 0 {
		port = settings.ServerPort
	}

	server := api.NewServer(api.Config{
		Host:    host,
		Port:    port,
		Version: version,
	}, searchService, queryService, ingestService)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	cmd.Printf("Listening on http://%s\n", server.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-sigCh:
		cmd.Println("\nShutting down...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
