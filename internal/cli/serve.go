package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/spetersoncode/reltime/internal/errors"
	"github.com/spetersoncode/reltime/internal/server"
)

// Serve command flags
var (
	servePort int
	serveHost string
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from config, 18808)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host address to bind to (default from config, 127.0.0.1)")

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	Long: `Start an HTTP server exposing the duration engine and the board as JSON.

Endpoints:
  GET    /api/health
  GET    /api/durations/parse?d=
  GET    /api/durations/round?d=&ref=
  GET    /api/durations/compare?a=&b=&ref=
  GET    /api/render?datetime=&format=&tense=&precision=&threshold=&style=&prefix=&now=
  GET    /api/board
  POST   /api/board
  GET    /api/board/{name}
  DELETE /api/board/{name}

Examples:
  reltime serve                    # Start on the configured port
  reltime serve --port 8080        # Start on custom port
  reltime serve --host 0.0.0.0     # Bind to all interfaces`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	database, _, err := openBoard()
	if err != nil {
		return err
	}
	defer database.Close()

	defaults, err := boardDefaults()
	if err != nil {
		return err
	}

	cfg := GetConfig()
	config := server.Config{
		Port:     cfg.Serve.Port,
		Host:     cfg.Serve.Host,
		DB:       database.DB,
		Defaults: defaults,
	}
	if servePort != 0 {
		config.Port = servePort
	}
	if serveHost != "" {
		config.Host = serveHost
	}

	srv, err := server.New(config)
	if err != nil {
		return apperrors.WrapInternal(err, "failed to create server")
	}

	// Handle graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	OutputLine("reltime API listening on http://%s", srv.Address())
	OutputLine("Press Ctrl+C to stop")

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return apperrors.WrapInternal(err, "server error")
		}
	case <-stop:
		OutputLine("\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return apperrors.WrapInternal(err, "shutdown error")
		}
	}

	OutputLine("Server stopped")
	return nil
}
