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

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API and MCP server",
		Long: `Run the REST API with the MCP endpoint mounted at /mcp.

When the transport mode is "stdio" only the MCP server runs, over
stdin/stdout, and logs go to stderr.

Example:
  crewsync serve --config ./crewsync.yaml
  CREWSYNC_TRANSPORT_MODE=stdio crewsync serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, rootOpts)
		},
	}
}

func runServe(ctx context.Context, cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	console := cmd.OutOrStdout()
	if cfg.Transport.Mode == "stdio" {
		console = cmd.ErrOrStderr()
	}
	e, err := newEnv(ctx, cmd, opts, cfg, console)
	if err != nil {
		return err
	}
	defer e.close()

	if e.cfg.Transport.Mode == "stdio" {
		return runStdio(ctx, e)
	}
	return runHTTP(ctx, e)
}

func runStdio(ctx context.Context, e *env) error {
	e.logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or ctx is canceled.
	if err := e.app.MCPServer().Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "stdio server error", err)
	}
	return nil
}

func runHTTP(ctx context.Context, e *env) error {
	addr := fmt.Sprintf("%s:%d", e.cfg.Server.Host, e.cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           e.app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("server listening", "addr", addr, "auth", e.cfg.Auth.Enabled, "driver", e.cfg.DB.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return WrapExitError(ExitFailure, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e.logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		e.logger.Error("shutdown error", "error", err)
	}
	return nil
}
