package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/logging"
	"github.com/teemow/calimport/internal/server"
	"github.com/teemow/calimport/internal/tools/calendar_tools"
	"github.com/teemow/calimport/internal/tools/google_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server
	Enabled bool

	// Addr is the address for the metrics server (e.g., "127.0.0.1:9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		readOnly       bool
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server on stdio to provide calendar
registration tools for AI assistants.

Safety Mode:
  With --read-only the register and delete tools are not registered; nothing
  can be written to or deleted from a calendar.

Metrics:
  When telemetry is enabled with the prometheus exporter, --metrics-enabled
  serves /metrics, /healthz and /readyz on --metrics-addr.

Accounts must be authorized with 'calimport auth login' first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}
			return runServe(cmd, readOnly, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Only register tools that do not write to a calendar")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Serve metrics and health checks when telemetry is enabled")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Metrics server address (default: telemetry.metricsaddr or "+server.DefaultMetricsAddr+")")

	return cmd
}

func runServe(cmd *cobra.Command, readOnly bool, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries the MCP protocol; logs go to stderr.
	a, err := newApp(shutdownCtx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeApp(a)

	if _, err := a.authenticator(); err != nil {
		a.logger.Warn("Google access unavailable until an OAuth client is configured", logging.Err(err))
	}

	serverContext, err := server.NewServerContext(shutdownCtx, server.Options{
		Config:        a.cfg,
		Authenticator: a.auth,
		Provider:      a.provider,
		Logger:        a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			a.logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	health := server.NewHealthChecker(serverContext)

	if metricsConfig.Addr == "" {
		metricsConfig.Addr = a.cfg.Telemetry.MetricsAddr
	}
	if metricsConfig.Enabled && a.provider.Enabled() && a.provider.Config().MetricsExporter == instrumentation.ExporterPrometheus {
		metricsServer, err := startMetricsServer(health, a.provider, metricsConfig, a.logger)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				a.logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	// Note: mcp.Implementation has Title field but WithTitle() ServerOption not available in v0.43.0
	mcpSrv := mcpserver.NewMCPServer("calimport", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}
	health.SetReady(true)

	if readOnly {
		a.logger.Info("starting MCP server in read-only mode")
	} else {
		a.logger.Info("starting MCP server")
	}
	return runStdioServer(shutdownCtx, mcpSrv)
}

func startMetricsServer(health *server.HealthChecker, provider *instrumentation.Provider, cfg MetricsConfig, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    cfg.Addr,
		InstrumentationProvider: provider,
		Health:                  health,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	// Give the listener a moment to fail on a taken port.
	select {
	case err, ok := <-metricsErr:
		if ok {
			return nil, fmt.Errorf("metrics server failed to start: %w", err)
		}
	case <-time.After(200 * time.Millisecond):
	}
	return metricsServer, nil
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}

// registerAllTools registers all MCP tools
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	if err := calendar_tools.RegisterCalendarTools(mcpSrv, ctx, readOnly); err != nil {
		return fmt.Errorf("failed to register Calendar tools: %w", err)
	}
	if err := google_tools.RegisterGoogleTools(mcpSrv, ctx); err != nil {
		return fmt.Errorf("failed to register Google tools: %w", err)
	}
	return nil
}
