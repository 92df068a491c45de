package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdocs-mcp/internal/instrumentation"
	"github.com/teemow/gdocs-mcp/internal/logging"
	"github.com/teemow/gdocs-mcp/internal/server"
	"github.com/teemow/gdocs-mcp/internal/tools/docs_tools"
)

// MetricsConfig holds configuration for the metrics sidecar server.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		transport      string
		httpAddr       string
		baseURL        string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the MCP server exposing the Google Docs tools.

By default the server speaks the stdio transport for use as a subprocess of
an MCP client. With --transport sse it listens on --http-addr and serves the
SSE transport for remote clients.

OAuth client credentials are read from GOOGLE_CLIENT_ID and
GOOGLE_CLIENT_SECRET. Run 'gdocs-mcp auth' once per account to store tokens.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if transport != "stdio" && transport != "sse" {
				return fmt.Errorf("invalid transport %q, must be 'stdio' or 'sse'", transport)
			}
			return runServe(transport, debugMode, httpAddr, baseURL, MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport to use: 'stdio' or 'sse'")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "Listen address for the SSE transport")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL for the SSE transport (default: http://localhost<http-addr>)")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", false, "Start the Prometheus metrics server (SSE transport only)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Listen address for the metrics server")

	return cmd
}

func runServe(transport string, debugMode bool, httpAddr, baseURL string, metricsConfig MetricsConfig) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Logging goes to stderr so the stdio transport owns stdout.
	logger := logging.Setup(debugMode)

	// Environment can force the metrics server on for deployments that do
	// not control the flags.
	if !metricsConfig.Enabled && os.Getenv("METRICS_ENABLED") == "true" {
		metricsConfig.Enabled = true
	}
	if addr := os.Getenv("METRICS_ADDR"); addr != "" && metricsConfig.Addr == server.DefaultMetricsAddr {
		metricsConfig.Addr = addr
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	serverContext, err := server.NewServerContext(shutdownCtx)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = serverContext.Shutdown() }()

	serverContext.SetLogger(logger)
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
	}
	if instrConfig.AuditLogging.Enabled {
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}

	// The metrics server binds a port, so it only runs with a network
	// transport. It also carries the health probes, which report not-ready
	// once the server context shuts down.
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			InstrumentationProvider: provider,
			Health:                  server.NewHealthChecker(serverContext),
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	mcpSrv := mcpserver.NewMCPServer("gdocs-mcp", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := docs_tools.RegisterDocsTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register Docs tools: %w", err)
	}

	switch transport {
	case "sse":
		return runSSEServer(shutdownCtx, mcpSrv, httpAddr, baseURL, logger, metricsServer)
	default:
		return runStdioServer(mcpSrv)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	if err := <-serverDone; err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runSSEServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, addr, baseURL string, logger *slog.Logger, metricsServer *server.MetricsServer) error {
	if baseURL == "" {
		baseURL = os.Getenv("MCP_BASE_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost" + addr
	}

	sseServer := mcpserver.NewSSEServer(mcpSrv,
		mcpserver.WithBaseURL(baseURL),
	)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		logger.Info("SSE server listening", "addr", addr, "base_url", baseURL)
		if err := sseServer.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()

	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	if err := sseServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down SSE server: %w", err)
	}
	return nil
}
