// Wikidot MCP Server - A Model Context Protocol server for Wikidot sites
// Provides tools for listing, reading, tagging, renaming, and deleting pages
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olgasafonova/wikidot-mcp-server/internal/wikidot"
	"github.com/olgasafonova/wikidot-mcp-server/tools"
	"github.com/olgasafonova/wikidot-mcp-server/tracing"
)

const (
	ServerName    = "wikidot-mcp-server"
	ServerVersion = "1.0.0"
)

const serverInstructions = `Wikidot MCP Server provides tools for one Wikidot site.

Read tools work anonymously. Write tools (wikidot_edit_tags, wikidot_rename_page,
wikidot_delete_page) log in with WIKIDOT_USERNAME and WIKIDOT_PASSWORD on first use.

Page IDs come from the Crom GraphQL mirror, falling back to the page HTML.
Failed upstream requests are retried with a linear backoff, so a dead site can
take several minutes to surface an error.

Configure via environment variables:
- WIKIDOT_URL: Site root (e.g., https://scp-wiki.wikidot.com)
- WIKIDOT_USERNAME / WIKIDOT_PASSWORD: Account for write tools
- WIKIDOT_CONFIG: Optional YAML config file`

func main() {
	configPath := flag.String("config", os.Getenv("WIKIDOT_CONFIG"), "path to a YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(ServerName, ServerVersion)
		return
	}

	// A missing .env file is fine
	_ = godotenv.Load()

	// Configure logging to stderr (stdout is used for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(os.Getenv("WIKIDOT_LOG_LEVEL")),
	}))

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracingCfg := tracing.DefaultConfig()
	tracingCfg.ServiceVersion = ServerVersion
	shutdownTracing, err := tracing.Setup(ctx, tracingCfg)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	client, err := wikidot.NewClient(config, wikidot.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create Wikidot client: %v", err)
	}
	defer client.Close()

	if addr := os.Getenv("WIKIDOT_METRICS_ADDR"); addr != "" {
		go serveMetrics(ctx, addr, logger)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: serverInstructions,
	})

	tools.NewHandlerRegistry(client, logger).RegisterAll(server)

	logger.Info("Starting Wikidot MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"site", client.SiteName(),
		"url", config.BaseURL,
		"authenticated_tools", config.HasCredentials(),
	)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the YAML file at path when given, otherwise the environment
func loadConfig(path string) (*wikidot.Config, error) {
	if path != "" {
		return wikidot.LoadConfigFile(path)
	}
	return wikidot.LoadConfig()
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newMetricsHandler exposes the Prometheus registry
func newMetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           newMetricsHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server failed", "error", err)
	}
}
