package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/datadog-community/datadog-mcp-server/internal/analytics"
	"github.com/datadog-community/datadog-mcp-server/internal/client"
	"github.com/datadog-community/datadog-mcp-server/internal/config"
	"github.com/datadog-community/datadog-mcp-server/internal/handler/tools"
	"github.com/datadog-community/datadog-mcp-server/internal/logger"
	mcpserver "github.com/datadog-community/datadog-mcp-server/internal/mcp-server"
	"github.com/datadog-community/datadog-mcp-server/internal/telemetry"
	"github.com/datadog-community/datadog-mcp-server/pkg/dderr"
)

func main() {
	log, err := logger.NewLogger(logger.LogLevel(os.Getenv(config.EnvLogLevel)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(dderr.Classify(err).Error())
	}

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Init(ctx, log, "datadog-mcp-server")
	if err != nil {
		log.Warn("Failed to initialize telemetry", zap.Error(err))
	} else {
		defer func() {
			if err := shutdownTelemetry(ctx); err != nil {
				log.Warn("Telemetry shutdown failed", zap.Error(err))
			}
		}()
	}

	reporter := analytics.New(log, cfg.AnalyticsKey)
	defer reporter.Close()

	ddClient := client.NewClient(log, cfg.BaseURL(), cfg.APIKey, cfg.AppKey)
	handler := tools.NewHandler(log, ddClient, cfg.BaseURL(), reporter)

	if err := mcpserver.NewMCPServer(log, handler, cfg).Start(); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
