// Command checkcreds validates the configured Datadog credentials without
// starting the MCP server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/datadog-community/datadog-mcp-server/internal/client"
	"github.com/datadog-community/datadog-mcp-server/internal/config"
	"github.com/datadog-community/datadog-mcp-server/internal/logger"
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
		fmt.Fprintln(os.Stderr, dderr.Classify(err).Error())
		os.Exit(1)
	}

	ddClient := client.NewClient(log, cfg.BaseURL(), cfg.APIKey, cfg.AppKey)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ddClient.ValidateCredentials(ctx); err != nil {
		fmt.Fprintln(os.Stderr, dderr.Classify(err).Error())
		os.Exit(1)
	}
	fmt.Printf("Credentials are valid for site %s\n", cfg.Site)
}
