package mcp_server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	ddclient "github.com/datadog-community/datadog-mcp-server/internal/client"
	"github.com/datadog-community/datadog-mcp-server/internal/config"
	"github.com/datadog-community/datadog-mcp-server/internal/contextutil"
	"github.com/datadog-community/datadog-mcp-server/internal/handler/tools"
)

const shutdownTimeout = 10 * time.Second

type MCPServer struct {
	logger  *zap.Logger
	handler *tools.Handler
	config  *config.Config
}

func NewMCPServer(log *zap.Logger, handler *tools.Handler, cfg *config.Config) *MCPServer {
	return &MCPServer{logger: log, handler: handler, config: cfg}
}

func (m *MCPServer) Start() error {
	s := server.NewMCPServer("DatadogMCP", "0.1.0", server.WithLogging(), server.WithToolCapabilities(false))

	m.logger.Info("Starting Datadog MCP Server",
		zap.String("site", m.config.Site),
		zap.String("deployment_mode", m.config.DeploymentMode))

	m.handler.RegisterLogsHandlers(s)
	m.handler.RegisterTracesHandlers(s)

	m.logger.Info("All handlers registered successfully")

	if m.config.DeploymentMode == config.ModeCloud {
		return m.startCloud(s)
	}
	return m.startLocal(s)
}

func (m *MCPServer) startLocal(s *server.MCPServer) error {
	m.logger.Info("MCP Server running in LOCAL mode (stdio)")
	return server.ServeStdio(s)
}

func (m *MCPServer) startCloud(s *server.MCPServer) error {
	m.logger.Info("MCP Server running in cloud hosted mode")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%s", m.config.Port)

	httpServer := server.NewStreamableHTTPServer(s,
		server.WithHTTPContextFunc(credentialsFromRequest),
	)
	mux := http.NewServeMux()
	mux.Handle("/mcp", httpServer)

	srv := &http.Server{Addr: addr, Handler: mux}

	m.logger.Info("Listening for MCP clients",
		zap.String("addr", addr),
		zap.String("mcp_endpoint", "/mcp"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		m.logger.Info("Shutting down MCP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// credentialsFromRequest lets each hosted-mode client bring its own keys;
// requests without both headers fall back to the server's configured pair.
func credentialsFromRequest(ctx context.Context, r *http.Request) context.Context {
	apiKey := r.Header.Get(ddclient.APIKeyHeader)
	appKey := r.Header.Get(ddclient.AppKeyHeader)
	if apiKey == "" || appKey == "" {
		return ctx
	}
	return contextutil.SetCredentials(ctx, contextutil.Credentials{APIKey: apiKey, AppKey: appKey})
}
