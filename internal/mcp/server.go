package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/crewsync/internal/domain/accesslog"
	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/gcaccess"
	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/domain/reconcile"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	List(ctx context.Context) ([]project.Summary, error)
}

// CrewLogService defines crew log reads needed by MCP.
type CrewLogService interface {
	ListUnsynced(ctx context.Context, projectID string) ([]crewlog.CrewLog, error)
}

// SyncService defines manual reconciliation.
type SyncService interface {
	ManualSync(ctx context.Context, crewLogID string) (*reconcile.Result, error)
	RetryPending(ctx context.Context, projectID string) ([]reconcile.Result, error)
}

// PinService defines GC PIN administration.
type PinService interface {
	EnsurePin(ctx context.Context, projectID string) (gcaccess.PinInfo, error)
	IssuePin(ctx context.Context, projectID string) (gcaccess.PinInfo, error)
}

// AccessLogService defines audit trail reads.
type AccessLogService interface {
	List(ctx context.Context, opts accesslog.ListOptions) ([]accesslog.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects   ProjectService
	CrewLogs   CrewLogService
	Sync       SyncService
	Pins       PinService
	AccessLogs AccessLogService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      OperatorResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "crewsync",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	// Stdio is local-only, so it never authenticates.
	if cfg.TransportMode == "stdio" || !cfg.AuthEnabled {
		server.AddReceivingMiddleware(noAuthMiddleware("local"))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, cfg.Services, logger)

	return server
}

// NewHTTPHandler serves server over the streamable HTTP transport.
func NewHTTPHandler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)
}
