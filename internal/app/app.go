// Package app wires repositories, domain services and surfaces on top of
// an open store.
package app

import (
	"log/slog"
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/crewsync/internal/domain/accesslog"
	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/gcaccess"
	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/domain/reconcile"
	"github.com/ganot/crewsync/internal/domain/tmtag"
	"github.com/ganot/crewsync/internal/mcp"
	"github.com/ganot/crewsync/internal/store"
	"github.com/ganot/crewsync/internal/transport"
)

// Options tune the wiring.
type Options struct {
	PinMaxAttempts int
	AuthEnabled    bool
	// TransportMode is "http" or "stdio".
	TransportMode string
	TrustProxy    bool
}

// App holds the wired services.
type App struct {
	DB         *store.DB
	Projects   *project.Service
	CrewLogs   *crewlog.Service
	Tags       *tmtag.Service
	Engine     *reconcile.Engine
	Gate       *gcaccess.Service
	AccessLogs *accesslog.Service
	APIKeys    *store.APIKeyRepository

	opts   Options
	logger *slog.Logger
}

// New builds every service on top of db.
func New(db *store.DB, opts Options, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	projectRepo := store.NewProjectRepository(db)
	crewLogRepo := store.NewCrewLogRepository(db)
	tagRepo := store.NewTagRepository(db)
	accessLogRepo := store.NewAccessLogRepository(db)

	engine := reconcile.NewEngine(projectRepo, crewLogRepo, tagRepo, logger.With("component", "sync"))
	accessLogSvc := accesslog.NewService(accessLogRepo, logger)

	var gateOpts []gcaccess.Option
	if opts.PinMaxAttempts > 0 {
		gateOpts = append(gateOpts, gcaccess.WithMaxAttempts(opts.PinMaxAttempts))
	}

	return &App{
		DB:         db,
		Projects:   project.NewService(projectRepo, logger),
		CrewLogs:   crewlog.NewService(crewLogRepo, engine, logger),
		Tags:       tmtag.NewService(tagRepo, engine, logger),
		Engine:     engine,
		Gate:       gcaccess.NewService(projectRepo, accessLogSvc, logger.With("component", "gc_access"), gateOpts...),
		AccessLogs: accessLogSvc,
		APIKeys:    store.NewAPIKeyRepository(db),
		opts:       opts,
		logger:     logger,
	}
}

// MCPServer returns the operator tool server.
func (a *App) MCPServer() *sdkmcp.Server {
	return mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects:   a.Projects,
			CrewLogs:   a.CrewLogs,
			Sync:       a.Engine,
			Pins:       a.Gate,
			AccessLogs: a.AccessLogs,
		},
		Resolver:      a.APIKeys,
		AuthEnabled:   a.opts.AuthEnabled,
		TransportMode: a.opts.TransportMode,
		Logger:        a.logger,
	})
}

// Handler returns the REST API with the MCP endpoint mounted at /mcp.
func (a *App) Handler() http.Handler {
	var auth func(http.Handler) http.Handler
	if a.opts.AuthEnabled {
		auth = transport.AuthMiddleware(a.APIKeys)
	} else {
		auth = transport.NoAuthMiddleware("local")
	}

	return transport.NewServer(transport.Config{
		Services: transport.Services{
			Projects:   a.Projects,
			CrewLogs:   a.CrewLogs,
			Tags:       a.Tags,
			Sync:       a.Engine,
			Pins:       a.Gate,
			AccessLogs: a.AccessLogs,
		},
		Auth:       auth,
		MCP:        mcp.NewHTTPHandler(a.MCPServer()),
		TrustProxy: a.opts.TrustProxy,
		Logger:     a.logger,
	})
}
