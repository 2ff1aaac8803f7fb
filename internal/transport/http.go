package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ganot/crewsync/internal/domain/accesslog"
	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/gcaccess"
	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/domain/reconcile"
	"github.com/ganot/crewsync/internal/domain/tmtag"
)

// ProjectService defines project operations needed by the API.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context) ([]project.Summary, error)
	Delete(ctx context.Context, id string) error
}

// CrewLogService defines crew log operations needed by the API.
type CrewLogService interface {
	Create(ctx context.Context, req crewlog.CreateRequest) (*crewlog.CrewLog, error)
	Update(ctx context.Context, req crewlog.UpdateRequest) (*crewlog.CrewLog, error)
	Get(ctx context.Context, id string) (*crewlog.CrewLog, error)
	ListUnsynced(ctx context.Context, projectID string) ([]crewlog.CrewLog, error)
}

// TagService defines T&M tag operations needed by the API.
type TagService interface {
	Create(ctx context.Context, req tmtag.CreateRequest) (*tmtag.Tag, error)
	Update(ctx context.Context, req tmtag.UpdateRequest) (*tmtag.Tag, error)
	Get(ctx context.Context, id string) (*tmtag.Tag, error)
	List(ctx context.Context, opts tmtag.ListOptions) ([]tmtag.Tag, error)
	Transition(ctx context.Context, id string, to tmtag.Status) (*tmtag.Tag, error)
}

// SyncService defines the synchronous reconciliation entry points.
type SyncService interface {
	ManualSync(ctx context.Context, crewLogID string) (*reconcile.Result, error)
	RetryPending(ctx context.Context, projectID string) ([]reconcile.Result, error)
}

// PinService defines GC PIN operations.
type PinService interface {
	EnsurePin(ctx context.Context, projectID string) (gcaccess.PinInfo, error)
	IssuePin(ctx context.Context, projectID string) (gcaccess.PinInfo, error)
	Validate(ctx context.Context, req gcaccess.ValidateRequest) (*gcaccess.Grant, error)
}

// AccessLogService defines audit trail reads.
type AccessLogService interface {
	List(ctx context.Context, opts accesslog.ListOptions) ([]accesslog.Entry, error)
}

// Services contains all domain services needed by the API.
type Services struct {
	Projects   ProjectService
	CrewLogs   CrewLogService
	Tags       TagService
	Sync       SyncService
	Pins       PinService
	AccessLogs AccessLogService
}

// Config wires the HTTP server.
type Config struct {
	Services Services
	// Auth guards operator routes. Nil leaves them open.
	Auth func(http.Handler) http.Handler
	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
	// TrustProxy takes the client address from X-Forwarded-For style
	// headers. Enable only behind a proxy that sets them.
	TrustProxy bool
	Logger     *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	services Services
	logger   *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{services: cfg.Services, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(ClientIPMiddleware(cfg.TrustProxy))

	r.Get("/health", srv.handleHealth)

	// GC dashboard access is public; the PIN is the credential.
	r.Post("/gc/access", srv.handleGCAccess)
	r.Post("/projects/{projectID}/gc/access", srv.handleGCAccess)

	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
		r.Handle("/mcp/*", cfg.MCP)
	}

	r.Group(func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(cfg.Auth)
		}

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", srv.handleCreateProject)
			r.Get("/", srv.handleListProjects)
			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", srv.handleGetProject)
				r.Delete("/", srv.handleDeleteProject)
				r.Get("/pin", srv.handleEnsurePin)
				r.Post("/pin", srv.handleIssuePin)
				r.Get("/access-logs", srv.handleListAccessLogs)
				r.Get("/crew-logs/unsynced", srv.handleListUnsynced)
				r.Post("/crew-logs/sync", srv.handleRetryPending)
				r.Get("/tm-tags", srv.handleListTags)
			})
		})

		r.Route("/crew-logs", func(r chi.Router) {
			r.Post("/", srv.handleCreateCrewLog)
			r.Get("/{crewLogID}", srv.handleGetCrewLog)
			r.Put("/{crewLogID}", srv.handleUpdateCrewLog)
			r.Post("/{crewLogID}/sync", srv.handleManualSync)
		})

		r.Route("/tm-tags", func(r chi.Router) {
			r.Post("/", srv.handleCreateTag)
			r.Get("/{tagID}", srv.handleGetTag)
			r.Put("/{tagID}", srv.handleUpdateTag)
			r.Post("/{tagID}/status", srv.handleTransitionTag)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// writeError maps err and logs anything that is not a client mistake.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := mapError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeErrorBody(w, apiErr.Status, apiErr.Code, apiErr.Message)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	writeErrorBody(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
}
