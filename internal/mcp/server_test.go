package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/ganot/crewsync/internal/domain/accesslog"
	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/gcaccess"
	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/domain/reconcile"
)

type projectStub struct {
	createFn func(context.Context, project.CreateRequest) (*project.Project, error)
	listFn   func(context.Context) ([]project.Summary, error)
}

func (p projectStub) Create(ctx context.Context, req project.CreateRequest) (*project.Project, error) {
	return p.createFn(ctx, req)
}
func (p projectStub) List(ctx context.Context) ([]project.Summary, error) {
	return p.listFn(ctx)
}

type crewLogStub struct {
	listUnsyncedFn func(context.Context, string) ([]crewlog.CrewLog, error)
}

func (c crewLogStub) ListUnsynced(ctx context.Context, projectID string) ([]crewlog.CrewLog, error) {
	return c.listUnsyncedFn(ctx, projectID)
}

type syncStub struct {
	manualFn func(context.Context, string) (*reconcile.Result, error)
	retryFn  func(context.Context, string) ([]reconcile.Result, error)
}

func (s syncStub) ManualSync(ctx context.Context, id string) (*reconcile.Result, error) {
	return s.manualFn(ctx, id)
}
func (s syncStub) RetryPending(ctx context.Context, projectID string) ([]reconcile.Result, error) {
	return s.retryFn(ctx, projectID)
}

type pinStub struct {
	ensureFn func(context.Context, string) (gcaccess.PinInfo, error)
	issueFn  func(context.Context, string) (gcaccess.PinInfo, error)
}

func (p pinStub) EnsurePin(ctx context.Context, projectID string) (gcaccess.PinInfo, error) {
	return p.ensureFn(ctx, projectID)
}
func (p pinStub) IssuePin(ctx context.Context, projectID string) (gcaccess.PinInfo, error) {
	return p.issueFn(ctx, projectID)
}

type accessLogStub struct {
	listFn func(context.Context, accesslog.ListOptions) ([]accesslog.Entry, error)
}

func (a accessLogStub) List(ctx context.Context, opts accesslog.ListOptions) ([]accesslog.Entry, error) {
	return a.listFn(ctx, opts)
}

type staticResolver map[string]string

func (r staticResolver) ResolveOperator(_ context.Context, token string) (string, error) {
	op, ok := r[token]
	if !ok {
		return "", errors.New("unknown token")
	}
	return op, nil
}

func connect(t *testing.T, services Services) *sdkmcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	server := NewServer(Config{Services: services, TransportMode: "stdio"})
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) (*sdkmcp.CallToolResult, string) {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	result, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	return result, text.Text
}

func TestServer_ListsTools(t *testing.T) {
	session := connect(t, Services{})

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	require.Equal(t, []string{
		"create_project",
		"list_access_logs",
		"list_projects",
		"list_unsynced_crew_logs",
		"manual_sync",
		"retry_pending_sync",
		"rotate_pin",
		"show_pin",
	}, names)
}

func TestTools_CreateAndListProjects(t *testing.T) {
	var created project.CreateRequest
	session := connect(t, Services{Projects: projectStub{
		createFn: func(_ context.Context, req project.CreateRequest) (*project.Project, error) {
			created = req
			return &project.Project{ID: "P1", Name: req.Name, Status: project.StatusActive}, nil
		},
		listFn: func(context.Context) ([]project.Summary, error) {
			return []project.Summary{{ID: "P1", Name: "Riverside Clinic"}}, nil
		},
	}})

	res, text := callTool(t, session, "create_project", map[string]any{"name": "Riverside Clinic", "client_company": "Harbor GC"})
	require.False(t, res.IsError)
	require.Equal(t, "Harbor GC", created.ClientCompany)
	require.Contains(t, text, `"id":"P1"`)

	res, text = callTool(t, session, "list_projects", nil)
	require.False(t, res.IsError)
	var list ProjectListResponse
	require.NoError(t, json.Unmarshal([]byte(text), &list))
	require.Len(t, list.Projects, 1)
}

func TestTools_ShowAndRotatePin(t *testing.T) {
	session := connect(t, Services{Pins: pinStub{
		ensureFn: func(_ context.Context, projectID string) (gcaccess.PinInfo, error) {
			return gcaccess.PinInfo{ProjectID: projectID, Pin: "4821"}, nil
		},
		issueFn: func(_ context.Context, projectID string) (gcaccess.PinInfo, error) {
			if projectID == "missing" {
				return gcaccess.PinInfo{}, gcaccess.ErrProjectNotFound
			}
			return gcaccess.PinInfo{ProjectID: projectID, Pin: "7310"}, nil
		},
	}})

	_, text := callTool(t, session, "show_pin", map[string]any{"project_id": "P2"})
	var info gcaccess.PinInfo
	require.NoError(t, json.Unmarshal([]byte(text), &info))
	require.Equal(t, "4821", info.Pin)
	require.False(t, info.Used)

	_, text = callTool(t, session, "rotate_pin", map[string]any{"project_id": "P2"})
	require.Contains(t, text, "7310")

	res, text := callTool(t, session, "rotate_pin", map[string]any{"project_id": "missing"})
	require.True(t, res.IsError)
	require.Contains(t, text, "PROJECT_NOT_FOUND")
}

func TestTools_ManualSync(t *testing.T) {
	session := connect(t, Services{Sync: syncStub{
		manualFn: func(_ context.Context, id string) (*reconcile.Result, error) {
			switch id {
			case "ok":
				return &reconcile.Result{CrewLogID: id, TMTagID: "tag-1", Created: true}, nil
			case "orphan":
				return &reconcile.Result{CrewLogID: id, Error: reconcile.ErrProjectNotFound.Error()}, reconcile.ErrProjectNotFound
			default:
				return nil, reconcile.ErrCrewLogNotFound
			}
		},
	}})

	res, text := callTool(t, session, "manual_sync", map[string]any{"crew_log_id": "ok"})
	require.False(t, res.IsError)
	var ok reconcile.Result
	require.NoError(t, json.Unmarshal([]byte(text), &ok))
	require.Equal(t, "tag-1", ok.TMTagID)

	res, text = callTool(t, session, "manual_sync", map[string]any{"crew_log_id": "orphan"})
	require.True(t, res.IsError)
	var failed reconcile.Result
	require.NoError(t, json.Unmarshal([]byte(text), &failed))
	require.Equal(t, "project not found", failed.Error)
	require.Empty(t, failed.TMTagID)

	res, text = callTool(t, session, "manual_sync", map[string]any{"crew_log_id": "nope"})
	require.True(t, res.IsError)
	require.Contains(t, text, "CREW_LOG_NOT_FOUND")
}

func TestTools_RetryPendingCounts(t *testing.T) {
	session := connect(t, Services{Sync: syncStub{
		retryFn: func(_ context.Context, projectID string) ([]reconcile.Result, error) {
			return []reconcile.Result{
				{CrewLogID: "a", TMTagID: "tag-1"},
				{CrewLogID: "b", Error: "no crew data"},
			}, nil
		},
	}})

	_, text := callTool(t, session, "retry_pending_sync", map[string]any{"project_id": "P1"})
	var resp RetryResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	require.Equal(t, 1, resp.Synced)
	require.Equal(t, 1, resp.Failed)
}

func TestTools_ListUnsyncedAndAccessLogs(t *testing.T) {
	var gotOpts accesslog.ListOptions
	session := connect(t, Services{
		CrewLogs: crewLogStub{listUnsyncedFn: func(_ context.Context, projectID string) ([]crewlog.CrewLog, error) {
			return nil, nil
		}},
		AccessLogs: accessLogStub{listFn: func(_ context.Context, opts accesslog.ListOptions) ([]accesslog.Entry, error) {
			gotOpts = opts
			return []accesslog.Entry{{ID: 1, ProjectID: "P1", Status: accesslog.StatusFailed}}, nil
		}},
	})

	_, text := callTool(t, session, "list_unsynced_crew_logs", map[string]any{"project_id": "P1"})
	require.JSONEq(t, `{"project_id":"P1","crew_logs":[]}`, text)

	_, text = callTool(t, session, "list_access_logs", map[string]any{"project_id": "P1", "status": "failed", "limit": 5})
	require.NotNil(t, gotOpts.Status)
	require.Equal(t, accesslog.StatusFailed, *gotOpts.Status)
	require.Equal(t, 5, gotOpts.Limit)
	require.Contains(t, text, `"status":"failed"`)
}

func TestAuthMiddleware(t *testing.T) {
	resolver := staticResolver{"good": "ops@crewsync"}
	var seen string
	handler := authMiddleware(resolver)(func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
		seen = getOperator(ctx)
		return nil, nil
	})

	request := func(header string) sdkmcp.Request {
		h := http.Header{}
		if header != "" {
			h.Set("Authorization", header)
		}
		return &sdkmcp.CallToolRequest{Extra: &sdkmcp.RequestExtra{Header: h}}
	}

	_, err := handler(context.Background(), "tools/call", request("Bearer good"))
	require.NoError(t, err)
	require.Equal(t, "ops@crewsync", seen)

	_, err = handler(context.Background(), "tools/call", request("Bearer bad"))
	require.ErrorContains(t, err, "unauthorized")

	_, err = handler(context.Background(), "tools/call", request(""))
	require.ErrorContains(t, err, "unauthorized")

	_, err = handler(context.Background(), "initialize", request(""))
	require.NoError(t, err)
}

func TestMapError(t *testing.T) {
	var apiErr *APIError
	require.ErrorAs(t, MapError(project.ErrProjectNotFound), &apiErr)
	require.Equal(t, "PROJECT_NOT_FOUND", apiErr.Code)

	require.ErrorAs(t, MapError(reconcile.ErrNoCrewData), &apiErr)
	require.Equal(t, "NO_CREW_DATA", apiErr.Code)

	other := errors.New("boom")
	require.Equal(t, other, MapError(other))
	require.NoError(t, MapError(nil))
}
