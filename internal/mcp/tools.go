package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/crewsync/internal/domain/accesslog"
	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/domain/reconcile"
)

type tools struct {
	services Services
	logger   *slog.Logger
}

func registerTools(server *sdkmcp.Server, services Services, logger *slog.Logger) {
	t := &tools{services: services, logger: logger}

	// Projects
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create a construction project",
	}, t.createProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List projects, newest first",
	}, t.listProjects)

	// GC PINs
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "show_pin",
		Description: "Show the project's current GC dashboard PIN, creating one if it has none",
	}, t.showPin)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "rotate_pin",
		Description: "Replace the project's GC dashboard PIN, invalidating the previous one",
	}, t.rotatePin)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_access_logs",
		Description: "List GC dashboard access attempts, newest first",
	}, t.listAccessLogs)

	// Sync
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_unsynced_crew_logs",
		Description: "List a project's crew logs that have not reached a T&M tag",
	}, t.listUnsynced)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "manual_sync",
		Description: "Sync one crew log to its T&M tag and report the outcome",
	}, t.manualSync)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "retry_pending_sync",
		Description: "Run manual_sync for every unsynced crew log of a project",
	}, t.retryPending)
}

func (t *tools) createProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateProjectParams) (*sdkmcp.CallToolResult, any, error) {
	proj, err := t.services.Projects.Create(ctx, project.CreateRequest{
		ID:             in.ID,
		Name:           in.Name,
		ClientCompany:  in.ClientCompany,
		GCEmail:        in.GCEmail,
		LaborRate:      in.LaborRate,
		ContractAmount: in.ContractAmount,
	})
	if err != nil {
		return nil, nil, MapError(err)
	}
	return jsonResult(proj)
}

func (t *tools) listProjects(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListProjectsParams) (*sdkmcp.CallToolResult, any, error) {
	summaries, err := t.services.Projects.List(ctx)
	if err != nil {
		return nil, nil, MapError(err)
	}
	if summaries == nil {
		summaries = []project.Summary{}
	}
	return jsonResult(ProjectListResponse{Projects: summaries})
}

func (t *tools) showPin(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectParams) (*sdkmcp.CallToolResult, any, error) {
	info, err := t.services.Pins.EnsurePin(ctx, in.ProjectID)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return jsonResult(info)
}

func (t *tools) rotatePin(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectParams) (*sdkmcp.CallToolResult, any, error) {
	info, err := t.services.Pins.IssuePin(ctx, in.ProjectID)
	if err != nil {
		return nil, nil, MapError(err)
	}
	t.logger.Info("gc pin rotated via mcp", "project_id", in.ProjectID, "operator", getOperator(ctx))
	return jsonResult(info)
}

func (t *tools) listAccessLogs(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListAccessLogsParams) (*sdkmcp.CallToolResult, any, error) {
	opts := accesslog.ListOptions{
		ProjectID: in.ProjectID,
		Limit:     in.Limit,
		Offset:    in.Offset,
	}
	if in.Status != "" {
		status := accesslog.Status(in.Status)
		opts.Status = &status
	}
	entries, err := t.services.AccessLogs.List(ctx, opts)
	if err != nil {
		return nil, nil, MapError(err)
	}
	if entries == nil {
		entries = []accesslog.Entry{}
	}
	return jsonResult(AccessLogResponse{Entries: entries})
}

func (t *tools) listUnsynced(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectParams) (*sdkmcp.CallToolResult, any, error) {
	logs, err := t.services.CrewLogs.ListUnsynced(ctx, in.ProjectID)
	if err != nil {
		return nil, nil, MapError(err)
	}
	if logs == nil {
		logs = []crewlog.CrewLog{}
	}
	return jsonResult(UnsyncedResponse{ProjectID: in.ProjectID, CrewLogs: logs})
}

// manualSync reports a failed sync as a tool error whose body is still the
// sync result, so the caller sees the reason.
func (t *tools) manualSync(ctx context.Context, _ *sdkmcp.CallToolRequest, in ManualSyncParams) (*sdkmcp.CallToolResult, any, error) {
	res, err := t.services.Sync.ManualSync(ctx, in.CrewLogID)
	t.logger.Info("manual sync via mcp", "crew_log_id", in.CrewLogID, "operator", getOperator(ctx), "ok", err == nil)
	if err != nil {
		if res == nil {
			return nil, nil, MapError(err)
		}
		result, _, encErr := jsonResult(res)
		if encErr != nil {
			return nil, nil, encErr
		}
		result.IsError = true
		return result, nil, nil
	}
	return jsonResult(res)
}

func (t *tools) retryPending(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectParams) (*sdkmcp.CallToolResult, any, error) {
	results, err := t.services.Sync.RetryPending(ctx, in.ProjectID)
	if err != nil {
		return nil, nil, MapError(err)
	}
	resp := RetryResponse{ProjectID: in.ProjectID, Results: results}
	if resp.Results == nil {
		resp.Results = []reconcile.Result{}
	}
	for _, r := range resp.Results {
		if r.Error == "" {
			resp.Synced++
		} else {
			resp.Failed++
		}
	}
	t.logger.Info("pending sync retried via mcp", "project_id", in.ProjectID, "operator", getOperator(ctx), "synced", resp.Synced, "failed", resp.Failed)
	return jsonResult(resp)
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}
