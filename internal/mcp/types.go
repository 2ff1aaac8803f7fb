package mcp

import (
	"github.com/ganot/crewsync/internal/domain/accesslog"
	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/domain/reconcile"
)

type CreateProjectParams struct {
	ID             string  `json:"id,omitempty" jsonschema:"Unique project identifier, generated when omitted"`
	Name           string  `json:"name" jsonschema:"Project display name"`
	ClientCompany  string  `json:"client_company,omitempty" jsonschema:"General contractor company"`
	GCEmail        string  `json:"gc_email,omitempty" jsonschema:"General contractor contact email"`
	LaborRate      float64 `json:"labor_rate,omitempty" jsonschema:"Hourly labor rate"`
	ContractAmount float64 `json:"contract_amount,omitempty" jsonschema:"Contract amount"`
}

type ListProjectsParams struct{}

type ProjectParams struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
}

type ManualSyncParams struct {
	CrewLogID string `json:"crew_log_id" jsonschema:"Crew log ID to sync"`
}

type ListAccessLogsParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Only attempts against this project"`
	Status    string `json:"status,omitempty" jsonschema:"success or failed"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of entries"`
	Offset    int    `json:"offset,omitempty" jsonschema:"Offset for pagination"`
}

type ProjectListResponse struct {
	Projects []project.Summary `json:"projects"`
}

type UnsyncedResponse struct {
	ProjectID string            `json:"project_id"`
	CrewLogs  []crewlog.CrewLog `json:"crew_logs"`
}

type RetryResponse struct {
	ProjectID string             `json:"project_id"`
	Results   []reconcile.Result `json:"results"`
	Synced    int                `json:"synced"`
	Failed    int                `json:"failed"`
}

type AccessLogResponse struct {
	Entries []accesslog.Entry `json:"entries"`
}
