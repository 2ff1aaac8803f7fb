package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `crewsync reconciles field crew logs with billable T&M tags and manages GC dashboard PINs.

Core concepts:
- Project: a construction job. Holds at most one unused 4-digit GC PIN.
- Crew log: who worked on a project on one calendar day, with st/ot/dt/pot hours per worker.
- T&M tag: the billable record for the same (project, day). Labor entries mirror the crew log.
- Sync: every crew log write is mirrored onto its tag. Failures leave the crew log unsynced.

Operator workflow:
1) list_projects to find ids.
2) list_unsynced_crew_logs to see crew logs that never reached a tag.
3) manual_sync for one crew log, or retry_pending_sync for a whole project.
4) show_pin returns the current PIN (creating one if missing); rotate_pin invalidates it.
5) list_access_logs reviews GC access attempts.

Docs:
- crewsync://docs/sync
- crewsync://docs/pins
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "crewsync://docs/sync",
		Name:        "docs_sync",
		Title:       "Crew log and T&M tag sync",
		Description: "How crew logs and T&M tags are matched and what leaves a crew log unsynced.",
		Content: `# Sync rules

- A crew log and a T&M tag match when they share project_id and calendar day.
- Lookup order: the crew log's tm_tag_id, then a date prefix match, then a structured date match.
  The oldest matching tag wins.
- Updating through sync replaces labor entries and sets the tag to approved.
- A tag created by sync is titled "Auto-generated from Crew Log - <date>" and waits in pending_review.
- A tag written directly creates a crew log only when none exists for that day. It never overwrites one.

## Unsynced crew logs

A crew log stays unsynced when its project is gone, its date is unreadable, or the store failed.
Nothing retries automatically. Use manual_sync or retry_pending_sync once the cause is fixed.
`,
	},
	{
		URI:         "crewsync://docs/pins",
		Name:        "docs_pins",
		Title:       "GC dashboard PINs",
		Description: "Single-use PIN lifecycle and audit trail.",
		Content: `# GC PINs

- Each PIN is four digits and unique across all projects.
- A PIN works exactly once. A successful validation replaces it before the GC sees the dashboard.
- show_pin returns the current PIN, creating one if the project has none.
- rotate_pin replaces the PIN unconditionally. Use it when a code was shared with the wrong person.
- Every validation attempt is written to the access log, success or not.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
