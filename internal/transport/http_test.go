package transport_test

import (
	"io"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ganot/crewsync/internal/domain/accesslog"
	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/gcaccess"
	"github.com/ganot/crewsync/internal/domain/reconcile"
	"github.com/ganot/crewsync/internal/domain/tmtag"
	"github.com/ganot/crewsync/internal/testserver"
	"github.com/ganot/crewsync/internal/transport"
)

func newServer(t *testing.T) *testserver.TestServer {
	return testserver.New(t, "office-token", "office")
}

func createProject(t *testing.T, ts *testserver.TestServer, id, name string) {
	t.Helper()
	resp := ts.Do(t, http.MethodPost, "/projects", map[string]any{
		"id":             id,
		"name":           name,
		"client_company": "Harbor GC",
		"gc_email":       "pm@harbor.example",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestHTTPServer_Health(t *testing.T) {
	ts := newServer(t)

	resp := ts.DoPublic(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_OperatorRoutesRequireToken(t *testing.T) {
	ts := newServer(t)

	resp := ts.DoPublic(t, http.MethodGet, "/projects", nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.DoPublic(t, http.MethodGet, "/projects", nil, map[string]string{"Authorization": "Bearer wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.Do(t, http.MethodGet, "/projects", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_ProjectHidesPin(t *testing.T) {
	ts := newServer(t)
	createProject(t, ts, "P1", "Riverside Clinic")

	resp := ts.Do(t, http.MethodGet, "/projects/P1/pin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.Do(t, http.MethodGet, "/projects/P1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	testserver.Decode(t, resp, &body)
	require.Equal(t, true, body["has_pin"])
	require.NotContains(t, body, "current_pin")
	require.NotContains(t, body, "pin")

	resp = ts.Do(t, http.MethodGet, "/projects/missing", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPServer_CrewLogSyncFlow(t *testing.T) {
	ts := newServer(t)
	createProject(t, ts, "P1", "Riverside Clinic")

	resp := ts.Do(t, http.MethodPost, "/crew-logs", map[string]any{
		"project_id":   "P1",
		"date":         "2024-01-15T07:00:00Z",
		"crew_members": []map[string]any{{"name": "Ana Silva", "st_hours": 8}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var log crewlog.CrewLog
	testserver.Decode(t, resp, &log)
	require.Equal(t, "2024-01-15", log.Date)
	require.True(t, log.SyncedToTM)
	require.NotNil(t, log.TMTagID)

	resp = ts.Do(t, http.MethodGet, "/tm-tags/"+*log.TMTagID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tag tmtag.Tag
	testserver.Decode(t, resp, &tag)
	require.Equal(t, "Auto-generated from Crew Log - 2024-01-15", tag.Title)
	require.Equal(t, tmtag.StatusPendingReview, tag.Status)
	require.Equal(t, "Riverside Clinic", tag.ProjectName)
	require.Equal(t, "Harbor GC", tag.CompanyName)
	require.Len(t, tag.LaborEntries, 1)
	require.Equal(t, 8.0, tag.LaborEntries[0].TotalHours)

	resp = ts.Do(t, http.MethodPut, "/crew-logs/"+log.ID, map[string]any{
		"crew_members": []map[string]any{{"name": "Ana Silva", "st_hours": 8, "ot_hours": 2}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.Do(t, http.MethodGet, "/projects/P1/tm-tags", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tags []tmtag.Tag
	testserver.Decode(t, resp, &tags)
	require.Len(t, tags, 1)
	require.Equal(t, tmtag.StatusApproved, tags[0].Status)
	require.Equal(t, 10.0, tags[0].LaborEntries[0].TotalHours)

	resp = ts.Do(t, http.MethodGet, "/projects/P1/tm-tags?status=rejected", nil)
	testserver.Decode(t, resp, &tags)
	require.Empty(t, tags)
}

func TestHTTPServer_ManualSyncRecoversOrphan(t *testing.T) {
	ts := newServer(t)

	resp := ts.Do(t, http.MethodPost, "/crew-logs", map[string]any{
		"project_id":   "P9",
		"date":         "2024-03-04",
		"crew_members": []map[string]any{{"name": "Lee Park", "st_hours": 6}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var log crewlog.CrewLog
	testserver.Decode(t, resp, &log)
	require.False(t, log.SyncedToTM)

	resp = ts.Do(t, http.MethodPost, "/crew-logs/"+log.ID+"/sync", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var failed reconcile.Result
	testserver.Decode(t, resp, &failed)
	require.Equal(t, log.ID, failed.CrewLogID)
	require.Equal(t, "project not found", failed.Error)

	resp = ts.Do(t, http.MethodGet, "/projects/P9/crew-logs/unsynced", nil)
	var pending []crewlog.CrewLog
	testserver.Decode(t, resp, &pending)
	require.Len(t, pending, 1)

	createProject(t, ts, "P9", "Depot Annex")

	resp = ts.Do(t, http.MethodPost, "/projects/P9/crew-logs/sync", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var results []reconcile.Result
	testserver.Decode(t, resp, &results)
	require.Len(t, results, 1)
	require.Empty(t, results[0].Error)
	require.True(t, results[0].Created)

	resp = ts.Do(t, http.MethodGet, "/projects/P9/crew-logs/unsynced", nil)
	testserver.Decode(t, resp, &pending)
	require.Empty(t, pending)

	resp = ts.Do(t, http.MethodPost, "/crew-logs/missing/sync", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPServer_TagCreatesCrewLog(t *testing.T) {
	ts := newServer(t)
	createProject(t, ts, "P1", "Riverside Clinic")

	resp := ts.Do(t, http.MethodPost, "/tm-tags", map[string]any{
		"project_id":    "P1",
		"date_of_work":  "2024-02-01",
		"project_name":  "Riverside Clinic",
		"labor_entries": []map[string]any{{"worker_name": "Sam Ortiz", "st_hours": 4, "total_hours": 4}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var tag tmtag.Tag
	testserver.Decode(t, resp, &tag)
	require.True(t, tag.CrewLogSynced)
	require.NotNil(t, tag.CrewLogID)

	resp = ts.Do(t, http.MethodGet, "/crew-logs/"+*tag.CrewLogID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var log crewlog.CrewLog
	testserver.Decode(t, resp, &log)
	require.True(t, log.SyncedFromTM)
	require.Equal(t, crewlog.StatusPendingReview, log.Status)
	require.Equal(t, "Sam Ortiz", log.CrewMembers[0].Name)

	resp = ts.Do(t, http.MethodPost, "/tm-tags/"+tag.ID+"/status", map[string]any{"status": "completed"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.Do(t, http.MethodPost, "/tm-tags/"+tag.ID+"/status", map[string]any{"status": "approved"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_TagUpdateRejectsNegativeHours(t *testing.T) {
	ts := newServer(t)
	createProject(t, ts, "P1", "Riverside Clinic")

	resp := ts.Do(t, http.MethodPost, "/tm-tags", map[string]any{
		"project_id":   "P1",
		"date_of_work": "2024-02-02",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var tag tmtag.Tag
	testserver.Decode(t, resp, &tag)
	require.Nil(t, tag.CrewLogID)

	resp = ts.Do(t, http.MethodPut, "/tm-tags/"+tag.ID, map[string]any{
		"labor_entries": []map[string]any{{"worker_name": "Sam", "st_hours": -8, "total_hours": -8}},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.Do(t, http.MethodPut, "/tm-tags/"+tag.ID, map[string]any{
		"labor_entries": []map[string]any{{"worker_name": "  ", "st_hours": 8, "total_hours": 8}},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.Do(t, http.MethodGet, "/tm-tags/"+tag.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testserver.Decode(t, resp, &tag)
	require.Empty(t, tag.LaborEntries)
	require.Nil(t, tag.CrewLogID)
}

var digits = regexp.MustCompile(`[0-9]`)

func TestHTTPServer_GCAccessSingleUse(t *testing.T) {
	ts := newServer(t)
	createProject(t, ts, "P2", "Harbor Tower")

	resp := ts.Do(t, http.MethodGet, "/projects/P2/pin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info gcaccess.PinInfo
	testserver.Decode(t, resp, &info)
	require.Len(t, info.Pin, 4)

	headers := map[string]string{"X-Forwarded-For": "198.51.100.4"}
	resp = ts.DoPublic(t, http.MethodPost, "/projects/P2/gc/access", map[string]any{"pin": info.Pin}, headers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var grant gcaccess.Grant
	testserver.Decode(t, resp, &grant)
	require.Equal(t, "P2", grant.ProjectID)
	require.Equal(t, "Harbor Tower", grant.ProjectName)
	require.Equal(t, "Access granted", grant.Message)

	resp = ts.DoPublic(t, http.MethodPost, "/projects/P2/gc/access", map[string]any{"pin": info.Pin}, headers)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "invalid or already used")
	require.False(t, digits.Match(body))

	resp = ts.Do(t, http.MethodGet, "/projects/P2/access-logs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []accesslog.Entry
	testserver.Decode(t, resp, &entries)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.Equal(t, "198.51.100.4", e.IP)
		if e.Status == accesslog.StatusFailed {
			require.Nil(t, e.NewPin)
		}
	}

	resp = ts.Do(t, http.MethodGet, "/projects/P2/access-logs?status=success", nil)
	testserver.Decode(t, resp, &entries)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].NewPin)
	require.NotEqual(t, info.Pin, *entries[0].NewPin)
}

func TestHTTPServer_GCAccessGarbageForwardedFor(t *testing.T) {
	ts := newServer(t)
	createProject(t, ts, "P3", "Pier 9")

	resp := ts.Do(t, http.MethodGet, "/projects/P3/pin", nil)
	var info gcaccess.PinInfo
	testserver.Decode(t, resp, &info)

	headers := map[string]string{"X-Forwarded-For": strings.Repeat("x", 300)}
	resp = ts.DoPublic(t, http.MethodPost, "/projects/P3/gc/access", map[string]any{"pin": info.Pin}, headers)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.DoPublic(t, http.MethodPost, "/projects/P3/gc/access", map[string]any{"pin": info.Pin}, headers)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.Do(t, http.MethodGet, "/projects/P3/access-logs", nil)
	var entries []accesslog.Entry
	testserver.Decode(t, resp, &entries)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.Equal(t, "127.0.0.1", e.IP)
	}
}

func TestHTTPServer_GCAccessDenialsLookAlike(t *testing.T) {
	ts := newServer(t)
	createProject(t, ts, "P1", "Riverside Clinic")
	createProject(t, ts, "P2", "Harbor Tower")

	resp := ts.Do(t, http.MethodGet, "/projects/P1/pin", nil)
	var info gcaccess.PinInfo
	testserver.Decode(t, resp, &info)

	wrongProject := ts.DoPublic(t, http.MethodPost, "/projects/P2/gc/access", map[string]any{"pin": info.Pin}, nil)
	unknownProject := ts.DoPublic(t, http.MethodPost, "/projects/nope/gc/access", map[string]any{"pin": info.Pin}, nil)
	require.Equal(t, http.StatusUnauthorized, wrongProject.StatusCode)
	require.Equal(t, http.StatusUnauthorized, unknownProject.StatusCode)

	var a, b transport.ErrorBody
	testserver.Decode(t, wrongProject, &a)
	testserver.Decode(t, unknownProject, &b)
	require.Equal(t, a, b)

	malformed := ts.DoPublic(t, http.MethodPost, "/gc/access", map[string]any{"pin": "12a4"}, nil)
	require.Equal(t, http.StatusBadRequest, malformed.StatusCode)

	// The PIN-only variant still finds P1.
	resp = ts.DoPublic(t, http.MethodPost, "/gc/access", map[string]any{"pin": info.Pin}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var grant gcaccess.Grant
	testserver.Decode(t, resp, &grant)
	require.Equal(t, "P1", grant.ProjectID)
	require.Empty(t, grant.Message)
}
