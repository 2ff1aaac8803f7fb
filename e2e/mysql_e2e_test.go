//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ganot/crewsync/internal/app"
	"github.com/ganot/crewsync/internal/domain/accesslog"
	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/gcaccess"
	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/domain/tmtag"
	"github.com/ganot/crewsync/internal/store"
)

func startMySQL(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_DATABASE":      "crewsync",
			"MYSQL_ROOT_PASSWORD": "secret",
			"MYSQL_USER":          "crewsync",
			"MYSQL_PASSWORD":      "pass",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(90 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start mysql container")
	t.Cleanup(func() { _ = mysqlC.Terminate(context.Background()) })

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("crewsync:pass@tcp(%s:%s)/crewsync?multiStatements=true", host, port.Port())
}

// openApp retries the first connection because the port opens before
// MySQL accepts logins.
func openApp(t *testing.T, dsn string) *app.App {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var db *store.DB
	var err error
	for i := 0; i < 30; i++ {
		db, err = store.Open(store.DriverMySQL, dsn)
		if err == nil {
			if err = db.PingContext(ctx); err == nil {
				break
			}
			db.Close()
		}
		time.Sleep(2 * time.Second)
	}
	require.NoError(t, err, "mysql never became ready")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	// Migrations are idempotent.
	require.NoError(t, db.Migrate(ctx))

	return app.New(db, app.Options{AuthEnabled: true, TransportMode: "http"}, logger)
}

func TestMySQL_SyncAndPinFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()
	a := openApp(t, startMySQL(t))

	_, err := a.Projects.Create(ctx, project.CreateRequest{ID: "p1", Name: "Harbor Tower", LaborRate: 95})
	require.NoError(t, err)

	t.Run("crew log creates a pending tag", func(t *testing.T) {
		log, err := a.CrewLogs.Create(ctx, crewlog.CreateRequest{
			ProjectID: "p1",
			Date:      "2024-01-15",
			CrewMembers: []crewlog.CrewMember{
				{Name: "Ana", StHours: 8, OtHours: 2},
			},
			WorkDescription: "Framing level 2",
		})
		require.NoError(t, err)

		tags, err := a.Tags.List(ctx, tmtag.ListOptions{ProjectID: "p1"})
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, tmtag.StatusPendingReview, tags[0].Status)
		require.NotNil(t, tags[0].CrewLogID)
		assert.Equal(t, log.ID, *tags[0].CrewLogID)

		got, err := a.CrewLogs.Get(ctx, log.ID)
		require.NoError(t, err)
		assert.True(t, got.SyncedToTM)

		// A second manual sync updates instead of creating.
		result, err := a.Engine.ManualSync(ctx, log.ID)
		require.NoError(t, err)
		assert.False(t, result.Created)
		assert.Equal(t, tags[0].ID, result.TMTagID)

		pending, err := a.CrewLogs.ListUnsynced(ctx, "p1")
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("pin is single use", func(t *testing.T) {
		info, err := a.Gate.EnsurePin(ctx, "p1")
		require.NoError(t, err)

		grant, err := a.Gate.Validate(ctx, gcaccess.ValidateRequest{Pin: info.Pin, ProjectID: "p1", IP: "203.0.113.7"})
		require.NoError(t, err)
		assert.Equal(t, "p1", grant.ProjectID)

		_, err = a.Gate.Validate(ctx, gcaccess.ValidateRequest{Pin: info.Pin, ProjectID: "p1", IP: "203.0.113.7"})
		require.ErrorIs(t, err, gcaccess.ErrAccessDenied)

		next, err := a.Gate.EnsurePin(ctx, "p1")
		require.NoError(t, err)
		assert.NotEqual(t, info.Pin, next.Pin)
		assert.False(t, next.Used)

		entries, err := a.AccessLogs.List(ctx, accesslog.ListOptions{ProjectID: "p1"})
		require.NoError(t, err)
		require.Len(t, entries, 2)

		failed := accesslog.StatusFailed
		denied, err := a.AccessLogs.List(ctx, accesslog.ListOptions{ProjectID: "p1", Status: &failed})
		require.NoError(t, err)
		assert.Len(t, denied, 1)
	})

	t.Run("api keys resolve", func(t *testing.T) {
		require.NoError(t, a.APIKeys.Create(ctx, "cs_e2e", "office", "e2e"))
		operator, err := a.APIKeys.ResolveOperator(ctx, "cs_e2e")
		require.NoError(t, err)
		assert.Equal(t, "office", operator)
	})
}
