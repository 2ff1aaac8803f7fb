// Package testserver runs the full HTTP stack over an in-memory store.
package testserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ganot/crewsync/internal/app"
	"github.com/ganot/crewsync/internal/store"
)

type TestServer struct {
	Server   *httptest.Server
	App      *app.App
	DB       *store.DB
	Token    string
	Operator string
}

// New starts a server with auth enabled and token registered for operator.
func New(t *testing.T, token, operator string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := store.Open(store.DriverSQLite, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))

	a := app.New(db, app.Options{AuthEnabled: true, TransportMode: "http", TrustProxy: true}, nil)
	server := httptest.NewServer(a.Handler())

	ts := &TestServer{
		Server:   server,
		App:      a,
		DB:       db,
		Token:    token,
		Operator: operator,
	}

	require.NoError(t, ts.AddAPIKey(token, operator))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

func (ts *TestServer) AddAPIKey(token, operator string) error {
	return ts.App.APIKeys.Create(context.Background(), token, operator, "test")
}

// Do sends a JSON request with the server's bearer token. body may be nil.
func (ts *TestServer) Do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	return ts.do(t, method, path, body, map[string]string{"Authorization": "Bearer " + ts.Token})
}

// DoPublic sends a JSON request without credentials.
func (ts *TestServer) DoPublic(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	return ts.do(t, method, path, body, headers)
}

func (ts *TestServer) do(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.Server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// Decode reads a JSON response body into dst.
func Decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}
