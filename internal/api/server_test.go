package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amaumene/sonarr-mcp/internal/config"
	"github.com/amaumene/sonarr-mcp/internal/mcpserver"
	"github.com/amaumene/sonarr-mcp/internal/metrics"
	"github.com/amaumene/sonarr-mcp/internal/services/sonarr"
	"github.com/amaumene/sonarr-mcp/internal/tools"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *test.Hook) {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	cfg := &config.Config{
		SonarrURL:    "http://127.0.0.1:1",
		SonarrAPIKey: "secret",
		Host:         "127.0.0.1",
		Port:         4200,
		MCPPath:      "/mcp",
	}
	m := metrics.New()
	client, err := sonarr.NewClient(cfg, logger, sonarr.WithMetrics(m))
	require.NoError(t, err)

	mcp := mcpserver.New(tools.New(client, logger, tools.WithMetrics(m)), logger, "sonarr", "test")
	srv := NewServer(cfg, mcp, m, logger)
	assert.Equal(t, "127.0.0.1:4200", srv.server.Addr)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, hook
}

func TestRoutes(t *testing.T) {
	ts, hook := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))

	resp, err = http.Get(ts.URL + "/status")
	require.NoError(t, err)
	var status struct {
		Name              string   `json:"name"`
		Version           string   `json:"version"`
		Tools             []string `json:"tools"`
		ResourceTemplates []string `json:"resource_templates"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	assert.Equal(t, "Sonarr MCP Server", status.Name)
	assert.Equal(t, "test", status.Version)
	assert.Len(t, status.Tools, 9)
	assert.Len(t, status.ResourceTemplates, 2)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")

	resp, err = http.Get(ts.URL + "/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var logged bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "HTTP request" && entry.Data["path"] == "/unknown" {
			logged = true
			assert.Equal(t, http.StatusNotFound, entry.Data["status"])
			assert.Equal(t, logrus.InfoLevel, entry.Level)
		}
		if entry.Message == "HTTP request" && entry.Data["path"] == "/health" {
			assert.Equal(t, logrus.DebugLevel, entry.Level)
		}
	}
	assert.True(t, logged, "request to /unknown should be logged")
}

func TestMCPEndpointInitialize(t *testing.T) {
	ts, _ := newTestServer(t)

	payload := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{
		"protocolVersion":"2025-06-18","capabilities":{},
		"clientInfo":{"name":"curl","version":"1.0"}}}`
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/mcp", bytes.NewBufferString(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Mcp-Session-Id"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "Sonarr MCP Server"), string(body))
}
