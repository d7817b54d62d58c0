// Package handlers_test provides behavior tests for the API handlers package.
package handlers_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jroosing/bindzone/internal/api/handlers"
	"github.com/jroosing/bindzone/internal/config"
	"github.com/jroosing/bindzone/internal/database"
	"github.com/jroosing/bindzone/internal/zones"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv is a handler backed by a temporary registry and a temporary
// local zones directory.
type testEnv struct {
	h        *handlers.Handler
	router   *gin.Engine
	db       *database.DB
	localDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	localDir := t.TempDir()
	cfg := &config.Config{Zones: config.ZonesConfig{LocalPath: localDir}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := zones.New(zones.Config{Logger: logger})

	h := handlers.New(cfg, db, svc, logger)
	return &testEnv{h: h, router: setupTestRouter(h), db: db, localDir: localDir}
}

func setupTestRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()

	api := r.Group("/api/v1")
	api.GET("/health", h.Health)
	api.GET("/stats", h.Stats)

	api.GET("/servers", h.ListServers)
	api.POST("/servers", h.CreateServer)
	api.GET("/servers/export", h.ExportServers)
	api.POST("/servers/import", h.ImportServers)
	api.GET("/servers/:serverId", h.GetServer)
	api.PUT("/servers/:serverId", h.UpdateServer)
	api.DELETE("/servers/:serverId", h.DeleteServer)
	api.POST("/servers/:serverId/toggle", h.ToggleServer)
	api.POST("/servers/:serverId/test", h.TestServer)

	server := api.Group("/servers/:serverId", h.ResolveServer())
	registerZoneRoutes(server, h)

	local := api.Group("", h.UseLocalTarget())
	registerZoneRoutes(local, h)

	return r
}

func registerZoneRoutes(g *gin.RouterGroup, h *handlers.Handler) {
	g.GET("/zones", h.ListZones)
	g.POST("/zones", h.CreateZone)
	g.GET("/zones/:zoneName", h.GetZone)
	g.DELETE("/zones/:zoneName", h.DeleteZone)
	g.POST("/zones/:zoneName/records", h.AddRecord)
	g.DELETE("/zones/:zoneName/records/:recordId", h.DeleteRecord)

	g.GET("/reverse-zones", h.ListReverseZones)
	g.POST("/reverse-zones", h.CreateReverseZone)
	g.GET("/reverse-zones/:zoneName", h.GetReverseZone)
	g.DELETE("/reverse-zones/:zoneName", h.DeleteReverseZone)
	g.POST("/reverse-zones/:zoneName/records", h.AddReverseRecord)
	g.DELETE("/reverse-zones/:zoneName/records/:recordId", h.DeleteReverseRecord)
}

func performRequest(r http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func writeZone(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readZone(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
