package handlers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jroosing/bindzone/internal/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Server CRUD Tests
// ============================================================================

func TestCreateServer_AppliesDefaultsAndHidesPassword(t *testing.T) {
	env := newTestEnv(t)

	w := performRequest(env.router, "POST", "/api/v1/servers",
		`{"id":"dns-primary","name":"Primary","host":"192.0.2.10","password":"hunter2"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[models.ServerResponse](t, w)
	assert.Equal(t, "dns-primary", resp.ID)
	assert.Equal(t, 22, resp.Port)
	assert.Equal(t, "root", resp.Username)
	assert.Equal(t, "/etc/bind/zones", resp.ZonesPath)
	assert.Equal(t, "/etc/bind/named.conf", resp.ConfigPath)
	assert.True(t, resp.Enabled)
	assert.True(t, resp.HasPassword)
	assert.False(t, resp.Local)
	assert.NotContains(t, w.Body.String(), "hunter2")
}

func TestCreateServer_GeneratesID(t *testing.T) {
	env := newTestEnv(t)

	w := performRequest(env.router, "POST", "/api/v1/servers", `{"name":"Anon","host":"192.0.2.11"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[models.ServerResponse](t, w)
	_, err := uuid.Parse(resp.ID)
	assert.NoError(t, err)
}

func TestCreateServer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing host", `{"id":"a","name":"A"}`, http.StatusBadRequest},
		{"invalid json", `{"id":`, http.StatusBadRequest},
		{"bad id", `{"id":"a b","name":"A","host":"h"}`, http.StatusBadRequest},
		{"bad port", `{"id":"a","name":"A","host":"h","port":70000}`, http.StatusBadRequest},
		{"reserved id", `{"id":"local","name":"A","host":"h"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := performRequest(env.router, "POST", "/api/v1/servers", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestCreateServer_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	body := `{"id":"dup","name":"Dup","host":"192.0.2.1"}`

	require.Equal(t, http.StatusCreated, performRequest(env.router, "POST", "/api/v1/servers", body).Code)
	w := performRequest(env.router, "POST", "/api/v1/servers", body)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "AlreadyExists", decode[models.ErrorResponse](t, w).Kind)
}

func TestListServers_DisabledOnlyWithAll(t *testing.T) {
	env := newTestEnv(t)
	performRequest(env.router, "POST", "/api/v1/servers", `{"id":"a","name":"A","host":"192.0.2.1"}`)
	performRequest(env.router, "POST", "/api/v1/servers", `{"id":"b","name":"B","host":"192.0.2.2","enabled":false}`)

	w := performRequest(env.router, "GET", "/api/v1/servers", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[models.ServerListResponse](t, w)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "a", list.Servers[0].ID)

	w = performRequest(env.router, "GET", "/api/v1/servers?all=true", "")
	assert.Equal(t, 2, decode[models.ServerListResponse](t, w).Count)
}

func TestGetServer_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := performRequest(env.router, "GET", "/api/v1/servers/nope", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NotFound", decode[models.ErrorResponse](t, w).Kind)
}

func TestUpdateServer_PartialKeepsIdentity(t *testing.T) {
	env := newTestEnv(t)
	w := performRequest(env.router, "POST", "/api/v1/servers",
		`{"id":"a","name":"A","host":"192.0.2.1","password":"p","description":"old"}`)
	created := decode[models.ServerResponse](t, w)

	w = performRequest(env.router, "PUT", "/api/v1/servers/a", `{"id":"other","name":"Renamed","port":2222}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decode[models.ServerResponse](t, w)
	assert.Equal(t, "a", updated.ID)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 2222, updated.Port)
	assert.Equal(t, "192.0.2.1", updated.Host)
	assert.Equal(t, "old", updated.Description)
	assert.True(t, updated.HasPassword)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	w = performRequest(env.router, "PUT", "/api/v1/servers/a", `{"password":""}`)
	assert.False(t, decode[models.ServerResponse](t, w).HasPassword)
}

func TestUpdateServer_Errors(t *testing.T) {
	env := newTestEnv(t)
	performRequest(env.router, "POST", "/api/v1/servers", `{"id":"a","name":"A","host":"192.0.2.1"}`)

	assert.Equal(t, http.StatusNotFound, performRequest(env.router, "PUT", "/api/v1/servers/zzz", `{"name":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, performRequest(env.router, "PUT", "/api/v1/servers/a", `{"host":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, performRequest(env.router, "PUT", "/api/v1/servers/a", `not json`).Code)
}

func TestDeleteServer(t *testing.T) {
	env := newTestEnv(t)
	performRequest(env.router, "POST", "/api/v1/servers", `{"id":"a","name":"A","host":"192.0.2.1"}`)

	assert.Equal(t, http.StatusOK, performRequest(env.router, "DELETE", "/api/v1/servers/a", "").Code)
	assert.Equal(t, http.StatusNotFound, performRequest(env.router, "DELETE", "/api/v1/servers/a", "").Code)
}

func TestToggleServer(t *testing.T) {
	env := newTestEnv(t)
	performRequest(env.router, "POST", "/api/v1/servers", `{"id":"a","name":"A","host":"192.0.2.1"}`)

	w := performRequest(env.router, "POST", "/api/v1/servers/a/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.ServerResponse](t, w).Enabled)

	w = performRequest(env.router, "POST", "/api/v1/servers/a/toggle", "")
	assert.True(t, decode[models.ServerResponse](t, w).Enabled)

	assert.Equal(t, http.StatusNotFound, performRequest(env.router, "POST", "/api/v1/servers/zzz/toggle", "").Code)
}

// ============================================================================
// Connection Test Tests
// ============================================================================

func TestTestServer_LoopbackHost(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	performRequest(env.router, "POST", "/api/v1/servers", `{"id":"lo","name":"Lo","host":"127.0.0.1","zones_path":"`+dir+`"}`)

	w := performRequest(env.router, "POST", "/api/v1/servers/lo/test", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.ConnectionTestResponse](t, w)
	assert.True(t, resp.Success)
	assert.True(t, resp.Local)
	assert.True(t, resp.ZonesPathExists)
}

func TestTestServer_BuiltinLocal(t *testing.T) {
	env := newTestEnv(t)

	w := performRequest(env.router, "POST", "/api/v1/servers/local/test", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.ConnectionTestResponse](t, w)
	assert.Equal(t, "local", resp.ServerID)
	assert.True(t, resp.ZonesPathExists)
}

func TestTestServer_NoCredentialsReportsAuthError(t *testing.T) {
	env := newTestEnv(t)
	performRequest(env.router, "POST", "/api/v1/servers", `{"id":"r","name":"R","host":"192.0.2.1"}`)

	w := performRequest(env.router, "POST", "/api/v1/servers/r/test", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.ConnectionTestResponse](t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "AuthError", resp.Kind)
	assert.NotEmpty(t, resp.Message)
}

// ============================================================================
// Import / Export Tests
// ============================================================================

func TestImportExportServers(t *testing.T) {
	env := newTestEnv(t)
	doc := `{"servers":[{"id":"legacy","name":"Legacy","host":"192.0.2.5","password":"pw","bindZonesPath":"/var/named"}]}`

	w := performRequest(env.router, "POST", "/api/v1/servers/import", doc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[models.ServerImportResponse](t, w).Imported)

	w = performRequest(env.router, "POST", "/api/v1/servers/import", doc)
	assert.Equal(t, 0, decode[models.ServerImportResponse](t, w).Imported)

	w = performRequest(env.router, "GET", "/api/v1/servers/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bindZonesPath": "/var/named"`)
	assert.NotContains(t, w.Body.String(), "pw")
}

func TestImportServers_Invalid(t *testing.T) {
	env := newTestEnv(t)

	w := performRequest(env.router, "POST", "/api/v1/servers/import", `{"servers":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "InvalidFormat", decode[models.ErrorResponse](t, w).Kind)
}
