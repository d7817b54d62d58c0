package database

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jroosing/bindzone/internal/hosts"
	"github.com/jroosing/bindzone/internal/zoneerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	db.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_MigratesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Health())
	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	v, err = db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
}

func TestAddServer_AppliesDefaults(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	got, err := db.AddServer(ctx, hosts.Target{ID: "ns1", Name: "Primary", Host: "10.0.0.1", Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, 22, got.Port)
	assert.Equal(t, "root", got.Username)
	assert.Equal(t, "/etc/bind/zones", got.ZonesPath)
	assert.Equal(t, "/etc/bind/named.conf", got.ConfigPath)
	assert.Equal(t, fixedNow, got.CreatedAt)

	stored, err := db.GetServer(ctx, "ns1")
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestAddServer_Errors(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.AddServer(ctx, hosts.Target{ID: "ns1", Name: "Primary"})
	assert.ErrorIs(t, err, zoneerr.ErrInvalidFormat)

	_, err = db.AddServer(ctx, hosts.Target{ID: "ns1", Name: "Primary", Host: "h"})
	require.NoError(t, err)
	_, err = db.AddServer(ctx, hosts.Target{ID: "ns1", Name: "Again", Host: "h2"})
	assert.ErrorIs(t, err, zoneerr.ErrAlreadyExists)
}

func TestListServers_FiltersDisabled(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.AddServer(ctx, hosts.Target{ID: "b", Name: "Bravo", Host: "h", Enabled: true})
	require.NoError(t, err)
	_, err = db.AddServer(ctx, hosts.Target{ID: "a", Name: "Alpha", Host: "h", Enabled: false})
	require.NoError(t, err)

	enabled, err := db.ListServers(ctx, false)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "b", enabled[0].ID)

	all, err := db.ListServers(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
}

func TestUpdateServer_KeepsIdentity(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.AddServer(ctx, hosts.Target{ID: "ns1", Name: "Primary", Host: "h", Enabled: true})
	require.NoError(t, err)

	db.now = func() time.Time { return fixedNow.Add(time.Hour) }
	got, err := db.UpdateServer(ctx, "ns1", hosts.Target{
		ID:        "renamed",
		Name:      "Primary DNS",
		Host:      "10.0.0.2",
		Port:      2222,
		CreatedAt: time.Unix(0, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "ns1", got.ID)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, 2222, got.Port)
	assert.Equal(t, "root", got.Username)

	stored, err := db.GetServer(ctx, "ns1")
	require.NoError(t, err)
	assert.Equal(t, "Primary DNS", stored.Name)
	assert.False(t, stored.Enabled)

	_, err = db.GetServer(ctx, "renamed")
	assert.ErrorIs(t, err, zoneerr.ErrNotFound)

	_, err = db.UpdateServer(ctx, "missing", hosts.Target{Name: "x", Host: "y"})
	assert.ErrorIs(t, err, zoneerr.ErrNotFound)
}

func TestDeleteAndToggleServer(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.AddServer(ctx, hosts.Target{ID: "ns1", Name: "Primary", Host: "h", Enabled: true})
	require.NoError(t, err)

	got, err := db.ToggleServer(ctx, "ns1")
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	got, err = db.ToggleServer(ctx, "ns1")
	require.NoError(t, err)
	assert.True(t, got.Enabled)

	_, err = db.ToggleServer(ctx, "missing")
	assert.ErrorIs(t, err, zoneerr.ErrNotFound)

	require.NoError(t, db.DeleteServer(ctx, "ns1"))
	assert.ErrorIs(t, db.DeleteServer(ctx, "ns1"), zoneerr.ErrNotFound)
}

const legacyDoc = `{
  "servers": [
    {
      "id": "dns-primary",
      "name": "Primary",
      "host": "192.168.1.10",
      "port": 2222,
      "username": "bind",
      "sshKeyPath": "/root/.ssh/id_rsa",
      "bindZonesPath": "/var/named",
      "enabled": false,
      "description": "main",
      "createdAt": "2023-01-02T03:04:05Z"
    },
    {
      "id": "dns-secondary",
      "name": "Secondary",
      "host": "192.168.1.11",
      "password": "hunter2"
    }
  ]
}`

func TestImportServersJSON(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	n, err := db.ImportServersJSON(ctx, strings.NewReader(legacyDoc))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	primary, err := db.GetServer(ctx, "dns-primary")
	require.NoError(t, err)
	assert.Equal(t, 2222, primary.Port)
	assert.Equal(t, "bind", primary.Username)
	assert.Equal(t, "/var/named", primary.ZonesPath)
	assert.Equal(t, "/etc/bind/named.conf", primary.ConfigPath)
	assert.False(t, primary.Enabled)
	assert.Equal(t, time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC), primary.CreatedAt)

	secondary, err := db.GetServer(ctx, "dns-secondary")
	require.NoError(t, err)
	assert.True(t, secondary.Enabled)
	assert.Equal(t, 22, secondary.Port)
	assert.Equal(t, "hunter2", secondary.Password)
	assert.Equal(t, fixedNow, secondary.CreatedAt)

	// A second import adds nothing.
	n, err = db.ImportServersJSON(ctx, strings.NewReader(legacyDoc))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestImportServersJSON_Invalid(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.ImportServersJSON(ctx, strings.NewReader("{not json"))
	assert.ErrorIs(t, err, zoneerr.ErrInvalidFormat)

	_, err = db.ImportServersJSON(ctx, strings.NewReader(`{"servers":[{"id":"x"}]}`))
	assert.ErrorIs(t, err, zoneerr.ErrInvalidFormat)

	all, err := db.ListServers(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExportServersJSON(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.ImportServersJSON(ctx, strings.NewReader(legacyDoc))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, db.ExportServersJSON(ctx, &buf, false))

	var doc map[string][]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc["servers"], 2)

	first := doc["servers"][0]
	assert.Equal(t, "dns-primary", first["id"])
	assert.Equal(t, "/var/named", first["bindZonesPath"])
	assert.Equal(t, false, first["enabled"])
	assert.Equal(t, float64(2222), first["port"])
	assert.NotContains(t, doc["servers"][1], "password")

	buf.Reset()
	require.NoError(t, db.ExportServersJSON(ctx, &buf, true))
	assert.Contains(t, buf.String(), `"password": "hunter2"`)
}
