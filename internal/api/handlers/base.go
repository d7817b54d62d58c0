// Package handlers implements the REST API endpoint handlers for bindzone.
//
// REST API Endpoints:
//
// System Health:
//   - GET /api/v1/health - Health check status
//   - GET /api/v1/stats - Process, host and zone operation statistics
//
// Servers (BIND host registry):
//   - GET /api/v1/servers - List enabled servers (?all=true includes disabled)
//   - POST /api/v1/servers - Register a server
//   - GET /api/v1/servers/export - Export the registry as a servers.config.json document
//   - POST /api/v1/servers/import - Import a servers.config.json document
//   - GET /api/v1/servers/:serverId - Get one server
//   - PUT /api/v1/servers/:serverId - Update a server
//   - DELETE /api/v1/servers/:serverId - Remove a server
//   - POST /api/v1/servers/:serverId/toggle - Enable or disable a server
//   - POST /api/v1/servers/:serverId/test - Test the SSH connection
//
// Zones (per server; "reverse-zones" offers the same set for reverse zones):
//   - GET /api/v1/servers/:serverId/zones - List zone files
//   - POST /api/v1/servers/:serverId/zones - Create a zone from the template
//   - GET /api/v1/servers/:serverId/zones/:zoneName - Read and parse a zone
//   - DELETE /api/v1/servers/:serverId/zones/:zoneName - Delete a zone file
//   - POST /api/v1/servers/:serverId/zones/:zoneName/records - Append a record
//   - DELETE /api/v1/servers/:serverId/zones/:zoneName/records/:recordId - Delete a record
//
// The same zone routes without the /servers/:serverId prefix act on the
// built-in local target (zones.local_path).
//
// Authentication:
//
// When api.api_key is configured every endpoint except /health requires the
// X-API-Key header.
//
// Record ids ("record-N") are positions in the current parse of a zone and
// change whenever the zone changes. Read the zone again before deleting.
//
// @title bindzone Management API
// @version 1.0
// @description REST API for managing BIND9 zone files on local and remote hosts.
//
// @contact.name bindzone
// @contact.url https://github.com/jroosing/bindzone
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:3001
// @BasePath /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package handlers

import (
	"log/slog"
	"time"

	"github.com/jroosing/bindzone/internal/config"
	"github.com/jroosing/bindzone/internal/database"
	"github.com/jroosing/bindzone/internal/hosts"
	"github.com/jroosing/bindzone/internal/zones"
)

// Handler contains dependencies for API handlers.
type Handler struct {
	cfg       *config.Config
	db        *database.DB
	zones     *zones.Service
	logger    *slog.Logger
	startTime time.Time
	local     hosts.Target
}

// New creates a new Handler. The built-in local target manages
// cfg.Zones.LocalPath.
func New(cfg *config.Config, db *database.DB, svc *zones.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:       cfg,
		db:        db,
		zones:     svc,
		logger:    logger,
		startTime: time.Now(),
		local:     hosts.Local(cfg.Zones.LocalPath),
	}
}

// DB returns the database connection for handlers that need it.
func (h *Handler) DB() *database.DB {
	return h.db
}

// LocalTarget returns the built-in local target.
func (h *Handler) LocalTarget() hosts.Target {
	return h.local
}
