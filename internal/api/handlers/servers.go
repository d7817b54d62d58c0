package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jroosing/bindzone/internal/api/models"
	"github.com/jroosing/bindzone/internal/hosts"
	"github.com/jroosing/bindzone/internal/zoneerr"
)

func toServerResponse(t hosts.Target) models.ServerResponse {
	return models.ServerResponse{
		ID:            t.ID,
		Name:          t.Name,
		Host:          t.Host,
		Port:          t.Port,
		Username:      t.Username,
		SSHKeyPath:    t.SSHKeyPath,
		HasPassword:   t.Password != "",
		ZonesPath:     t.ZonesPath,
		ConfigPath:    t.ConfigPath,
		ReloadCommand: t.ReloadCommand,
		Enabled:       t.Enabled,
		Description:   t.Description,
		Local:         t.IsLocal(),
		CreatedAt:     t.CreatedAt,
	}
}

// ListServers godoc
// @Summary List servers
// @Description Returns registered BIND hosts. Disabled hosts are included with all=true.
// @Tags servers
// @Produce json
// @Param all query bool false "Include disabled servers"
// @Success 200 {object} models.ServerListResponse
// @Failure 500 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers [get]
func (h *Handler) ListServers(c *gin.Context) {
	all, _ := strconv.ParseBool(c.DefaultQuery("all", "false"))

	servers, err := h.db.ListServers(c.Request.Context(), all)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := models.ServerListResponse{Servers: make([]models.ServerResponse, 0, len(servers))}
	for _, t := range servers {
		resp.Servers = append(resp.Servers, toServerResponse(t))
	}
	resp.Count = len(resp.Servers)

	c.JSON(http.StatusOK, resp)
}

// CreateServer godoc
// @Summary Register a server
// @Description Adds a BIND host to the registry. A UUID is generated when id is empty.
// @Tags servers
// @Accept json
// @Produce json
// @Param server body models.ServerCreateRequest true "Server to register"
// @Success 201 {object} models.ServerResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Server already exists"
// @Security ApiKeyAuth
// @Router /servers [post]
func (h *Handler) CreateServer(c *gin.Context) {
	var req models.ServerCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	t := hosts.Target{
		ID:            req.ID,
		Name:          req.Name,
		Host:          req.Host,
		Port:          req.Port,
		Username:      req.Username,
		SSHKeyPath:    req.SSHKeyPath,
		Password:      req.Password,
		ZonesPath:     req.ZonesPath,
		ConfigPath:    req.ConfigPath,
		ReloadCommand: req.ReloadCommand,
		Enabled:       req.Enabled == nil || *req.Enabled,
		Description:   req.Description,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.ID == hosts.LocalID {
		h.writeError(c, zoneerr.Wrap(zoneerr.ErrAlreadyExists, nil, "server id %q is reserved", hosts.LocalID))
		return
	}

	added, err := h.db.AddServer(c.Request.Context(), t)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Info("server registered", "server", added.ID, "host", added.Host)
	c.JSON(http.StatusCreated, toServerResponse(added))
}

// GetServer godoc
// @Summary Get a server
// @Tags servers
// @Produce json
// @Param serverId path string true "Server ID"
// @Success 200 {object} models.ServerResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId} [get]
func (h *Handler) GetServer(c *gin.Context) {
	t, err := h.db.GetServer(c.Request.Context(), c.Param("serverId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toServerResponse(t))
}

// UpdateServer godoc
// @Summary Update a server
// @Description Changes the given fields of a server. The id and creation time never change.
// @Tags servers
// @Accept json
// @Produce json
// @Param serverId path string true "Server ID"
// @Param server body models.ServerUpdateRequest true "Fields to change"
// @Success 200 {object} models.ServerResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId} [put]
func (h *Handler) UpdateServer(c *gin.Context) {
	var req models.ServerUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	id := c.Param("serverId")
	t, err := h.db.GetServer(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	setIf(&t.Name, req.Name)
	setIf(&t.Host, req.Host)
	setIf(&t.Port, req.Port)
	setIf(&t.Username, req.Username)
	setIf(&t.SSHKeyPath, req.SSHKeyPath)
	setIf(&t.Password, req.Password)
	setIf(&t.ZonesPath, req.ZonesPath)
	setIf(&t.ConfigPath, req.ConfigPath)
	setIf(&t.ReloadCommand, req.ReloadCommand)
	setIf(&t.Enabled, req.Enabled)
	setIf(&t.Description, req.Description)

	updated, err := h.db.UpdateServer(ctx, id, t)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Info("server updated", "server", id)
	c.JSON(http.StatusOK, toServerResponse(updated))
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// DeleteServer godoc
// @Summary Remove a server
// @Description Removes a server from the registry. Zone files on the host are not touched.
// @Tags servers
// @Produce json
// @Param serverId path string true "Server ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId} [delete]
func (h *Handler) DeleteServer(c *gin.Context) {
	id := c.Param("serverId")
	if err := h.db.DeleteServer(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Info("server removed", "server", id)
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Server deleted successfully"})
}

// ToggleServer godoc
// @Summary Enable or disable a server
// @Tags servers
// @Produce json
// @Param serverId path string true "Server ID"
// @Success 200 {object} models.ServerResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId}/toggle [post]
func (h *Handler) ToggleServer(c *gin.Context) {
	t, err := h.db.ToggleServer(c.Request.Context(), c.Param("serverId"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Info("server toggled", "server", t.ID, "enabled", t.Enabled)
	c.JSON(http.StatusOK, toServerResponse(t))
}

// TestServer godoc
// @Summary Test a server connection
// @Description Opens a session to the server, runs a trivial command and checks the zones directory.
// @Description A failed connection is reported with success=false and the error kind, not an error status.
// @Tags servers
// @Produce json
// @Param serverId path string true "Server ID"
// @Success 200 {object} models.ConnectionTestResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId}/test [post]
func (h *Handler) TestServer(c *gin.Context) {
	id := c.Param("serverId")
	t := h.local
	if id != hosts.LocalID {
		var err error
		if t, err = h.db.GetServer(c.Request.Context(), id); err != nil {
			h.writeError(c, err)
			return
		}
	}

	resp := models.ConnectionTestResponse{ServerID: t.ID, Local: t.IsLocal()}
	res, err := h.zones.TestConnection(c.Request.Context(), t)
	if err != nil {
		resp.Message = err.Error()
		resp.Kind = string(zoneerr.KindOf(err))
		h.logger.Warn("connection test failed", "server", t.ID, "host", t.Host, "err", err)
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.Success = true
	resp.ZonesPathExists = res.ZonesPathExists
	resp.Message = "Connection successful"
	if !res.ZonesPathExists {
		resp.Message = "Connection successful, zones path " + t.ZonesPath + " not found"
	}
	c.JSON(http.StatusOK, resp)
}

// ExportServers godoc
// @Summary Export the registry
// @Description Returns every server as a servers.config.json document. Passwords are omitted.
// @Tags servers
// @Produce json
// @Success 200 {object} object
// @Security ApiKeyAuth
// @Router /servers/export [get]
func (h *Handler) ExportServers(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.db.ExportServersJSON(c.Request.Context(), &buf, false); err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", buf.Bytes())
}

// ImportServers godoc
// @Summary Import a servers document
// @Description Adds every server of a servers.config.json document that is not registered yet.
// @Tags servers
// @Accept json
// @Produce json
// @Param document body object true "servers.config.json document"
// @Success 200 {object} models.ServerImportResponse
// @Failure 400 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/import [post]
func (h *Handler) ImportServers(c *gin.Context) {
	n, err := h.db.ImportServersJSON(c.Request.Context(), c.Request.Body)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Info("servers imported", "count", n)
	c.JSON(http.StatusOK, models.ServerImportResponse{Imported: n})
}
