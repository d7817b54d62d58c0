package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jroosing/bindzone/internal/api/models"
	"github.com/jroosing/bindzone/internal/hosts"
	"github.com/jroosing/bindzone/internal/zone"
	"github.com/jroosing/bindzone/internal/zoneerr"
	"github.com/jroosing/bindzone/internal/zones"
)

const targetKey = "bindzone.target"

// ResolveServer loads the server named by the :serverId path parameter and
// stores it for the zone handlers. "local" selects the built-in local
// target. Disabled servers are refused with 409.
func (h *Handler) ResolveServer() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("serverId")
		if id == hosts.LocalID {
			c.Set(targetKey, h.local)
			c.Next()
			return
		}

		t, err := h.db.GetServer(c.Request.Context(), id)
		if err != nil {
			h.writeError(c, err)
			c.Abort()
			return
		}
		if !t.Enabled {
			h.writeError(c, zoneerr.Wrap(zoneerr.ErrDisabled, nil, "server %s", id))
			c.Abort()
			return
		}
		c.Set(targetKey, t)
		c.Next()
	}
}

// UseLocalTarget makes the zone handlers act on the built-in local target.
func (h *Handler) UseLocalTarget() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(targetKey, h.local)
		c.Next()
	}
}

func (h *Handler) target(c *gin.Context) hosts.Target {
	if v, ok := c.Get(targetKey); ok {
		if t, ok := v.(hosts.Target); ok {
			return t
		}
	}
	return h.local
}

func toZoneRecords(in []zone.Record) []models.ZoneRecord {
	out := make([]models.ZoneRecord, 0, len(in))
	for _, r := range in {
		out = append(out, toZoneRecord(r))
	}
	return out
}

func toZoneRecord(r zone.Record) models.ZoneRecord {
	return models.ZoneRecord{
		ID:    r.ID(),
		Index: r.Index,
		Name:  r.Name,
		Type:  string(r.Kind),
		Value: r.Value,
		TTL:   r.TTL,
	}
}

func (h *Handler) toZoneDetail(t hosts.Target, d zones.Detail) models.ZoneDetailResponse {
	return models.ZoneDetailResponse{
		ServerID:   t.ID,
		Name:       d.Name,
		Type:       d.Class.String(),
		Records:    toZoneRecords(d.Records),
		RawContent: d.RawContent,
	}
}

// ============================================================================
// Shared implementations
// ============================================================================

func (h *Handler) listZones(c *gin.Context, class zone.Class) {
	t := h.target(c)
	list, err := h.zones.ListZones(c.Request.Context(), t, class)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := models.ZoneListResponse{ServerID: t.ID, Zones: make([]models.ZoneSummary, 0, len(list))}
	for _, z := range list {
		resp.Zones = append(resp.Zones, models.ZoneSummary{Name: z.Name, Type: z.Class.String(), Size: z.Size})
	}
	resp.Count = len(resp.Zones)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getZone(c *gin.Context, class zone.Class) {
	t := h.target(c)
	d, err := h.zones.GetZone(c.Request.Context(), t, class, c.Param("zoneName"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toZoneDetail(t, d))
}

func (h *Handler) createZone(c *gin.Context, class zone.Class) {
	var req models.ZoneCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	t := h.target(c)
	d, err := h.zones.CreateZone(c.Request.Context(), t, class, zones.CreateRequest{
		Name:       req.Name,
		SOAEmail:   req.SOAEmail,
		Serial:     req.Serial,
		NameServer: req.NameServer,
		Address:    req.Address,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toZoneDetail(t, d))
}

func (h *Handler) deleteZone(c *gin.Context, class zone.Class) {
	name := c.Param("zoneName")
	if err := h.zones.DeleteZone(c.Request.Context(), h.target(c), class, name); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Zone " + name + " deleted successfully"})
}

func (h *Handler) addRecord(c *gin.Context, class zone.Class) {
	var req models.RecordCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rec, err := h.zones.AddRecord(c.Request.Context(), h.target(c), class, c.Param("zoneName"), zones.RecordInput{
		Name:  req.Name,
		Kind:  req.Type,
		Value: req.Value,
		TTL:   req.TTL,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toZoneRecord(rec))
}

func (h *Handler) deleteRecord(c *gin.Context, class zone.Class) {
	err := h.zones.DeleteRecord(c.Request.Context(), h.target(c), class, c.Param("zoneName"), c.Param("recordId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Record deleted successfully"})
}

// ============================================================================
// Forward zones
// ============================================================================

// ListZones godoc
// @Summary List forward zones
// @Description Returns the forward zone files of a server. Hidden files, journals and directories are skipped.
// @Tags zones
// @Produce json
// @Param serverId path string true "Server ID ('local' for the built-in target)"
// @Success 200 {object} models.ZoneListResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId}/zones [get]
func (h *Handler) ListZones(c *gin.Context) {
	h.listZones(c, zone.Forward)
}

// GetZone godoc
// @Summary Get a forward zone
// @Description Reads a zone file and returns its records and raw content
// @Tags zones
// @Produce json
// @Param serverId path string true "Server ID"
// @Param zoneName path string true "Zone name"
// @Success 200 {object} models.ZoneDetailResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId}/zones/{zoneName} [get]
func (h *Handler) GetZone(c *gin.Context) {
	h.getZone(c, zone.Forward)
}

// CreateZone godoc
// @Summary Create a forward zone
// @Description Writes a new zone file with SOA, NS and A records for the apex and ns1
// @Tags zones
// @Accept json
// @Produce json
// @Param serverId path string true "Server ID"
// @Param zone body models.ZoneCreateRequest true "Zone to create"
// @Success 201 {object} models.ZoneDetailResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Zone already exists"
// @Security ApiKeyAuth
// @Router /servers/{serverId}/zones [post]
func (h *Handler) CreateZone(c *gin.Context) {
	h.createZone(c, zone.Forward)
}

// DeleteZone godoc
// @Summary Delete a forward zone
// @Tags zones
// @Produce json
// @Param serverId path string true "Server ID"
// @Param zoneName path string true "Zone name"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId}/zones/{zoneName} [delete]
func (h *Handler) DeleteZone(c *gin.Context) {
	h.deleteZone(c, zone.Forward)
}

// AddRecord godoc
// @Summary Add a record to a forward zone
// @Description Appends one record line. Types: A, AAAA, CNAME, MX, NS, TXT, SRV.
// @Tags zones
// @Accept json
// @Produce json
// @Param serverId path string true "Server ID"
// @Param zoneName path string true "Zone name"
// @Param record body models.RecordCreateRequest true "Record to add"
// @Success 201 {object} models.ZoneRecord
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId}/zones/{zoneName}/records [post]
func (h *Handler) AddRecord(c *gin.Context) {
	h.addRecord(c, zone.Forward)
}

// DeleteRecord godoc
// @Summary Delete a record from a forward zone
// @Description Deletes the record with the given id ("record-N" or "N") from the current parse
// @Tags zones
// @Produce json
// @Param serverId path string true "Server ID"
// @Param zoneName path string true "Zone name"
// @Param recordId path string true "Record ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId}/zones/{zoneName}/records/{recordId} [delete]
func (h *Handler) DeleteRecord(c *gin.Context) {
	h.deleteRecord(c, zone.Forward)
}

// ============================================================================
// Reverse zones
// ============================================================================

// ListReverseZones godoc
// @Summary List reverse zones
// @Description Returns the in-addr.arpa and ip6.arpa zone files of a server
// @Tags reverse-zones
// @Produce json
// @Param serverId path string true "Server ID"
// @Success 200 {object} models.ZoneListResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId}/reverse-zones [get]
func (h *Handler) ListReverseZones(c *gin.Context) {
	h.listZones(c, zone.Reverse)
}

// GetReverseZone godoc
// @Summary Get a reverse zone
// @Tags reverse-zones
// @Produce json
// @Param serverId path string true "Server ID"
// @Param zoneName path string true "Reverse zone name"
// @Success 200 {object} models.ZoneDetailResponse
// @Failure 400 {object} models.ErrorResponse "Not a reverse zone name"
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId}/reverse-zones/{zoneName} [get]
func (h *Handler) GetReverseZone(c *gin.Context) {
	h.getZone(c, zone.Reverse)
}

// CreateReverseZone godoc
// @Summary Create a reverse zone
// @Description Writes a new reverse zone file with SOA and NS records
// @Tags reverse-zones
// @Accept json
// @Produce json
// @Param serverId path string true "Server ID"
// @Param zone body models.ZoneCreateRequest true "Reverse zone to create"
// @Success 201 {object} models.ZoneDetailResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Zone already exists"
// @Security ApiKeyAuth
// @Router /servers/{serverId}/reverse-zones [post]
func (h *Handler) CreateReverseZone(c *gin.Context) {
	h.createZone(c, zone.Reverse)
}

// DeleteReverseZone godoc
// @Summary Delete a reverse zone
// @Tags reverse-zones
// @Produce json
// @Param serverId path string true "Server ID"
// @Param zoneName path string true "Reverse zone name"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId}/reverse-zones/{zoneName} [delete]
func (h *Handler) DeleteReverseZone(c *gin.Context) {
	h.deleteZone(c, zone.Reverse)
}

// AddReverseRecord godoc
// @Summary Add a PTR record to a reverse zone
// @Tags reverse-zones
// @Accept json
// @Produce json
// @Param serverId path string true "Server ID"
// @Param zoneName path string true "Reverse zone name"
// @Param record body models.RecordCreateRequest true "PTR record to add"
// @Success 201 {object} models.ZoneRecord
// @Failure 400 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId}/reverse-zones/{zoneName}/records [post]
func (h *Handler) AddReverseRecord(c *gin.Context) {
	h.addRecord(c, zone.Reverse)
}

// DeleteReverseRecord godoc
// @Summary Delete a record from a reverse zone
// @Tags reverse-zones
// @Produce json
// @Param serverId path string true "Server ID"
// @Param zoneName path string true "Reverse zone name"
// @Param recordId path string true "Record ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /servers/{serverId}/reverse-zones/{zoneName}/records/{recordId} [delete]
func (h *Handler) DeleteReverseRecord(c *gin.Context) {
	h.deleteRecord(c, zone.Reverse)
}
