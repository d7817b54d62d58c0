package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jroosing/bindzone/internal/api/models"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

const statsProbeTimeout = 2 * time.Second

// Health godoc
// @Summary Health check
// @Description Returns server health status
// @Tags system
// @Produce json
// @Success 200 {object} models.StatusResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "registry unavailable: " + err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}

// Stats godoc
// @Summary Server statistics
// @Description Returns runtime statistics, host memory and load, zone operation counters and registry size
// @Tags system
// @Produce json
// @Success 200 {object} models.ServerStatsResponse
// @Security ApiKeyAuth
// @Router /stats [get]
func (h *Handler) Stats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.startTime)

	resp := models.ServerStatsResponse{
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     h.startTime,
		GoRoutines:    runtime.NumGoroutine(),
		MemoryAllocMB: float64(m.Alloc) / 1024 / 1024,
		NumCPU:        runtime.NumCPU(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), statsProbeTimeout)
	defer cancel()
	resp.Host = h.hostStats(ctx)

	if h.zones != nil {
		s := h.zones.Stats().Snapshot()
		resp.Zones = models.ZoneStatsResponse{
			Operations:     s.Operations,
			Mutations:      s.Mutations,
			Failures:       s.Failures,
			NotFound:       s.NotFound,
			RemoteFailures: s.RemoteFailures,
			AvgLatencyMs:   s.AvgLatencyMs,
		}
	}

	if h.db != nil {
		servers, err := h.db.ListServers(ctx, true)
		if err != nil {
			h.writeError(c, err)
			return
		}
		resp.Registry.Servers = len(servers)
		for _, s := range servers {
			if s.Enabled {
				resp.Registry.EnabledServers++
			}
		}
		if v, err := h.db.SchemaVersion(); err == nil {
			resp.Registry.SchemaVersion = v
		}
	}

	c.JSON(http.StatusOK, resp)
}

// hostStats collects machine statistics. It returns nil when memory
// statistics are unavailable; the other probes are best effort.
func (h *Handler) hostStats(ctx context.Context) *models.HostStatsResponse {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		h.logger.Debug("memory stats unavailable", "err", err)
		return nil
	}
	out := &models.HostStatsResponse{
		MemoryTotalMB:  float64(vm.Total) / 1024 / 1024,
		MemoryUsedMB:   float64(vm.Used) / 1024 / 1024,
		MemoryUsedPct:  vm.UsedPercent,
		LocalZonesPath: h.local.ZonesPath,
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		out.Load1, out.Load5, out.Load15 = avg.Load1, avg.Load5, avg.Load15
	}
	if boot, err := host.BootTimeWithContext(ctx); err == nil {
		out.BootTimeUnix = boot
	}
	if usage, err := disk.UsageWithContext(ctx, h.local.ZonesPath); err == nil {
		out.LocalZonesFree = float64(usage.Free) / 1024 / 1024
	}
	return out
}
