package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jroosing/bindzone/internal/api/handlers"
	"github.com/jroosing/bindzone/internal/api/middleware"
	"github.com/jroosing/bindzone/internal/config"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/jroosing/bindzone/internal/api/docs" // swagger docs
)

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, cfg *config.Config) {
	// Swagger UI at /swagger/*
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Liveness probe outside the versioned API.
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	api.GET("/health", h.Health)

	// Everything else sits behind the optional API key and rate limit.
	protected := api.Group("")
	protect(protected, cfg)

	protected.GET("/stats", h.Stats)

	protected.GET("/servers", h.ListServers)
	protected.POST("/servers", h.CreateServer)
	protected.GET("/servers/export", h.ExportServers)
	protected.POST("/servers/import", h.ImportServers)
	protected.GET("/servers/:serverId", h.GetServer)
	protected.PUT("/servers/:serverId", h.UpdateServer)
	protected.DELETE("/servers/:serverId", h.DeleteServer)
	protected.POST("/servers/:serverId/toggle", h.ToggleServer)
	protected.POST("/servers/:serverId/test", h.TestServer)

	registerZoneRoutes(protected.Group("/servers/:serverId", h.ResolveServer()), h)

	// Zone routes on the built-in local target.
	registerZoneRoutes(protected.Group("", h.UseLocalTarget()), h)

	// Unversioned zone paths used by the original web UI.
	legacy := r.Group("/api")
	protect(legacy, cfg)
	registerZoneRoutes(legacy.Group("", h.UseLocalTarget()), h)
}

func protect(g *gin.RouterGroup, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.API.APIKey != "" {
		g.Use(middleware.RequireAPIKey(cfg.API.APIKey))
	}
	if rl := cfg.API.RateLimit; rl.RequestsPerSecond > 0 {
		g.Use(middleware.RateLimit(middleware.NewClientRateLimiter(middleware.RateLimitConfig{
			Rate:       rl.RequestsPerSecond,
			Burst:      rl.Burst,
			MaxClients: rl.MaxClients,
		})))
	}
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
