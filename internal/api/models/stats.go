package models

import "time"

// ServerStatsResponse contains process and host statistics.
type ServerStatsResponse struct {
	Uptime        string             `json:"uptime"`
	UptimeSeconds int64              `json:"uptime_seconds"`
	StartTime     time.Time          `json:"start_time"`
	GoRoutines    int                `json:"goroutines"`
	MemoryAllocMB float64            `json:"memory_alloc_mb"`
	NumCPU        int                `json:"num_cpu"`
	Host          *HostStatsResponse `json:"host,omitempty"`
	Zones         ZoneStatsResponse  `json:"zones"`
	Registry      RegistryStats      `json:"registry"`
}

// HostStatsResponse describes the machine the API runs on.
type HostStatsResponse struct {
	MemoryTotalMB  float64 `json:"memory_total_mb"`
	MemoryUsedMB   float64 `json:"memory_used_mb"`
	MemoryUsedPct  float64 `json:"memory_used_percent"`
	Load1          float64 `json:"load1"`
	Load5          float64 `json:"load5"`
	Load15         float64 `json:"load15"`
	BootTimeUnix   uint64  `json:"boot_time_unix,omitempty"`
	LocalZonesPath string  `json:"local_zones_path"`
	LocalZonesFree float64 `json:"local_zones_free_mb,omitempty"`
}

// ZoneStatsResponse contains zone operation counters.
type ZoneStatsResponse struct {
	Operations     uint64  `json:"operations"`
	Mutations      uint64  `json:"mutations"`
	Failures       uint64  `json:"failures"`
	NotFound       uint64  `json:"not_found"`
	RemoteFailures uint64  `json:"remote_failures"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
}

// RegistryStats summarises the host registry.
type RegistryStats struct {
	Servers        int  `json:"servers"`
	EnabledServers int  `json:"enabled_servers"`
	SchemaVersion  uint `json:"schema_version"`
}
