package config

import "time"

// APIConfig contains REST API settings.
//
// Note: APIKey is treated as a secret and is never returned by API endpoints.
type APIConfig struct {
	Host      string          `yaml:"host" json:"host"`
	Port      int             `yaml:"port" json:"port"`
	APIKey    string          `yaml:"api_key" json:"api_key,omitempty"`
	UIDir     string          `yaml:"ui_dir" json:"ui_dir,omitempty"` // Optional static web UI served at /
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig controls per-client request limiting on the API.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained per-client rate (0 = disabled)
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	// Burst is the per-client burst size (default: 2x rate + 1)
	Burst int `yaml:"burst" json:"burst"`
	// MaxClients bounds the number of tracked client addresses (default: 4096)
	MaxClients int `yaml:"max_clients" json:"max_clients"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level            string            `yaml:"level" json:"level"`
	Structured       bool              `yaml:"structured" json:"structured"`
	StructuredFormat string            `yaml:"structured_format" json:"structured_format"`
	IncludePID       bool              `yaml:"include_pid" json:"include_pid"`
	ExtraFields      map[string]string `yaml:"extra_fields" json:"extra_fields,omitempty"`
}

// ZonesConfig controls the built-in local target and zone templates.
type ZonesConfig struct {
	// LocalPath is the zones directory of the built-in local target.
	LocalPath string `yaml:"local_path" json:"local_path"`
	// DefaultNameServer is written into new reverse zones.
	DefaultNameServer string `yaml:"default_name_server" json:"default_name_server"`
	// DefaultAddress is the apex and ns1 address of new forward zones.
	DefaultAddress string `yaml:"default_address" json:"default_address"`
}

// RegistryConfig locates the host registry.
type RegistryConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path" json:"path"`
	// ImportJSON optionally names a legacy servers.config.json document
	// imported at startup. Servers already registered are left alone.
	ImportJSON string `yaml:"import_json" json:"import_json,omitempty"`
}

// SSHConfig applies to every remote session.
type SSHConfig struct {
	ConnectTimeout   string `yaml:"connect_timeout" json:"connect_timeout"`     // e.g. "10s"
	OperationTimeout string `yaml:"operation_timeout" json:"operation_timeout"` // e.g. "30s"
	// KnownHosts enables host key verification against an OpenSSH
	// known_hosts file. Empty accepts any host key.
	KnownHosts string `yaml:"known_hosts" json:"known_hosts,omitempty"`

	ConnectTimeoutDuration   time.Duration `yaml:"-" json:"-"`
	OperationTimeoutDuration time.Duration `yaml:"-" json:"-"`
}

// Config is the root configuration structure.
type Config struct {
	API      APIConfig      `yaml:"api" json:"api"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Zones    ZonesConfig    `yaml:"zones" json:"zones"`
	Registry RegistryConfig `yaml:"registry" json:"registry"`
	SSH      SSHConfig      `yaml:"ssh" json:"ssh"`
}
