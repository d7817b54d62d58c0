// Package config provides configuration loading and validation for bindzone.
//
// Configuration is read from an optional YAML file, then environment
// overrides are applied, then Validate fills defaults and checks ranges.
// With no file at all the defaults describe a server on port 3001 managing
// /etc/bind/zones on this machine.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Defaults.
const (
	DefaultAPIHost           = "0.0.0.0"
	DefaultAPIPort           = 3001
	DefaultLocalZonesPath    = "/etc/bind/zones"
	DefaultReverseNameServer = "ns1.example.com."
	DefaultZoneAddress       = "192.168.1.1"
	DefaultRegistryPath      = "bindzone.db"
	DefaultConnectTimeout    = "10s"
	DefaultOperationTimeout  = "30s"
	DefaultRateLimitClients  = 4096
)

// ConfigEnv names the environment variable holding the config file path.
const ConfigEnv = "BINDZONE_CONFIG"

// ResolveConfigPath returns the flag value when set, else $BINDZONE_CONFIG.
func ResolveConfigPath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	return strings.TrimSpace(os.Getenv(ConfigEnv))
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables:
//
//	BIND9_ZONES_PATH         zones.local_path
//	PORT, BINDZONE_PORT      api.port
//	BINDZONE_HOST            api.host
//	BINDZONE_API_KEY         api.api_key
//	BINDZONE_REGISTRY        registry.path
//	BINDZONE_SERVERS_JSON    registry.import_json
//	BINDZONE_LOG_STRUCTURED  logging.structured
//	LOG_LEVEL                logging.level
func (cfg *Config) applyEnv() error {
	if v := os.Getenv("BIND9_ZONES_PATH"); v != "" {
		cfg.Zones.LocalPath = v
	}
	for _, key := range []string{"PORT", "BINDZONE_PORT"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: invalid port %q", key, v)
			}
			cfg.API.Port = n
		}
	}
	if v := os.Getenv("BINDZONE_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("BINDZONE_API_KEY"); v != "" {
		cfg.API.APIKey = v
	}
	if v := os.Getenv("BINDZONE_REGISTRY"); v != "" {
		cfg.Registry.Path = v
	}
	if v := os.Getenv("BINDZONE_SERVERS_JSON"); v != "" {
		cfg.Registry.ImportJSON = v
	}
	if v, ok := os.LookupEnv("BINDZONE_LOG_STRUCTURED"); ok {
		cfg.Logging.Structured = envBool(v, cfg.Logging.Structured)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// Validate validates and normalizes the configuration.
func (cfg *Config) Validate() error {
	// Normalize API
	if cfg.API.Host == "" {
		cfg.API.Host = DefaultAPIHost
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = DefaultAPIPort
	}
	if cfg.API.Port < 0 || cfg.API.Port > 65535 {
		return errors.New("api.port must be 1..65535")
	}
	rl := &cfg.API.RateLimit
	if rl.RequestsPerSecond < 0 {
		return errors.New("api.rate_limit.requests_per_second must not be negative")
	}
	if rl.RequestsPerSecond > 0 && rl.Burst <= 0 {
		rl.Burst = int(2*rl.RequestsPerSecond) + 1
	}
	if rl.MaxClients <= 0 {
		rl.MaxClients = DefaultRateLimitClients
	}

	// Normalize logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.StructuredFormat == "" {
		cfg.Logging.StructuredFormat = "json"
	}
	if cfg.Logging.ExtraFields == nil {
		cfg.Logging.ExtraFields = map[string]string{}
	}

	// Normalize zones
	if cfg.Zones.LocalPath == "" {
		cfg.Zones.LocalPath = DefaultLocalZonesPath
	}
	if cfg.Zones.DefaultNameServer == "" {
		cfg.Zones.DefaultNameServer = DefaultReverseNameServer
	}
	if cfg.Zones.DefaultAddress == "" {
		cfg.Zones.DefaultAddress = DefaultZoneAddress
	}
	if addr, err := netip.ParseAddr(cfg.Zones.DefaultAddress); err != nil || !addr.Is4() {
		return fmt.Errorf("zones.default_address %q is not an IPv4 address", cfg.Zones.DefaultAddress)
	}

	// Normalize registry
	if cfg.Registry.Path == "" {
		cfg.Registry.Path = DefaultRegistryPath
	}

	// Parse SSH timeouts
	if cfg.SSH.ConnectTimeout == "" {
		cfg.SSH.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.SSH.OperationTimeout == "" {
		cfg.SSH.OperationTimeout = DefaultOperationTimeout
	}
	var err error
	if cfg.SSH.ConnectTimeoutDuration, err = parsePositiveDuration(cfg.SSH.ConnectTimeout); err != nil {
		return fmt.Errorf("ssh.connect_timeout: %w", err)
	}
	if cfg.SSH.OperationTimeoutDuration, err = parsePositiveDuration(cfg.SSH.OperationTimeout); err != nil {
		return fmt.Errorf("ssh.operation_timeout: %w", err)
	}

	return nil
}

func parsePositiveDuration(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", raw)
	}
	return d, nil
}

// envBool parses common boolean spellings, returning def for anything else.
func envBool(raw string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
