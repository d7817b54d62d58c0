package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BIND9_ZONES_PATH", "PORT", "BINDZONE_PORT", "BINDZONE_HOST", "BINDZONE_API_KEY",
		"BINDZONE_REGISTRY", "BINDZONE_SERVERS_JSON", "LOG_LEVEL", ConfigEnv,
	} {
		t.Setenv(k, "")
	}
	t.Setenv("BINDZONE_LOG_STRUCTURED", "")
	os.Unsetenv("BINDZONE_LOG_STRUCTURED")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bindzone.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		envValue string
		want     string
	}{
		{"flag takes precedence", "/path/from/flag", "/path/from/env", "/path/from/flag"},
		{"env when no flag", "", "/path/from/env", "/path/from/env"},
		{"empty when neither", "", "", ""},
		{"whitespace flag", "  ", "/path/from/env", "/path/from/env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ConfigEnv, tt.envValue)
			got := ResolveConfigPath(tt.flag)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadDefault(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.API.Host)
	}
	if cfg.API.Port != 3001 {
		t.Errorf("expected port 3001, got %d", cfg.API.Port)
	}
	if cfg.Zones.LocalPath != "/etc/bind/zones" {
		t.Errorf("expected local path /etc/bind/zones, got %s", cfg.Zones.LocalPath)
	}
	if cfg.Zones.DefaultNameServer != "ns1.example.com." {
		t.Errorf("unexpected default name server %s", cfg.Zones.DefaultNameServer)
	}
	if cfg.Registry.Path != "bindzone.db" {
		t.Errorf("unexpected registry path %s", cfg.Registry.Path)
	}
	if cfg.SSH.ConnectTimeoutDuration != 10*time.Second {
		t.Errorf("expected connect timeout 10s, got %v", cfg.SSH.ConnectTimeoutDuration)
	}
	if cfg.SSH.OperationTimeoutDuration != 30*time.Second {
		t.Errorf("expected operation timeout 30s, got %v", cfg.SSH.OperationTimeoutDuration)
	}
	if cfg.Logging.Level != "INFO" || cfg.Logging.StructuredFormat != "json" {
		t.Errorf("unexpected logging defaults %+v", cfg.Logging)
	}
	if cfg.API.RateLimit.RequestsPerSecond != 0 {
		t.Error("expected rate limiting disabled by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
api:
  host: "127.0.0.1"
  port: 8080
  api_key: "s3cret"
  rate_limit:
    requests_per_second: 5

zones:
  local_path: "/var/named"
  default_name_server: "ns.corp.example."

registry:
  path: "/var/lib/bindzone/registry.db"
  import_json: "servers.config.json"

ssh:
  connect_timeout: "3s"
  operation_timeout: "1m"
  known_hosts: "/root/.ssh/known_hosts"

logging:
  level: "debug"
  structured: true
  structured_format: "keyvalue"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.Host != "127.0.0.1" || cfg.API.Port != 8080 || cfg.API.APIKey != "s3cret" {
		t.Errorf("unexpected api config %+v", cfg.API)
	}
	if cfg.API.RateLimit.Burst != 11 {
		t.Errorf("expected derived burst 11, got %d", cfg.API.RateLimit.Burst)
	}
	if cfg.Zones.LocalPath != "/var/named" {
		t.Errorf("expected local path /var/named, got %s", cfg.Zones.LocalPath)
	}
	if cfg.Zones.DefaultNameServer != "ns.corp.example." {
		t.Errorf("unexpected name server %s", cfg.Zones.DefaultNameServer)
	}
	if cfg.Registry.ImportJSON != "servers.config.json" {
		t.Errorf("unexpected import path %s", cfg.Registry.ImportJSON)
	}
	if cfg.SSH.ConnectTimeoutDuration != 3*time.Second || cfg.SSH.OperationTimeoutDuration != time.Minute {
		t.Errorf("unexpected ssh timeouts %v %v", cfg.SSH.ConnectTimeoutDuration, cfg.SSH.OperationTimeoutDuration)
	}
	if cfg.SSH.KnownHosts != "/root/.ssh/known_hosts" {
		t.Errorf("unexpected known_hosts %s", cfg.SSH.KnownHosts)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected log level DEBUG, got %s", cfg.Logging.Level)
	}
	if !cfg.Logging.Structured || cfg.Logging.StructuredFormat != "keyvalue" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoadInvalidPath(t *testing.T) {
	clearEnv(t)
	_, err := Load("/nonexistent/path/to/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "api:\n  port: [invalid")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"port out of range", "api:\n  port: 70000\n"},
		{"negative rate", "api:\n  rate_limit:\n    requests_per_second: -1\n"},
		{"bad duration", "ssh:\n  connect_timeout: \"soon\"\n"},
		{"zero duration", "ssh:\n  operation_timeout: \"0s\"\n"},
		{"ipv6 zone address", "zones:\n  default_address: \"2001:db8::1\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "api:\n  port: 8080\nzones:\n  local_path: /from/file\n")

	t.Setenv("BIND9_ZONES_PATH", "/custom/zones")
	t.Setenv("PORT", "9000")
	t.Setenv("BINDZONE_HOST", "192.168.1.1")
	t.Setenv("BINDZONE_API_KEY", "env-key")
	t.Setenv("BINDZONE_REGISTRY", "/tmp/r.db")
	t.Setenv("BINDZONE_SERVERS_JSON", "/tmp/servers.json")
	t.Setenv("BINDZONE_LOG_STRUCTURED", "yes")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Zones.LocalPath != "/custom/zones" {
		t.Errorf("expected zones dir /custom/zones, got %s", cfg.Zones.LocalPath)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.API.Port)
	}
	if cfg.API.Host != "192.168.1.1" || cfg.API.APIKey != "env-key" {
		t.Errorf("unexpected api config %+v", cfg.API)
	}
	if cfg.Registry.Path != "/tmp/r.db" || cfg.Registry.ImportJSON != "/tmp/servers.json" {
		t.Errorf("unexpected registry config %+v", cfg.Registry)
	}
	if !cfg.Logging.Structured {
		t.Error("expected structured logging enabled")
	}
	if cfg.Logging.Level != "WARN" {
		t.Errorf("expected log level WARN, got %s", cfg.Logging.Level)
	}
}

func TestEnvInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "http")
	if _, err := Load(""); err == nil {
		t.Error("expected error for non-numeric PORT")
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"1", false, true},
		{"true", false, true},
		{"yes", false, true},
		{"y", false, true},
		{"on", false, true},
		{"TRUE", false, true},
		{"0", true, false},
		{"false", true, false},
		{"no", true, false},
		{"n", true, false},
		{"off", true, false},
		{"FALSE", true, false},
		{"invalid", true, true},
		{"invalid", false, false},
		{"", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := envBool(tt.raw, tt.def)
			if got != tt.want {
				t.Errorf("envBool(%q, %v) = %v, want %v", tt.raw, tt.def, got, tt.want)
			}
		})
	}
}
