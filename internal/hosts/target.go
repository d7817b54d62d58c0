// Package hosts describes the BIND hosts whose zone directories are managed,
// either on this machine or over SSH.
package hosts

import (
	"net/netip"
	"regexp"
	"strings"
	"time"

	"github.com/jroosing/bindzone/internal/zoneerr"
)

// Defaults applied to targets that leave a field empty.
const (
	DefaultPort       = 22
	DefaultUsername   = "root"
	DefaultZonesPath  = "/etc/bind/zones"
	DefaultConfigPath = "/etc/bind/named.conf"
)

// LocalID is the id of the built-in target backed by the local zones
// directory.
const LocalID = "local"

var idPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Target is one BIND host.
type Target struct {
	ID            string
	Name          string
	Host          string
	Port          int
	Username      string
	SSHKeyPath    string
	Password      string
	ZonesPath     string
	ConfigPath    string
	ReloadCommand string
	Enabled       bool
	Description   string
	CreatedAt     time.Time
}

// Local returns the built-in target for zonesPath on this machine.
func Local(zonesPath string) Target {
	t := Target{
		ID:        LocalID,
		Name:      "Local BIND9",
		Host:      "localhost",
		ZonesPath: zonesPath,
		Enabled:   true,
	}
	t.ApplyDefaults()
	return t
}

// ApplyDefaults fills empty fields with their defaults.
func (t *Target) ApplyDefaults() {
	if t.Port == 0 {
		t.Port = DefaultPort
	}
	if t.Username == "" {
		t.Username = DefaultUsername
	}
	if t.ZonesPath == "" {
		t.ZonesPath = DefaultZonesPath
	}
	if t.ConfigPath == "" {
		t.ConfigPath = DefaultConfigPath
	}
}

// Validate checks the fields a target cannot work without.
func (t Target) Validate() error {
	switch {
	case t.ID == "" || t.Name == "" || t.Host == "":
		return zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "id, name and host are required")
	case !idPattern.MatchString(t.ID):
		return zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "invalid server id %q", t.ID)
	case t.Port < 1 || t.Port > 65535:
		return zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "invalid port %d", t.Port)
	case strings.ContainsAny(t.Host, " \t\r\n"):
		return zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "invalid host %q", t.Host)
	}
	return nil
}

// IsLocal reports whether the target is this machine.
func (t Target) IsLocal() bool {
	return IsLoopback(t.Host)
}

// IsLoopback reports whether host names the local machine: "localhost" or
// any loopback address.
func IsLoopback(host string) bool {
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	addr, err := netip.ParseAddr(host)
	return err == nil && addr.IsLoopback()
}
