package models

import "time"

// ServerResponse is a registered BIND host. The password itself is never
// returned.
type ServerResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Host          string    `json:"host"`
	Port          int       `json:"port"`
	Username      string    `json:"username"`
	SSHKeyPath    string    `json:"ssh_key_path,omitempty"`
	HasPassword   bool      `json:"has_password"`
	ZonesPath     string    `json:"zones_path"`
	ConfigPath    string    `json:"config_path"`
	ReloadCommand string    `json:"reload_command,omitempty"`
	Enabled       bool      `json:"enabled"`
	Description   string    `json:"description,omitempty"`
	Local         bool      `json:"local"`
	CreatedAt     time.Time `json:"created_at"`
}

// ServerListResponse contains a list of servers.
type ServerListResponse struct {
	Servers []ServerResponse `json:"servers"`
	Count   int              `json:"count"`
}

// ServerCreateRequest registers a host. Empty optional fields take the
// defaults: port 22, username root, zones path /etc/bind/zones, config path
// /etc/bind/named.conf, enabled true.
type ServerCreateRequest struct {
	ID            string `json:"id,omitempty"` // generated when empty
	Name          string `json:"name" binding:"required"`
	Host          string `json:"host" binding:"required"`
	Port          int    `json:"port,omitempty"`
	Username      string `json:"username,omitempty"`
	SSHKeyPath    string `json:"ssh_key_path,omitempty"`
	Password      string `json:"password,omitempty"`
	ZonesPath     string `json:"zones_path,omitempty"`
	ConfigPath    string `json:"config_path,omitempty"`
	ReloadCommand string `json:"reload_command,omitempty"`
	Enabled       *bool  `json:"enabled,omitempty"`
	Description   string `json:"description,omitempty"`
}

// ServerUpdateRequest changes the given fields of a host. Omitted fields keep
// their value; id and created_at cannot change.
type ServerUpdateRequest struct {
	Name          *string `json:"name,omitempty"`
	Host          *string `json:"host,omitempty"`
	Port          *int    `json:"port,omitempty"`
	Username      *string `json:"username,omitempty"`
	SSHKeyPath    *string `json:"ssh_key_path,omitempty"`
	Password      *string `json:"password,omitempty"`
	ZonesPath     *string `json:"zones_path,omitempty"`
	ConfigPath    *string `json:"config_path,omitempty"`
	ReloadCommand *string `json:"reload_command,omitempty"`
	Enabled       *bool   `json:"enabled,omitempty"`
	Description   *string `json:"description,omitempty"`
}

// ConnectionTestResponse reports the outcome of a connection test.
type ConnectionTestResponse struct {
	ServerID        string `json:"server_id"`
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Local           bool   `json:"local"`
	ZonesPathExists bool   `json:"zones_path_exists"`
	Kind            string `json:"kind,omitempty"` // error kind when Success is false
}

// ServerImportResponse reports a legacy servers document import.
type ServerImportResponse struct {
	Imported int `json:"imported"`
}
