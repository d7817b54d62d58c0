package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jroosing/bindzone/internal/hosts"
	"github.com/jroosing/bindzone/internal/zoneerr"
)

// legacyServer is one entry of a servers.config.json document.
type legacyServer struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Host           string    `json:"host"`
	Port           int       `json:"port,omitempty"`
	Username       string    `json:"username,omitempty"`
	SSHKeyPath     string    `json:"sshKeyPath,omitempty"`
	Password       string    `json:"password,omitempty"`
	BindZonesPath  string    `json:"bindZonesPath,omitempty"`
	BindConfigPath string    `json:"bindConfigPath,omitempty"`
	ReloadCommand  string    `json:"reloadCommand,omitempty"`
	Enabled        *bool     `json:"enabled,omitempty"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
}

type legacyDocument struct {
	Servers []legacyServer `json:"servers"`
}

func (s legacyServer) target() hosts.Target {
	t := hosts.Target{
		ID:            s.ID,
		Name:          s.Name,
		Host:          s.Host,
		Port:          s.Port,
		Username:      s.Username,
		SSHKeyPath:    s.SSHKeyPath,
		Password:      s.Password,
		ZonesPath:     s.BindZonesPath,
		ConfigPath:    s.BindConfigPath,
		ReloadCommand: s.ReloadCommand,
		Enabled:       s.Enabled == nil || *s.Enabled,
		Description:   s.Description,
		CreatedAt:     s.CreatedAt,
	}
	t.ApplyDefaults()
	return t
}

func legacyFromTarget(t hosts.Target) legacyServer {
	enabled := t.Enabled
	return legacyServer{
		ID:             t.ID,
		Name:           t.Name,
		Host:           t.Host,
		Port:           t.Port,
		Username:       t.Username,
		SSHKeyPath:     t.SSHKeyPath,
		Password:       t.Password,
		BindZonesPath:  t.ZonesPath,
		BindConfigPath: t.ConfigPath,
		ReloadCommand:  t.ReloadCommand,
		Enabled:        &enabled,
		Description:    t.Description,
		CreatedAt:      t.CreatedAt,
	}
}

// ImportServersJSON adds every server of a legacy {"servers": [...]} document
// that is not registered yet. Existing ids are left untouched. It returns
// the number of servers added.
func (db *DB) ImportServersJSON(ctx context.Context, r io.Reader) (int, error) {
	var doc legacyDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return 0, zoneerr.Wrap(zoneerr.ErrInvalidFormat, err, "decode servers document")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, s := range doc.Servers {
		t := s.target()
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("server %q: %w", s.ID, err)
		}
		err := insertServer(ctx, tx, &t, db.now())
		if errors.Is(err, zoneerr.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return 0, err
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return added, nil
}

// ExportServersJSON writes every registered server, enabled or not, as a
// legacy servers document. Passwords are written only when withSecrets is set.
func (db *DB) ExportServersJSON(ctx context.Context, w io.Writer, withSecrets bool) error {
	servers, err := db.ListServers(ctx, true)
	if err != nil {
		return err
	}

	doc := legacyDocument{Servers: make([]legacyServer, 0, len(servers))}
	for _, t := range servers {
		s := legacyFromTarget(t)
		if !withSecrets {
			s.Password = ""
		}
		doc.Servers = append(doc.Servers, s)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode servers: %w", err)
	}
	return nil
}
