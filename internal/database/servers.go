package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jroosing/bindzone/internal/hosts"
	"github.com/jroosing/bindzone/internal/zoneerr"
)

const serverColumns = `id, name, host, port, username, ssh_key_path, password,
	zones_path, config_path, reload_command, enabled, description, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanServer(row rowScanner) (hosts.Target, error) {
	var t hosts.Target
	var enabled int
	var created string
	err := row.Scan(&t.ID, &t.Name, &t.Host, &t.Port, &t.Username, &t.SSHKeyPath, &t.Password,
		&t.ZonesPath, &t.ConfigPath, &t.ReloadCommand, &enabled, &t.Description, &created)
	if err != nil {
		return t, err
	}
	t.Enabled = enabled != 0
	if created != "" {
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			t.CreatedAt = ts
		}
	}
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ListServers returns registered hosts ordered by name. Disabled hosts are
// included only when includeDisabled is set.
func (db *DB) ListServers(ctx context.Context, includeDisabled bool) ([]hosts.Target, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	query := "SELECT " + serverColumns + " FROM servers"
	if !includeDisabled {
		query += " WHERE enabled = 1"
	}
	query += " ORDER BY name, id"

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query servers: %w", err)
	}
	defer rows.Close()

	servers := []hosts.Target{}
	for rows.Next() {
		t, err := scanServer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan server: %w", err)
		}
		servers = append(servers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating servers: %w", err)
	}

	return servers, nil
}

// GetServer returns the host with the given id.
func (db *DB) GetServer(ctx context.Context, id string) (hosts.Target, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.getServer(ctx, db.conn, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (db *DB) getServer(ctx context.Context, q queryRower, id string) (hosts.Target, error) {
	row := q.QueryRowContext(ctx, "SELECT "+serverColumns+" FROM servers WHERE id = ?", id)
	t, err := scanServer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, zoneerr.Wrap(zoneerr.ErrNotFound, nil, "server %s", id)
	}
	if err != nil {
		return t, fmt.Errorf("failed to get server %s: %w", id, err)
	}
	return t, nil
}

// AddServer registers a new host. Defaults are applied before validation and
// the creation time is stamped here; an existing id yields ErrAlreadyExists.
func (db *DB) AddServer(ctx context.Context, t hosts.Target) (hosts.Target, error) {
	t.ApplyDefaults()
	if err := t.Validate(); err != nil {
		return t, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return t, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertServer(ctx, tx, &t, db.now()); err != nil {
		return t, err
	}

	if err := tx.Commit(); err != nil {
		return t, fmt.Errorf("failed to commit server %s: %w", t.ID, err)
	}
	return t, nil
}

// insertServer stamps CreatedAt when it is zero and inserts t.
func insertServer(ctx context.Context, tx *sql.Tx, t *hosts.Target, now time.Time) error {
	var exists int
	err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM servers WHERE id = ?", t.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check server %s: %w", t.ID, err)
	}
	if exists > 0 {
		return zoneerr.Wrap(zoneerr.ErrAlreadyExists, nil, "server %s", t.ID)
	}

	if t.CreatedAt.IsZero() {
		t.CreatedAt = now.UTC()
	}
	stamp := now.UTC().Format(time.RFC3339Nano)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO servers (`+serverColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Host, t.Port, t.Username, t.SSHKeyPath, t.Password,
		t.ZonesPath, t.ConfigPath, t.ReloadCommand, boolInt(t.Enabled), t.Description,
		t.CreatedAt.UTC().Format(time.RFC3339Nano), stamp)
	if err != nil {
		return fmt.Errorf("failed to insert server %s: %w", t.ID, err)
	}
	return nil
}

// UpdateServer replaces the mutable fields of host id with those of t. The
// id and creation time never change.
func (db *DB) UpdateServer(ctx context.Context, id string, t hosts.Target) (hosts.Target, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return t, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := db.getServer(ctx, tx, id)
	if err != nil {
		return t, err
	}

	t.ID = current.ID
	t.CreatedAt = current.CreatedAt
	t.ApplyDefaults()
	if err := t.Validate(); err != nil {
		return t, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE servers SET
			name = ?, host = ?, port = ?, username = ?, ssh_key_path = ?, password = ?,
			zones_path = ?, config_path = ?, reload_command = ?, enabled = ?, description = ?,
			updated_at = ?
		WHERE id = ?
	`, t.Name, t.Host, t.Port, t.Username, t.SSHKeyPath, t.Password,
		t.ZonesPath, t.ConfigPath, t.ReloadCommand, boolInt(t.Enabled), t.Description,
		db.now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return t, fmt.Errorf("failed to update server %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return t, fmt.Errorf("failed to commit server %s: %w", id, err)
	}
	return t, nil
}

// DeleteServer removes host id.
func (db *DB) DeleteServer(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.ExecContext(ctx, "DELETE FROM servers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return zoneerr.Wrap(zoneerr.ErrNotFound, nil, "server %s", id)
	}

	return nil
}

// ToggleServer flips the enabled flag of host id and returns the result.
func (db *DB) ToggleServer(ctx context.Context, id string) (hosts.Target, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.ExecContext(ctx,
		"UPDATE servers SET enabled = 1 - enabled, updated_at = ? WHERE id = ?",
		db.now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return hosts.Target{}, fmt.Errorf("failed to toggle server %s: %w", id, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return hosts.Target{}, zoneerr.Wrap(zoneerr.ErrNotFound, nil, "server %s", id)
	}

	return db.getServer(ctx, db.conn, id)
}
