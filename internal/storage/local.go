package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jroosing/bindzone/internal/zoneerr"
)

// Local implements Port directly against the local filesystem. It has no
// connection lifecycle.
type Local struct {
	// FileMode is applied to newly created files (default 0644).
	FileMode os.FileMode
}

// NewLocal returns a local backend.
func NewLocal() *Local {
	return &Local{FileMode: 0o644}
}

func (l *Local) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, localError(err, "read", path)
	}
	return b, nil
}

func (l *Local) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mode := l.FileMode
	if mode == 0 {
		mode = 0o644
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return localError(err, "write", path)
	}
	return nil
}

func (l *Local) List(ctx context.Context, dir string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, localError(err, "list", dir)
	}
	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		fi := FileInfo{Name: e.Name(), IsDir: e.IsDir()}
		if info, err := e.Info(); err == nil {
			fi.Size = info.Size()
		}
		out = append(out, fi)
	}
	return out, nil
}

func (l *Local) Exists(_ context.Context, path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (l *Local) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return localError(err, "remove", path)
	}
	return nil
}

func (l *Local) ResolvePath(root, name string) (string, error) {
	root = filepath.Clean(root)
	p := filepath.Join(root, name)
	if p == root || !within(root, p, string(filepath.Separator)) {
		return "", accessDenied(root, name)
	}
	return p, nil
}

// Release is a no-op for the local backend.
func (l *Local) Release() error { return nil }

func localError(err error, op, path string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return zoneerr.Wrap(zoneerr.ErrNotFound, err, "%s %s", op, path)
	case isNoSpace(err):
		return zoneerr.Wrap(zoneerr.ErrNoSpace, err, "%s %s", op, path)
	case errors.Is(err, fs.ErrPermission), isReadOnly(err):
		return zoneerr.Wrap(zoneerr.ErrPermissionDenied, err, "%s %s", op, path)
	default:
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
}
