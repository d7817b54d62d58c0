// Package storage provides the file capability set zone operations run
// against, with a local filesystem backend and a remote backend reached over
// SSH/SFTP.
//
// Both backends return errors carrying a zoneerr kind (NotFound,
// PermissionDenied, NoSpace, TransportError, ...) wrapped with the failing
// operation and path.
package storage

import (
	"context"
	"strings"

	"github.com/jroosing/bindzone/internal/zoneerr"
)

// FileInfo describes one directory entry.
type FileInfo struct {
	Name  string
	IsDir bool
	Size  int64
}

// Port is the backend-agnostic file capability set.
type Port interface {
	// Read returns the content of path.
	Read(ctx context.Context, path string) ([]byte, error)
	// Write creates or truncates path with data.
	Write(ctx context.Context, path string, data []byte) error
	// List returns the entries of dir.
	List(ctx context.Context, dir string) ([]FileInfo, error)
	// Exists reports whether path exists. It never fails; any probe error
	// reads as false.
	Exists(ctx context.Context, path string) bool
	// Remove deletes path.
	Remove(ctx context.Context, path string) error
	// ResolvePath joins name onto root and rejects results outside root.
	ResolvePath(root, name string) (string, error)
	// Release frees the backend's session, if any. It is safe to call twice.
	Release() error
}

// within reports whether cleaned path p is root or lies below it.
func within(root, p, sep string) bool {
	if p == root {
		return true
	}
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(p, root)
}

func accessDenied(root, name string) error {
	return zoneerr.Wrap(zoneerr.ErrAccessDenied, nil, "path %q escapes %s", name, root)
}
