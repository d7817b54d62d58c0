package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jroosing/bindzone/internal/zoneerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_ReadWriteListRemove(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	l := NewLocal()

	p := filepath.Join(dir, "example.com")
	require.NoError(t, l.Write(ctx, p, []byte("zone data\n")))
	assert.True(t, l.Exists(ctx, p))

	got, err := l.Read(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "zone data\n", string(got))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	entries, err := l.List(ctx, dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byName := map[string]FileInfo{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.False(t, byName["example.com"].IsDir)
	assert.Equal(t, int64(10), byName["example.com"].Size)
	assert.True(t, byName["sub"].IsDir)

	require.NoError(t, l.Remove(ctx, p))
	assert.False(t, l.Exists(ctx, p))
	assert.NoError(t, l.Release())
	assert.NoError(t, l.Release())
}

func TestLocal_WriteTruncates(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "z")
	l := NewLocal()

	require.NoError(t, l.Write(ctx, p, []byte("a much longer first version")))
	require.NoError(t, l.Write(ctx, p, []byte("short")))

	got, err := l.Read(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "short", string(got))
}

func TestLocal_NotFound(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	l := NewLocal()

	_, err := l.Read(ctx, filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, zoneerr.ErrNotFound)

	_, err = l.List(ctx, filepath.Join(dir, "nodir"))
	assert.ErrorIs(t, err, zoneerr.ErrNotFound)

	err = l.Remove(ctx, filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, zoneerr.ErrNotFound)

	assert.False(t, l.Exists(ctx, filepath.Join(dir, "missing")))
}

func TestLocal_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	err := NewLocal().Write(ctx, filepath.Join(dir, "z"), []byte("x"))
	assert.ErrorIs(t, err, zoneerr.ErrPermissionDenied)
}

func TestLocal_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocal().Read(ctx, filepath.Join(t.TempDir(), "z"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocal_ResolvePath(t *testing.T) {
	l := NewLocal()
	root := filepath.Join(t.TempDir(), "zones")

	p, err := l.ResolvePath(root, "example.com")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "example.com"), p)

	for _, name := range []string{"../etc/passwd", "..", "", ".", "a/../../b"} {
		_, err := l.ResolvePath(root, name)
		assert.ErrorIs(t, err, zoneerr.ErrAccessDenied, "name %q", name)
	}
}

func TestWithin(t *testing.T) {
	assert.True(t, within("/etc/bind", "/etc/bind", "/"))
	assert.True(t, within("/etc/bind", "/etc/bind/zones/x", "/"))
	assert.False(t, within("/etc/bind", "/etc/bindings", "/"))
	assert.True(t, within("/", "/x", "/"))
}
