// Package zoneerr defines the fixed set of error kinds reported by zone
// operations.
//
// Error Handling:
//
// Every failure is a sentinel kind wrapped with operational context using
// fmt.Errorf("...: %w", ErrKind). Use errors.Is to test for a kind and KindOf
// to recover the kind name for reporting.
package zoneerr

import (
	"errors"
	"fmt"
)

// Kind is the name of an error kind as reported to callers.
type Kind string

const (
	KindNotFound         Kind = "NotFound"
	KindAlreadyExists    Kind = "AlreadyExists"
	KindInvalidFormat    Kind = "InvalidFormat"
	KindAccessDenied     Kind = "AccessDenied"
	KindAuth             Kind = "AuthError"
	KindConnect          Kind = "ConnectError"
	KindTransport        Kind = "TransportError"
	KindPermissionDenied Kind = "PermissionDenied"
	KindNoSpace          Kind = "NoSpace"
	KindDisabled         Kind = "Disabled"
	KindInternal         Kind = "Internal"
)

var (
	// ErrNotFound means a path, zone or record is absent.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating a zone that already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidFormat covers malformed zone names and record input.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrAccessDenied means a path escapes the zones root or carries
	// characters that are unsafe to hand to a remote shell.
	ErrAccessDenied = errors.New("access denied")
	// ErrAuth is a remote session authentication failure.
	ErrAuth = errors.New("authentication failed")
	// ErrConnect is a remote transport or handshake failure.
	ErrConnect = errors.New("connection failed")
	// ErrTransport is an I/O failure on an already open remote session.
	ErrTransport = errors.New("transport error")
	// ErrPermissionDenied is a storage-level permission failure.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNoSpace means the storage device is full.
	ErrNoSpace = errors.New("no space left on device")
	// ErrDisabled means the addressed host is registered but switched off.
	ErrDisabled = errors.New("disabled")
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrNotFound, KindNotFound},
	{ErrAlreadyExists, KindAlreadyExists},
	{ErrInvalidFormat, KindInvalidFormat},
	{ErrAccessDenied, KindAccessDenied},
	{ErrAuth, KindAuth},
	{ErrConnect, KindConnect},
	{ErrTransport, KindTransport},
	{ErrPermissionDenied, KindPermissionDenied},
	{ErrNoSpace, KindNoSpace},
	{ErrDisabled, KindDisabled},
}

// KindOf returns the kind of err, or KindInternal when err carries none of
// the sentinels. The first matching kind in declaration order wins.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// Wrap attaches a kind and context to cause. The result matches both kind
// and cause under errors.Is.
func Wrap(kind error, cause error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		return fmt.Errorf("%s: %w", msg, kind)
	}
	return fmt.Errorf("%s: %w: %w", msg, kind, cause)
}
