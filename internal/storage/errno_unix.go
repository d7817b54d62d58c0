//go:build unix

package storage

import (
	"errors"

	"golang.org/x/sys/unix"
)

func isNoSpace(err error) bool {
	return errors.Is(err, unix.ENOSPC)
}

func isReadOnly(err error) bool {
	return errors.Is(err, unix.EROFS)
}
