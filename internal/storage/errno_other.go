//go:build !unix

package storage

func isNoSpace(error) bool { return false }

func isReadOnly(error) bool { return false }
