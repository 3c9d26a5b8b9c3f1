// Package storage persists uploaded file bytes and hands back asset
// references of the form /uploads/<name>. It knows nothing about events.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// URLPrefix roots every asset reference.
const URLPrefix = "/uploads/"

var (
	// ErrStorage wraps every failure to persist uploaded bytes.
	ErrStorage = errors.New("storage error")

	// ErrBlobExists is returned by a BlobStore when the name is already taken.
	// The content reader must not have been consumed when it is returned.
	ErrBlobExists = errors.New("blob already exists")
)

// FilePart is one uploaded file: the client-side name and its bytes.
type FilePart struct {
	Filename string
	Content  io.Reader
}

// BlobStore writes named blobs into a single flat namespace.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) error
}

// SanitizeFilename strips any directory components a client may have sent.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	switch base {
	case "", ".", "..", "/":
		return "file"
	}
	return base
}

// NameFromRef returns the blob name behind an asset reference.
func NameFromRef(ref string) string {
	return strings.TrimPrefix(ref, URLPrefix)
}
