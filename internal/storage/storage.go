// Package storage abstracts the blob store behind a swappable interface.
// Ledger metadata stays authoritative; blobs are addressed by key only and
// full URLs are derived, never persisted.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"fittrack-api/internal/domain"
)

// ErrNotFound is returned by Open when no blob exists for the key.
var ErrNotFound = errors.New("blob not found")

// ErrInvalidKey is returned when a key fails the containment check.
var ErrInvalidKey = errors.New("invalid storage key")

// Storage is the blob store contract. Delete is idempotent: deleting a
// missing object is not an error.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

const maxFileNameLen = 100

var fileNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFileName strips path separators and any character outside
// [a-zA-Z0-9._-] from a client-supplied file name and truncates the result.
// Leading dots are dropped so a sanitized name can never be "." or "..".
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	// path.Base reduces separator-only input to "/" (and "" to "."); both
	// carry no usable name and take the fallback below.
	if name == "/" || name == "." {
		name = ""
	}
	name = fileNameSanitizer.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if len(name) > maxFileNameLen {
		name = name[len(name)-maxFileNameLen:]
	}
	if name == "" {
		name = "file"
	}
	return name
}

// BuildKey generates a collision-free blob key namespaced by owner:
// {ownerId}/{entity-segment}/{parentId-or-fresh-uuid}/{uuid}-{sanitizedName}
// Namespacing by owner keeps later bulk cleanup a prefix operation.
func BuildKey(ownerID uuid.UUID, kind domain.ParentKind, parentID *uuid.UUID, fileName string) string {
	scope := uuid.New().String()
	if parentID != nil {
		scope = parentID.String()
	}
	return fmt.Sprintf("%s/%s/%s/%s-%s",
		ownerID.String(), kind.PathSegment(), scope, uuid.New().String(), SanitizeFileName(fileName))
}
