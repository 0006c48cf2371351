package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStorage stores blobs on the local filesystem under a private root.
// Keys are re-validated with a resolved-path containment check before every
// filesystem access, so a traversal attempt is rejected even if upstream
// sanitization were bypassed. Reads go through Open only; the root is never
// served directly.
type LocalStorage struct {
	root    string
	baseURL string
	logger  *zap.Logger
}

// NewLocalStorage creates the root directory if needed. baseURL is the
// public prefix used by URL (the gated retrieval endpoint, not the root).
func NewLocalStorage(root, baseURL string, logger *zap.Logger) (*LocalStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStorage{
		root:    abs,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}, nil
}

// resolve maps a key to an absolute path inside the root, rejecting any key
// whose resolved path escapes containment.
func (s *LocalStorage) resolve(key string) (string, error) {
	if key == "" || strings.Contains(key, "\x00") {
		return "", ErrInvalidKey
	}
	p := filepath.Join(s.root, filepath.FromSlash(key))
	p = filepath.Clean(p)
	if p == s.root || !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return p, nil
}

// Put writes the blob for key, creating parent directories as needed.
func (s *LocalStorage) Put(ctx context.Context, key string, r io.Reader) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("failed to create blob file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return fmt.Errorf("failed to close blob file: %w", err)
	}
	return nil
}

// Open returns a reader for the blob at key.
func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

// Delete removes the blob at key, then prunes any directories left empty.
// Deleting a missing blob is not an error.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	s.pruneEmptyDirs(filepath.Dir(p))
	return nil
}

// URL derives the gated retrieval URL for a key.
func (s *LocalStorage) URL(key string) string {
	if s.baseURL == "" {
		return key
	}
	return s.baseURL + "/" + key
}

// pruneEmptyDirs walks upward from dir removing empty directories, stopping
// at (and never deleting) the storage root. Failures affect disk tidiness
// only, so they are logged and swallowed.
func (s *LocalStorage) pruneEmptyDirs(dir string) {
	for dir != s.root && strings.HasPrefix(dir, s.root+string(filepath.Separator)) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			if s.logger != nil {
				s.logger.Warn("Failed to prune empty storage directory",
					zap.String("dir", dir),
					zap.Error(err),
				)
			}
			return
		}
		dir = filepath.Dir(dir)
	}
}

var _ Storage = (*LocalStorage)(nil)
