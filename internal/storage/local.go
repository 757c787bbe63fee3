package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes images into a directory that the router serves
// statically under a public prefix.
type LocalStore struct {
	dir    string
	prefix string
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir, publicPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{
		dir:    dir,
		prefix: "/" + strings.Trim(publicPrefix, "/"),
	}, nil
}

// Dir is the directory images are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// PublicPrefix is the URL prefix images are served under.
func (s *LocalStore) PublicPrefix() string {
	return s.prefix
}

// Save writes data to dir/name. The file is created exclusively, so a name
// clash fails instead of overwriting; a failed write leaves no file behind.
func (s *LocalStore) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !validName(name) {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	fullPath := filepath.Join(s.dir, name)
	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return path.Join(s.prefix, name), nil
}

// Exists reports whether publicPath names a stored file.
func (s *LocalStore) Exists(ctx context.Context, publicPath string) (bool, error) {
	fullPath, err := s.resolve(publicPath)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Delete removes the file behind publicPath.
func (s *LocalStore) Delete(ctx context.Context, publicPath string) error {
	fullPath, err := s.resolve(publicPath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) resolve(publicPath string) (string, error) {
	name, ok := strings.CutPrefix(publicPath, s.prefix+"/")
	if !ok || !validName(name) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.dir, name), nil
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
