package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/almahq/alma/internal/apperr"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the notes directory
}

// NewFS creates a new FS provider rooted at the given directory, creating it
// if it does not exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &FS{root: abs}, nil
}

// safePath resolves a relative path against the notes root and rejects any
// result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", &apperr.StorageError{Op: "resolve", Path: rel, Err: fmt.Errorf("absolute paths not allowed")}
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", &apperr.StorageError{Op: "resolve", Path: rel, Err: err}
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", &apperr.StorageError{Op: "resolve", Path: rel, Err: fmt.Errorf("path escapes notes root")}
	}
	return abs, nil
}

// List walks dir (relative to root) and returns every .md file path.
func (f *FS) List(dir string) ([]string, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(f.root, p)
		if relErr != nil {
			return relErr
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &apperr.StorageError{Op: "list", Path: dir, Err: err}
	}
	return out, nil
}

// Read returns the raw bytes of a note file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, &apperr.StorageError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// Write atomically writes content: tmp file, fsync, rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &apperr.StorageError{Op: "mkdir", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".alma-tmp-*")
	if err != nil {
		return &apperr.StorageError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return &apperr.StorageError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &apperr.StorageError{Op: "fsync", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &apperr.StorageError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return &apperr.StorageError{Op: "rename", Path: path, Err: err}
	}
	success = true
	return nil
}

// Delete removes a note file. Deleting a missing file returns ErrNotFound.
func (f *FS) Delete(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return apperr.ErrNotFound
		}
		return &apperr.StorageError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

// Move renames a note file within the notes root.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.safePath(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.safePath(newPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return &apperr.StorageError{Op: "mkdir", Path: newPath, Err: err}
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return &apperr.StorageError{Op: "move", Path: oldPath, Err: err}
	}
	return nil
}

// Exists reports whether a file exists at path.
func (f *FS) Exists(path string) bool {
	abs, err := f.safePath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}
