// Package apperr defines the error taxonomy shared across the core.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that a note id does not correspond to any file.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a uniqueness violation (e.g. duplicate project id).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalid signals rejected input.
	ErrInvalid = errors.New("invalid")
)

// StorageError wraps a failed file read/write/delete. It is always fatal to
// the current operation and never retried here.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ParseError marks a note file whose frontmatter is malformed or missing
// required fields. The regenerator skips such files instead of aborting.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IndexWriteError signals a failure to persist an index document. The note
// file is then ahead of its indexes, which is exactly the condition a
// regeneration pass repairs; callers must surface it, not swallow it.
type IndexWriteError struct {
	Index string
	Err   error
}

func (e *IndexWriteError) Error() string {
	return fmt.Sprintf("index write %s: %v", e.Index, e.Err)
}

func (e *IndexWriteError) Unwrap() error { return e.Err }
