// Package storage defines the notes-directory file system abstraction.
package storage

// Provider is the interface for note file operations. All paths are relative
// to the notes root.
type Provider interface {
	// List returns the relative path of every .md file under dir.
	List(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Exists reports whether a file exists at path.
	Exists(path string) bool
}
