// Package storage defines the slip-box file-system abstraction.
package storage

// Provider is the interface for slip-box file operations. Paths are always
// relative to the slip-box root and slash-separated.
type Provider interface {
	// List returns the relative path of every .md file under dir, in
	// directory-traversal order. It only enumerates; no file content is read.
	List(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
