// Package storage defines the base-directory file abstraction.
package storage

// Provider is the interface for file operations under the base directory.
type Provider interface {
	// Read returns the raw bytes of the file at path (relative to the base directory).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the base directory).
	Write(path string, content []byte) error
	// Exists reports whether path exists under the base directory.
	Exists(path string) (bool, error)
}
