// Package storage defines the file-system abstraction over the logs directory.
package storage

import "github.com/anurajdeol90/team-digest/internal/models"

// Provider is the interface for log directory file operations.
type Provider interface {
	// List returns metadata for every .md file directly in dir (relative to
	// root). Subdirectories are not descended and file content is not read.
	List(dir string) ([]models.LogFile, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
}
