// Package storage defines the export directory abstraction.
package storage

import "github.com/starford/orderlist/internal/models"

// Provider is the interface for export directory operations.
type Provider interface {
	// List returns metadata for every .pdf file under dir (relative to root).
	List(dir string) ([]models.ExportFile, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to root).
	Delete(path string) error
}
