// Package models defines the domain types for orderlist.
package models

import "time"

// Item is one ledger entry.
type Item struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	IconID    string `json:"icon"`
	CreatedAt string `json:"created_at"` // display-only time of day
}

// Candidate is the unvalidated input to a ledger add.
type Candidate struct {
	Name     string `json:"name" yaml:"name"`
	Quantity int    `json:"quantity" yaml:"quantity"`
	IconID   string `json:"icon" yaml:"icon"`
}

// Notification kinds.
const (
	KindSuccess = "success"
	KindError   = "error"
)

// Notification is a user-facing status message.
type Notification struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// ExportFile describes a document saved in the export directory.
type ExportFile struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
