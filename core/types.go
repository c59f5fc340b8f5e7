// Package core defines the shared types, errors and output helpers used by
// exif-time-travel.
package core

import "time"

// MetaField represents a single metadata key-value pair.
type MetaField struct {
	Key      string // Canonical field name (e.g. "Make", "DateTimeOriginal")
	Value    string // String representation of the value
	Category string // Category label (e.g. "EXIF")
	Editable bool   // Whether a timestamp rewrite changes this field
	Raw      string // Raw type/count description
}

// Metadata holds all metadata extracted from a single file.
type Metadata struct {
	FilePath string
	Format   string // Human-readable format name (e.g. "JPEG")
	Fields   []MetaField
}

// Summary returns a short string of key fields for quick display. The
// capture time wins over the camera make and model.
func (m *Metadata) Summary() string {
	for _, key := range []string{"DateTimeOriginal", "Make", "Model"} {
		for _, f := range m.Fields {
			if f.Key == key {
				return f.Key + ": " + f.Value
			}
		}
	}
	return m.Format
}

// Rename describes what happens to one file of a batch: its current name
// and timestamp, and the name and timestamp it ends up with.
type Rename struct {
	From    string
	To      string
	OldTime time.Time
	NewTime time.Time
}
