package models

import "gorm.io/gorm"

// Attachment is an uploaded file belonging to exactly one of a folder or an
// idea. The blob lives on disk at StoragePath; this row is the metadata.
type Attachment struct {
	gorm.Model
	FolderID *uint `gorm:"index" json:"folder_id,omitempty"`
	IdeaID   *uint `gorm:"index" json:"idea_id,omitempty"`

	Filename    string `gorm:"not null" json:"filename"`
	MimeType    string `gorm:"not null" json:"mime_type"`
	SizeBytes   int64  `gorm:"not null" json:"size_bytes"`
	StoragePath string `gorm:"not null" json:"-"`
}
