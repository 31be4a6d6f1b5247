package models

import "gorm.io/gorm"

// NoteType categorizes a research note.
type NoteType string

const (
	NoteGeneral      NoteType = "GENERAL"
	NoteEarnings     NoteType = "EARNINGS"
	NoteChannelCheck NoteType = "CHANNEL_CHECK"
	NoteValuation    NoteType = "VALUATION"
	NoteRisk         NoteType = "RISK"
	NotePostmortem   NoteType = "POSTMORTEM"
)

// Note is a markdown note attached to exactly one of an idea or a folder.
type Note struct {
	gorm.Model
	IdeaID   *uint `gorm:"index" json:"idea_id,omitempty"`
	FolderID *uint `gorm:"index" json:"folder_id,omitempty"`

	NoteType  NoteType `gorm:"not null;default:GENERAL" json:"note_type"`
	ContentMD string   `gorm:"not null" json:"content_md"`
}
