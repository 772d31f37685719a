package model

import "time"

// Progress is a song's production stage.
type Progress string

const (
	ProgressNotStarted Progress = "Not Started"
	ProgressInProgress Progress = "In Progress"
	ProgressRecording  Progress = "Recording"
	ProgressMixing     Progress = "Mixing"
	ProgressMastering  Progress = "Mastering"
	ProgressComplete   Progress = "Complete"
)

// Valid reports whether p is one of the known production stages.
func (p Progress) Valid() bool {
	switch p {
	case ProgressNotStarted, ProgressInProgress, ProgressRecording,
		ProgressMixing, ProgressMastering, ProgressComplete:
		return true
	}
	return false
}

// Song is the mutable current-state record of one track within an album.
// Its edit history lives in the versions table, not here.
type Song struct {
	ID      string `json:"id" gorm:"primaryKey;size:36"`
	AlbumID string `json:"albumId" gorm:"size:36;index;not null"`
	Title   string `json:"title" gorm:"size:255;not null"`

	Lyrics          string     `json:"lyrics" gorm:"type:text"`
	LyricsUser      string     `json:"lyricsUser,omitempty" gorm:"size:100"`
	LyricsUpdatedAt *time.Time `json:"lyricsUpdatedAt,omitempty"`

	Notes          string     `json:"notes" gorm:"type:text"`
	NotesUser      string     `json:"notesUser,omitempty" gorm:"size:100"`
	NotesUpdatedAt *time.Time `json:"notesUpdatedAt,omitempty"`

	Progress Progress `json:"progress" gorm:"size:40;default:'Not Started'"`
	Origin   string   `json:"origin" gorm:"size:255"`

	// Order defines the song's position within its album's sequence,
	// contiguous from 0 in creation order until reordered.
	Order int `json:"order" gorm:"column:sort_order;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Song) TableName() string {
	return "songs"
}

// SongDetail is a song with all of its owned data attached.
type SongDetail struct {
	Song
	Files      []*File      `json:"files"`
	References []*Reference `json:"references"`
	Comments   []*Comment   `json:"comments"`
	Versions   []*Version   `json:"versions"`
}
