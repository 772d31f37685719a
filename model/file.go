package model

import "time"

// FileType distinguishes the two kinds of files a song carries.
type FileType string

const (
	FileTypeAudio FileType = "audio"
	FileTypeLogic FileType = "logic"
)

// Valid reports whether t is a known file type.
func (t FileType) Valid() bool {
	return t == FileTypeAudio || t == FileTypeLogic
}

// File is the metadata of an audio or Logic-project file attached to a song.
// The raw bytes live in object storage; only the URL is kept here.
type File struct {
	ID         string   `json:"id" gorm:"primaryKey;size:36"`
	SongID     string   `json:"songId" gorm:"size:36;index;not null"`
	Name       string   `json:"name" gorm:"size:255;not null"`
	Type       FileType `json:"type" gorm:"size:20;not null"`
	URL        string   `json:"url" gorm:"size:767;not null"`
	MimeType   string   `json:"mimeType" gorm:"size:100"`
	Size       int64    `json:"size"`
	ExternalID string   `json:"externalId,omitempty" gorm:"size:255"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (File) TableName() string {
	return "files"
}
