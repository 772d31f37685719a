package model

import "time"

// ReferenceSource identifies where a reference link came from.
type ReferenceSource string

const (
	ReferenceSpotify ReferenceSource = "spotify"
	ReferenceYouTube ReferenceSource = "youtube"
)

// Valid reports whether s is a supported reference source.
func (s ReferenceSource) Valid() bool {
	return s == ReferenceSpotify || s == ReferenceYouTube
}

// Reference is an external track or video a song points at for inspiration.
type Reference struct {
	ID        string          `json:"id" gorm:"primaryKey;size:36"`
	SongID    string          `json:"songId" gorm:"size:36;index;not null"`
	Type      ReferenceSource `json:"type" gorm:"size:20;not null"`
	Title     string          `json:"title" gorm:"size:255;not null"`
	Artist    string          `json:"artist" gorm:"size:255"`
	URL       string          `json:"url" gorm:"size:767;not null"`
	Thumbnail string          `json:"thumbnail,omitempty" gorm:"size:767"`
	User      string          `json:"user,omitempty" gorm:"size:100"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (Reference) TableName() string {
	return "song_references"
}
