package model

import "time"

// Album groups an ordered set of songs being produced together.
type Album struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"index"`
}

// TableName specifies the table name.
func (Album) TableName() string {
	return "albums"
}

// AlbumWithSongs is an album together with its songs in order.
type AlbumWithSongs struct {
	Album
	Songs []*Song `json:"songs"`
}

// AlbumDetail is an album with full song data attached, as served to callers.
type AlbumDetail struct {
	Album
	Songs []*SongDetail `json:"songs"`
}
