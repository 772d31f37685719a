package model

import "time"

// Comment is a free-text remark on a song. Comments have their own
// lifecycle and never produce version history entries.
type Comment struct {
	ID     string `json:"id" gorm:"primaryKey;size:36"`
	SongID string `json:"songId" gorm:"size:36;index;not null"`
	User   string `json:"user" gorm:"size:100;not null"`
	Text   string `json:"text" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// TableName specifies the table name.
func (Comment) TableName() string {
	return "comments"
}
