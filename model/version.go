package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// History labels for versions not produced by field edits.
const (
	ChangeSongCreated    = "Song created"
	ChangeRestored       = "Restored from version history"
	ChangeAddedReference = "Added reference"
)

// ChangeUploadedFile is the history label for a file upload of the given kind.
func ChangeUploadedFile(fileType FileType) string {
	return fmt.Sprintf("Uploaded %s file", fileType)
}

// Version is one immutable entry in a song's append-only history.
// Only the User attribution may be corrected after the fact; everything
// else is written once and never touched again.
type Version struct {
	ID      string `json:"id" gorm:"primaryKey;size:36"`
	SongID  string `json:"songId" gorm:"size:36;index;not null"`
	Changes string `json:"changes" gorm:"size:255;not null"`
	Comment string `json:"comment" gorm:"size:512"`
	User    string `json:"user" gorm:"size:100"`

	// Snapshot, when present, is the serialized pre-mutation capture of the
	// song's editable fields, stored as an opaque JSON string.
	Snapshot string `json:"snapshot,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`

	// Seq breaks ordering ties between versions written within the same
	// timestamp; it increases with insertion order per song.
	Seq int64 `json:"seq" gorm:"index;autoIncrement"`
}

// TableName specifies the table name.
func (Version) TableName() string {
	return "versions"
}

// HasSnapshot reports whether this version can serve as a restore target.
func (v *Version) HasSnapshot() bool {
	return v.Snapshot != ""
}

// Snapshot is the capture of a song's editable-field state taken
// immediately before a mutation, embedded in the producing version.
type Snapshot struct {
	Title     string   `json:"title"`
	Lyrics    string   `json:"lyrics"`
	Notes     string   `json:"notes"`
	Progress  Progress `json:"progress"`
	Timestamp string   `json:"timestamp"`
}

// TakeSnapshot captures the restorable fields of s as they are right now.
func TakeSnapshot(s *Song, now time.Time) Snapshot {
	return Snapshot{
		Title:     s.Title,
		Lyrics:    s.Lyrics,
		Notes:     s.Notes,
		Progress:  s.Progress,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// Encode serializes the snapshot to the stored string form.
func (s Snapshot) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return string(data), nil
}

// ParseSnapshot decodes a stored snapshot string.
func ParseSnapshot(raw string) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return s, nil
}
