package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeSnapshotCapturesEditableFields(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	song := &Song{
		Title:    "Take One",
		Lyrics:   "verse one",
		Notes:    "needs a bridge",
		Progress: ProgressRecording,
		Origin:   "jam session",
	}

	snapshot := TakeSnapshot(song, now)
	assert.Equal(t, "Take One", snapshot.Title)
	assert.Equal(t, "verse one", snapshot.Lyrics)
	assert.Equal(t, "needs a bridge", snapshot.Notes)
	assert.Equal(t, ProgressRecording, snapshot.Progress)
	assert.Equal(t, "2026-03-14T09:26:53Z", snapshot.Timestamp)
}

func TestSnapshotRoundTrip(t *testing.T) {
	original := TakeSnapshot(&Song{Title: "Take One", Progress: ProgressMixing}, time.Now())

	encoded, err := original.Encode()
	require.NoError(t, err)

	decoded, err := ParseSnapshot(encoded)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestParseSnapshotMalformed(t *testing.T) {
	_, err := ParseSnapshot("{not json")
	assert.Error(t, err)
}

func TestHasSnapshot(t *testing.T) {
	assert.False(t, (&Version{}).HasSnapshot())
	assert.True(t, (&Version{Snapshot: `{"title":"x"}`}).HasSnapshot())
}

func TestFieldChangeLabels(t *testing.T) {
	assert.Equal(t, "Updated title", TitleChange{}.Label())
	assert.Equal(t, "Updated lyrics", LyricsChange{}.Label())
	assert.Equal(t, "Updated notes", NotesChange{}.Label())
	assert.Equal(t, "Updated progress", ProgressChange{}.Label())
	assert.Equal(t, "Updated origin", OriginChange{}.Label())
	assert.Equal(t, "Uploaded audio file", ChangeUploadedFile(FileTypeAudio))
	assert.Equal(t, "Uploaded logic file", ChangeUploadedFile(FileTypeLogic))
}

func TestFieldChangeAttribution(t *testing.T) {
	now := time.Now()
	song := &Song{}

	LyricsChange{Value: "verse one"}.Apply(song, "Alice", now)
	assert.Equal(t, "Alice", song.LyricsUser)
	require.NotNil(t, song.LyricsUpdatedAt)
	assert.True(t, song.LyricsUpdatedAt.Equal(now))

	// A title edit carries no per-field attribution.
	TitleChange{Value: "Take One"}.Apply(song, "Bob", now)
	assert.Equal(t, "Take One", song.Title)
	assert.Equal(t, "Alice", song.LyricsUser)
}
