package tracker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"Tracklab/core/ledger"
	"Tracklab/model"
	"Tracklab/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := repository.NewJSONStore(filepath.Join(t.TempDir(), "tracklab.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewService(store, ledger.New(store))
}

func TestCreateSongDefaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)

	song, err := svc.CreateSong(ctx, album.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, song.Title)
	assert.Equal(t, model.ProgressNotStarted, song.Progress)
	assert.Equal(t, 0, song.Order)

	require.Len(t, song.Versions, 1)
	v := song.Versions[0]
	assert.Equal(t, model.ChangeSongCreated, v.Changes)
	assert.Equal(t, "Initial creation", v.Comment)
	assert.Equal(t, "User", v.User)
	assert.False(t, v.HasSnapshot(), "creation entries are not restore targets")
}

func TestCreateSongInMissingAlbum(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateSong(context.Background(), "no-such-album", "Take One", "Alice")
	assert.ErrorIs(t, err, repository.ErrAlbumNotFound)
}

func TestSongOrderSequence(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)

	var ids []string
	for _, title := range []string{"One", "Two", "Three"} {
		song, err := svc.CreateSong(ctx, album.ID, title, "Alice")
		require.NoError(t, err)
		ids = append(ids, song.ID)
	}

	detail, err := svc.GetAlbum(ctx, album.ID)
	require.NoError(t, err)
	require.Len(t, detail.Songs, 3)
	for i, song := range detail.Songs {
		assert.Equal(t, i, song.Order)
		assert.Equal(t, ids[i], song.ID)
	}
}

func TestReorderSongs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)

	var ids []string
	for _, title := range []string{"One", "Two", "Three"} {
		song, err := svc.CreateSong(ctx, album.ID, title, "Alice")
		require.NoError(t, err)
		ids = append(ids, song.ID)
	}

	require.NoError(t, svc.ReorderSongs(ctx, album.ID, []string{ids[2], ids[0], ids[1]}))

	detail, err := svc.GetAlbum(ctx, album.ID)
	require.NoError(t, err)
	require.Len(t, detail.Songs, 3)
	assert.Equal(t, ids[2], detail.Songs[0].ID)
	assert.Equal(t, ids[0], detail.Songs[1].ID)
	assert.Equal(t, ids[1], detail.Songs[2].ID)
}

func TestUpdateSongTakesSnapshotOfPriorState(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)
	song, err := svc.CreateSong(ctx, album.ID, "", "Alice")
	require.NoError(t, err)

	updated, err := svc.UpdateSong(ctx, song.ID, []model.FieldChange{
		model.TitleChange{Value: "Take One"},
	}, "Bob")
	require.NoError(t, err)
	assert.Equal(t, "Take One", updated.Title)

	versions, err := svc.Ledger().ListForSong(ctx, song.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)

	head := versions[0]
	assert.Equal(t, "Updated title", head.Changes)
	assert.Equal(t, "Bob", head.User)
	require.True(t, head.HasSnapshot())

	snapshot, err := model.ParseSnapshot(head.Snapshot)
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, snapshot.Title, "snapshot captures the state before the edit")
}

func TestUpdateSongLyricsAttribution(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)
	song, err := svc.CreateSong(ctx, album.ID, "Take One", "Alice")
	require.NoError(t, err)

	updated, err := svc.UpdateSong(ctx, song.ID, []model.FieldChange{
		model.LyricsChange{Value: "verse one"},
	}, "Carol")
	require.NoError(t, err)
	assert.Equal(t, "verse one", updated.Lyrics)
	assert.Equal(t, "Carol", updated.LyricsUser)
	require.NotNil(t, updated.LyricsUpdatedAt)

	assert.Empty(t, updated.NotesUser, "notes attribution is untouched by a lyrics edit")
}

func TestUpdateSongLabelFromFirstChange(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)
	song, err := svc.CreateSong(ctx, album.ID, "Take One", "Alice")
	require.NoError(t, err)

	_, err = svc.UpdateSong(ctx, song.ID, []model.FieldChange{
		model.ProgressChange{Value: model.ProgressRecording},
		model.OriginChange{Value: "jam session"},
	}, "Alice")
	require.NoError(t, err)

	versions, err := svc.Ledger().ListForSong(ctx, song.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "Updated progress", versions[0].Changes)
}

func TestUpdateSongNoChanges(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)
	song, err := svc.CreateSong(ctx, album.ID, "Take One", "Alice")
	require.NoError(t, err)

	_, err = svc.UpdateSong(ctx, song.ID, nil, "Alice")
	require.NoError(t, err)

	versions, err := svc.Ledger().ListForSong(ctx, song.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1, "an empty edit leaves no history entry")
}

func TestSongLifecycleWithRestore(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)
	song, err := svc.CreateSong(ctx, album.ID, "", "Alice")
	require.NoError(t, err)

	_, err = svc.UpdateSong(ctx, song.ID, []model.FieldChange{
		model.TitleChange{Value: "Take One"},
	}, "Alice")
	require.NoError(t, err)

	_, err = svc.AddFile(ctx, song.ID, FileParams{
		Name: "demo.wav",
		Type: model.FileTypeAudio,
		URL:  "http://files.local/uploads/demo.wav",
		Size: 1024,
	}, "Alice")
	require.NoError(t, err)

	versions, err := svc.Ledger().ListForSong(ctx, song.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, model.ChangeUploadedFile(model.FileTypeAudio), versions[0].Changes)
	assert.Equal(t, "demo.wav", versions[0].Comment)
	assert.Equal(t, "Updated title", versions[1].Changes)
	assert.Equal(t, model.ChangeSongCreated, versions[2].Changes)

	restored, err := svc.Ledger().Restore(ctx, song.ID, versions[1].ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, restored.Title, "restore rewinds to the pre-edit state")

	versions, err = svc.Ledger().ListForSong(ctx, song.ID)
	require.NoError(t, err)
	require.Len(t, versions, 4, "restore appends, never truncates")
	assert.Equal(t, model.ChangeRestored, versions[0].Changes)
	assert.Equal(t, ledger.SystemUser, versions[0].User)
}

func TestDeleteSongCascadeIsolation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)
	doomed, err := svc.CreateSong(ctx, album.ID, "Doomed", "Alice")
	require.NoError(t, err)
	kept, err := svc.CreateSong(ctx, album.ID, "Kept", "Alice")
	require.NoError(t, err)

	for _, id := range []string{doomed.ID, kept.ID} {
		_, err = svc.AddFile(ctx, id, FileParams{Name: "demo.wav", Type: model.FileTypeAudio}, "Alice")
		require.NoError(t, err)
		_, err = svc.AddComment(ctx, id, "Alice", "sounds rough")
		require.NoError(t, err)
	}

	require.NoError(t, svc.DeleteSong(ctx, doomed.ID))

	_, err = svc.GetSong(ctx, doomed.ID)
	assert.ErrorIs(t, err, repository.ErrSongNotFound)

	detail, err := svc.GetSong(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Files, 1)
	assert.Len(t, detail.Comments, 1)
	assert.Len(t, detail.Versions, 2, "the sibling song keeps its history")
}

func TestDeleteAlbumCascade(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)
	song, err := svc.CreateSong(ctx, album.ID, "Take One", "Alice")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAlbum(ctx, album.ID))

	_, err = svc.GetAlbum(ctx, album.ID)
	assert.ErrorIs(t, err, repository.ErrAlbumNotFound)
	_, err = svc.GetSong(ctx, song.ID)
	assert.ErrorIs(t, err, repository.ErrSongNotFound)
}

func TestDuplicateAlbum(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)
	song, err := svc.CreateSong(ctx, album.ID, "Take One", "Alice")
	require.NoError(t, err)
	_, err = svc.UpdateSong(ctx, song.ID, []model.FieldChange{
		model.LyricsChange{Value: "verse one"},
	}, "Alice")
	require.NoError(t, err)
	_, err = svc.AddFile(ctx, song.ID, FileParams{Name: "demo.wav", Type: model.FileTypeAudio}, "Alice")
	require.NoError(t, err)

	duplicate, err := svc.DuplicateAlbum(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, "Copy of Demo", duplicate.Name)

	detail, err := svc.GetAlbum(ctx, duplicate.ID)
	require.NoError(t, err)
	require.Len(t, detail.Songs, 1)

	copied := detail.Songs[0]
	assert.Equal(t, "Take One", copied.Title)
	assert.Equal(t, "verse one", copied.Lyrics)
	assert.NotEqual(t, song.ID, copied.ID)

	assert.Empty(t, copied.Files, "attachments are not duplicated")
	require.Len(t, copied.Versions, 1, "the copy starts a fresh history")
	assert.Equal(t, model.ChangeSongCreated, copied.Versions[0].Changes)
	assert.Equal(t, "Copied from Demo", copied.Versions[0].Comment)
	assert.Equal(t, ledger.SystemUser, copied.Versions[0].User)

	// The original album is unchanged.
	original, err := svc.GetAlbum(ctx, album.ID)
	require.NoError(t, err)
	require.Len(t, original.Songs, 1)
	assert.Len(t, original.Songs[0].Files, 1)
}

func TestAlbumTouchOnSongMutation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)
	song, err := svc.CreateSong(ctx, album.ID, "Take One", "Alice")
	require.NoError(t, err)

	later := time.Now().Add(time.Hour)
	svc.now = func() time.Time { return later }

	_, err = svc.UpdateSong(ctx, song.ID, []model.FieldChange{
		model.NotesChange{Value: "needs a bridge"},
	}, "Alice")
	require.NoError(t, err)

	got, err := svc.GetAlbum(ctx, album.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, later, got.UpdatedAt, time.Second)
}

func TestDeleteFileReturnsRecord(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)
	song, err := svc.CreateSong(ctx, album.ID, "Take One", "Alice")
	require.NoError(t, err)

	file, err := svc.AddFile(ctx, song.ID, FileParams{
		Name:       "demo.wav",
		Type:       model.FileTypeAudio,
		ExternalID: "uploads/abc/demo.wav",
	}, "Alice")
	require.NoError(t, err)

	deleted, err := svc.DeleteFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/abc/demo.wav", deleted.ExternalID)

	detail, err := svc.GetSong(ctx, song.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Files)
	assert.Len(t, detail.Versions, 2, "file deletion leaves no history entry")
}

func TestAddReferenceRecordsHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)
	song, err := svc.CreateSong(ctx, album.ID, "Take One", "Alice")
	require.NoError(t, err)

	ref, err := svc.AddReference(ctx, song.ID, ReferenceParams{
		Type:   model.ReferenceSpotify,
		Title:  "Karma Police",
		Artist: "Radiohead",
		URL:    "https://open.spotify.com/track/abc",
	}, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", ref.User)

	versions, err := svc.Ledger().ListForSong(ctx, song.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, model.ChangeAddedReference, versions[0].Changes)
	assert.Equal(t, "Karma Police", versions[0].Comment)
	assert.False(t, versions[0].HasSnapshot())
}

func TestCommentsLiveOutsideHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, "Demo")
	require.NoError(t, err)
	song, err := svc.CreateSong(ctx, album.ID, "Take One", "Alice")
	require.NoError(t, err)

	comment, err := svc.AddComment(ctx, song.ID, "Bob", "love the hook")
	require.NoError(t, err)

	updated, err := svc.UpdateComment(ctx, comment.ID, "", "love the chorus")
	require.NoError(t, err)
	assert.Equal(t, "love the chorus", updated.Text)
	assert.Equal(t, "Bob", updated.User)

	require.NoError(t, svc.DeleteComment(ctx, comment.ID))

	versions, err := svc.Ledger().ListForSong(ctx, song.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1, "comment activity is not versioned")
}
