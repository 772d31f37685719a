package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"Tracklab/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, path string) *JSONStore {
	t.Helper()
	store, err := NewJSONStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testAlbum(name string, updatedAt time.Time) *model.Album {
	return &model.Album{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func testSong(albumID, title string, order int) *model.Song {
	now := time.Now()
	return &model.Song{
		ID:        uuid.NewString(),
		AlbumID:   albumID,
		Title:     title,
		Progress:  model.ProgressNotStarted,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestJSONStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracklab.json")
	ctx := context.Background()

	store := openTestStore(t, path)
	album := testAlbum("Demo", time.Now())
	require.NoError(t, store.Albums().Create(ctx, album))
	song := testSong(album.ID, "Take One", 0)
	require.NoError(t, store.Songs().Create(ctx, song))
	require.NoError(t, store.Close())

	reopened := openTestStore(t, path)
	got, err := reopened.Songs().GetByID(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, "Take One", got.Title)
	assert.Equal(t, album.ID, got.AlbumID)
}

func TestJSONStoreTransactionRollback(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "tracklab.json"))
	ctx := context.Background()

	album := testAlbum("Demo", time.Now())
	require.NoError(t, store.Albums().Create(ctx, album))

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(st Store) error {
		if err := st.Songs().Create(ctx, testSong(album.ID, "Take One", 0)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	songs, err := store.Songs().GetByAlbum(ctx, album.ID)
	require.NoError(t, err)
	assert.Empty(t, songs, "a failed transaction leaves nothing behind")
}

func TestJSONStoreTransactionAtomicVisibility(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "tracklab.json"))
	ctx := context.Background()

	album := testAlbum("Demo", time.Now())
	require.NoError(t, store.Albums().Create(ctx, album))

	song := testSong(album.ID, "Take One", 0)
	err := store.Transaction(ctx, func(st Store) error {
		if err := st.Songs().Create(ctx, song); err != nil {
			return err
		}
		// The write is visible inside the transaction.
		got, err := st.Songs().GetByID(ctx, song.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, "Take One", got.Title)
		return nil
	})
	require.NoError(t, err)

	got, err := store.Songs().GetByID(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, "Take One", got.Title)
}

func TestAlbumListNewestUpdatedFirst(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "tracklab.json"))
	ctx := context.Background()

	base := time.Now()
	old := testAlbum("Old", base.Add(-time.Hour))
	fresh := testAlbum("Fresh", base)
	require.NoError(t, store.Albums().Create(ctx, old))
	require.NoError(t, store.Albums().Create(ctx, fresh))

	albums, err := store.Albums().List(ctx)
	require.NoError(t, err)
	require.Len(t, albums, 2)
	assert.Equal(t, "Fresh", albums[0].Name)

	// Touching the older album moves it to the front.
	require.NoError(t, store.Albums().Touch(ctx, old.ID, base.Add(time.Hour)))
	albums, err = store.Albums().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Old", albums[0].Name)
}

func TestSongsOrderedBySequence(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "tracklab.json"))
	ctx := context.Background()

	album := testAlbum("Demo", time.Now())
	require.NoError(t, store.Albums().Create(ctx, album))
	require.NoError(t, store.Songs().Create(ctx, testSong(album.ID, "Second", 1)))
	require.NoError(t, store.Songs().Create(ctx, testSong(album.ID, "First", 0)))

	songs, err := store.Songs().GetByAlbum(ctx, album.ID)
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "First", songs[0].Title)
	assert.Equal(t, "Second", songs[1].Title)
}

func TestMaxOrderEmptyAlbum(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "tracklab.json"))
	ctx := context.Background()

	album := testAlbum("Demo", time.Now())
	require.NoError(t, store.Albums().Create(ctx, album))

	max, err := store.Songs().MaxOrder(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, max)

	require.NoError(t, store.Songs().Create(ctx, testSong(album.ID, "Take One", 4)))
	max, err = store.Songs().MaxOrder(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, max)
}

func TestVersionSeqBreaksTimestampTies(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "tracklab.json"))
	ctx := context.Background()

	album := testAlbum("Demo", time.Now())
	require.NoError(t, store.Albums().Create(ctx, album))
	song := testSong(album.ID, "Take One", 0)
	require.NoError(t, store.Songs().Create(ctx, song))

	// Both entries land in the same instant; insertion order decides.
	at := time.Now()
	first := &model.Version{ID: uuid.NewString(), SongID: song.ID, Changes: "Song created", CreatedAt: at}
	second := &model.Version{ID: uuid.NewString(), SongID: song.ID, Changes: "Updated title", CreatedAt: at}
	require.NoError(t, store.Versions().Append(ctx, first))
	require.NoError(t, store.Versions().Append(ctx, second))

	versions, err := store.Versions().ListBySong(ctx, song.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, second.ID, versions[0].ID)
	assert.Equal(t, first.ID, versions[1].ID)
	assert.Greater(t, versions[0].Seq, versions[1].Seq)
}

func TestNotFoundSentinels(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "tracklab.json"))
	ctx := context.Background()

	_, err := store.Albums().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrAlbumNotFound)
	_, err = store.Songs().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrSongNotFound)
	_, err = store.Files().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrFileNotFound)
	_, err = store.References().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrReferenceNotFound)
	_, err = store.Comments().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = store.Versions().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrVersionNotFound)

	assert.ErrorIs(t, store.Songs().Delete(ctx, "missing"), ErrSongNotFound)
	assert.ErrorIs(t, store.Songs().Update(ctx, testSong("a", "ghost", 0)), ErrSongNotFound)
}

func TestCommentsNewestFirst(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "tracklab.json"))
	ctx := context.Background()

	album := testAlbum("Demo", time.Now())
	require.NoError(t, store.Albums().Create(ctx, album))
	song := testSong(album.ID, "Take One", 0)
	require.NoError(t, store.Songs().Create(ctx, song))

	base := time.Now()
	older := &model.Comment{ID: uuid.NewString(), SongID: song.ID, User: "Alice", Text: "first", CreatedAt: base.Add(-time.Minute)}
	newer := &model.Comment{ID: uuid.NewString(), SongID: song.ID, User: "Bob", Text: "second", CreatedAt: base}
	require.NoError(t, store.Comments().Create(ctx, older))
	require.NoError(t, store.Comments().Create(ctx, newer))

	comments, err := store.Comments().ListBySong(ctx, song.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)
}

func TestDeleteBySongLeavesSiblingsAlone(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "tracklab.json"))
	ctx := context.Background()

	album := testAlbum("Demo", time.Now())
	require.NoError(t, store.Albums().Create(ctx, album))
	a := testSong(album.ID, "A", 0)
	b := testSong(album.ID, "B", 1)
	require.NoError(t, store.Songs().Create(ctx, a))
	require.NoError(t, store.Songs().Create(ctx, b))

	for _, s := range []*model.Song{a, b} {
		require.NoError(t, store.Versions().Append(ctx, &model.Version{
			ID: uuid.NewString(), SongID: s.ID, Changes: "Song created", CreatedAt: time.Now(),
		}))
	}

	require.NoError(t, store.Versions().DeleteBySong(ctx, a.ID))

	gone, err := store.Versions().ListBySong(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, gone)
	kept, err := store.Versions().ListBySong(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestExternalRewriteReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracklab.json")
	ctx := context.Background()

	store := openTestStore(t, path)
	album := testAlbum("Demo", time.Now())
	require.NoError(t, store.Albums().Create(ctx, album))

	// Simulate a sync client rewriting the file out from under us.
	other, err := NewJSONStore(path)
	require.NoError(t, err)
	require.NoError(t, other.Albums().Touch(ctx, album.ID, time.Now().Add(time.Hour)))
	require.NoError(t, other.Close())

	require.Eventually(t, func() bool {
		got, err := store.Albums().GetByID(ctx, album.ID)
		return err == nil && got.UpdatedAt.After(album.UpdatedAt)
	}, 2*time.Second, 20*time.Millisecond, "watcher should pick up the external rewrite")
}
