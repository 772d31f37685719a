package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"Tracklab/core/catalog"
	"Tracklab/core/ledger"
	"Tracklab/core/tracker"
	"Tracklab/model"
	"Tracklab/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := repository.NewJSONStore(filepath.Join(t.TempDir(), "tracklab.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	service := tracker.NewService(store, ledger.New(store))
	handler := NewAPIHandler(service, catalog.NewSearcher(nil))

	ts := httptest.NewServer(newRouter(handler))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestAlbumSongLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	var album model.Album
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/albums", map[string]string{"name": "Demo"}, &album)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Demo", album.Name)

	var song model.SongDetail
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/albums/"+album.ID+"/songs",
		map[string]string{"user": "Alice"}, &song)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, tracker.DefaultTitle, song.Title)
	assert.Len(t, song.Versions, 1)

	var updated model.Song
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/songs/"+song.ID, map[string]any{
		"title":    "Take One",
		"progress": "Recording",
		"user":     "Bob",
	}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Take One", updated.Title)
	assert.Equal(t, model.ProgressRecording, updated.Progress)

	var versions []model.Version
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/songs/"+song.ID+"/versions", nil, &versions)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, versions, 2)
	assert.Equal(t, "Updated title", versions[0].Changes)
	assert.Equal(t, "Bob", versions[0].User)

	// Restoring the edit entry rewinds the song to its pre-edit state.
	var restored model.Song
	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/songs/%s/versions/%s/restore", ts.URL, song.ID, versions[0].ID), nil, &restored)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, tracker.DefaultTitle, restored.Title)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/songs/"+song.ID+"/versions", nil, &versions)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, versions, 3)
}

func TestRestoreCreationEntryRejected(t *testing.T) {
	ts := newTestServer(t)

	var album model.Album
	doJSON(t, http.MethodPost, ts.URL+"/api/albums", map[string]string{"name": "Demo"}, &album)
	var song model.SongDetail
	doJSON(t, http.MethodPost, ts.URL+"/api/albums/"+album.ID+"/songs",
		map[string]string{"title": "Take One"}, &song)

	require.Len(t, song.Versions, 1)
	resp := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/songs/%s/versions/%s/restore", ts.URL, song.ID, song.Versions[0].ID), nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestUnknownEntitiesReturn404(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/albums/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/songs/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/albums/missing/songs",
		map[string]string{"title": "x"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateSongRejectsUnknownProgress(t *testing.T) {
	ts := newTestServer(t)

	var album model.Album
	doJSON(t, http.MethodPost, ts.URL+"/api/albums", map[string]string{"name": "Demo"}, &album)
	var song model.SongDetail
	doJSON(t, http.MethodPost, ts.URL+"/api/albums/"+album.ID+"/songs",
		map[string]string{"title": "Take One"}, &song)

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/songs/"+song.ID,
		map[string]string{"progress": "Shipped"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReorderSongsOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	var album model.Album
	doJSON(t, http.MethodPost, ts.URL+"/api/albums", map[string]string{"name": "Demo"}, &album)

	var ids []string
	for _, title := range []string{"One", "Two"} {
		var song model.SongDetail
		doJSON(t, http.MethodPost, ts.URL+"/api/albums/"+album.ID+"/songs",
			map[string]string{"title": title}, &song)
		ids = append(ids, song.ID)
	}

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/albums/"+album.ID+"/reorder",
		map[string][]string{"songIds": {ids[1], ids[0]}}, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var detail model.AlbumDetail
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/albums/"+album.ID, nil, &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, detail.Songs, 2)
	assert.Equal(t, ids[1], detail.Songs[0].ID)
}

func TestCatalogSearchValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/catalog/search?source=spotify", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// No sources are configured on the test searcher.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/catalog/search?q=karma&source=spotify", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
