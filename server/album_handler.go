package server

import (
	"net/http"

	"Tracklab/logger"

	"github.com/gorilla/mux"
)

// ListAlbumsHandler returns all albums with their songs, most recently
// updated first.
func (h *APIHandler) ListAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	albums, err := h.service.ListAlbums(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, albums)
}

// CreateAlbumHandler creates a new album.
func (h *APIHandler) CreateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.Name == "" {
		http.Error(w, "Album name is required", http.StatusBadRequest)
		return
	}

	album, err := h.service.CreateAlbum(r.Context(), input.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, album)
}

// GetAlbumHandler returns one album with full song data.
func (h *APIHandler) GetAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	album, err := h.service.GetAlbum(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, album)
}

// UpdateAlbumHandler renames an album.
func (h *APIHandler) UpdateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.Name == "" {
		http.Error(w, "Album name is required", http.StatusBadRequest)
		return
	}

	album, err := h.service.RenameAlbum(r.Context(), id, input.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, album)
}

// DeleteAlbumHandler deletes an album and everything in it.
func (h *APIHandler) DeleteAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.service.DeleteAlbum(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DuplicateAlbumHandler copies an album and its songs' editable fields.
func (h *APIHandler) DuplicateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	album, err := h.service.DuplicateAlbum(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	logger.Info("album duplicated",
		logger.String("sourceAlbumId", id),
		logger.String("albumId", album.ID))
	respondJSON(w, http.StatusCreated, album)
}

// ReorderSongsHandler assigns song order from the posted id sequence.
func (h *APIHandler) ReorderSongsHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input struct {
		SongIDs []string `json:"songIds"`
	}
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.ReorderSongs(r.Context(), id, input.SongIDs); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
