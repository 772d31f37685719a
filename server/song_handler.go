package server

import (
	"errors"
	"io"
	"net/http"

	"Tracklab/model"

	"github.com/gorilla/mux"
)

// CreateSongHandler adds a song to an album.
func (h *APIHandler) CreateSongHandler(w http.ResponseWriter, r *http.Request) {
	albumID := mux.Vars(r)["id"]

	var input struct {
		Title string `json:"title"`
		User  string `json:"user"`
	}
	if err := decodeJSON(r, &input); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	song, err := h.service.CreateSong(r.Context(), albumID, input.Title, input.User)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, song)
}

// GetSongHandler returns one song with all of its data.
func (h *APIHandler) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	song, err := h.service.GetSong(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, song)
}

// UpdateSongHandler applies field edits to a song. Fields absent from the
// body are left alone; each present field becomes one typed change.
func (h *APIHandler) UpdateSongHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input struct {
		Title    *string `json:"title"`
		Lyrics   *string `json:"lyrics"`
		Notes    *string `json:"notes"`
		Progress *string `json:"progress"`
		Origin   *string `json:"origin"`
		User     string  `json:"user"`
	}
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var changes []model.FieldChange
	if input.Title != nil {
		changes = append(changes, model.TitleChange{Value: *input.Title})
	}
	if input.Lyrics != nil {
		changes = append(changes, model.LyricsChange{Value: *input.Lyrics})
	}
	if input.Notes != nil {
		changes = append(changes, model.NotesChange{Value: *input.Notes})
	}
	if input.Progress != nil {
		progress := model.Progress(*input.Progress)
		if !progress.Valid() {
			http.Error(w, "Unknown progress stage", http.StatusBadRequest)
			return
		}
		changes = append(changes, model.ProgressChange{Value: progress})
	}
	if input.Origin != nil {
		changes = append(changes, model.OriginChange{Value: *input.Origin})
	}

	song, err := h.service.UpdateSong(r.Context(), id, changes, input.User)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, song)
}

// DeleteSongHandler deletes a song and all of its owned data.
func (h *APIHandler) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.service.DeleteSong(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
