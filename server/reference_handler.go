package server

import (
	"net/http"

	"Tracklab/core/tracker"
	"Tracklab/model"

	"github.com/gorilla/mux"
)

// AddReferenceHandler attaches an external track link to a song.
func (h *APIHandler) AddReferenceHandler(w http.ResponseWriter, r *http.Request) {
	songID := mux.Vars(r)["id"]

	var input struct {
		Type      string `json:"type"`
		Title     string `json:"title"`
		Artist    string `json:"artist"`
		URL       string `json:"url"`
		Thumbnail string `json:"thumbnail"`
		User      string `json:"user"`
	}
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	source := model.ReferenceSource(input.Type)
	if !source.Valid() {
		http.Error(w, "Unknown reference source", http.StatusBadRequest)
		return
	}
	if input.Title == "" || input.URL == "" {
		http.Error(w, "Title and url are required", http.StatusBadRequest)
		return
	}

	reference, err := h.service.AddReference(r.Context(), songID, tracker.ReferenceParams{
		Type:      source,
		Title:     input.Title,
		Artist:    input.Artist,
		URL:       input.URL,
		Thumbnail: input.Thumbnail,
	}, input.User)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, reference)
}

// DeleteReferenceHandler removes a reference link from its song.
func (h *APIHandler) DeleteReferenceHandler(w http.ResponseWriter, r *http.Request) {
	referenceID := mux.Vars(r)["referenceId"]
	if err := h.service.DeleteReference(r.Context(), referenceID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
