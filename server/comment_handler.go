package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// AddCommentHandler posts a comment on a song.
func (h *APIHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	songID := mux.Vars(r)["id"]

	var input struct {
		User string `json:"user"`
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.Text == "" {
		http.Error(w, "Text is required", http.StatusBadRequest)
		return
	}

	comment, err := h.service.AddComment(r.Context(), songID, input.User, input.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// UpdateCommentHandler edits a comment's text and attribution.
func (h *APIHandler) UpdateCommentHandler(w http.ResponseWriter, r *http.Request) {
	commentID := mux.Vars(r)["commentId"]

	var input struct {
		User string `json:"user"`
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.Text == "" {
		http.Error(w, "Text is required", http.StatusBadRequest)
		return
	}

	comment, err := h.service.UpdateComment(r.Context(), commentID, input.User, input.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, comment)
}

// DeleteCommentHandler removes a comment.
func (h *APIHandler) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	commentID := mux.Vars(r)["commentId"]
	if err := h.service.DeleteComment(r.Context(), commentID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
