package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// ListVersionsHandler returns a song's history, newest first.
func (h *APIHandler) ListVersionsHandler(w http.ResponseWriter, r *http.Request) {
	songID := mux.Vars(r)["id"]

	if _, err := h.service.GetSong(r.Context(), songID); err != nil {
		respondError(w, err)
		return
	}
	versions, err := h.service.Ledger().ListForSong(r.Context(), songID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, versions)
}

// RestoreVersionHandler rolls a song back to the state captured by one of
// its history entries. The rollback itself lands as a new entry.
func (h *APIHandler) RestoreVersionHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	song, err := h.service.Ledger().Restore(r.Context(), vars["id"], vars["versionId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, song)
}

// UpdateVersionUserHandler reassigns who a history entry is credited to.
func (h *APIHandler) UpdateVersionUserHandler(w http.ResponseWriter, r *http.Request) {
	versionID := mux.Vars(r)["versionId"]

	var input struct {
		User string `json:"user"`
	}
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.User == "" {
		http.Error(w, "User is required", http.StatusBadRequest)
		return
	}

	version, err := h.service.Ledger().UpdateAttribution(r.Context(), versionID, input.User)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, version)
}
