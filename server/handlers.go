package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"Tracklab/core/catalog"
	"Tracklab/core/ledger"
	"Tracklab/core/tracker"
	"Tracklab/logger"
	"Tracklab/repository"
)

// APIHandler handles all API requests.
type APIHandler struct {
	service  *tracker.Service
	searcher *catalog.Searcher
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(service *tracker.Service, searcher *catalog.Searcher) *APIHandler {
	return &APIHandler{
		service:  service,
		searcher: searcher,
	}
}

// respondJSON writes payload as a JSON response.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", logger.ErrorField(err))
		}
	}
}

// respondError maps service errors onto HTTP statuses: missing entities
// become 404, a restore against a snapshot-less version becomes 422, and
// anything else is a storage failure the caller may retry.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrAlbumNotFound),
		errors.Is(err, repository.ErrSongNotFound),
		errors.Is(err, repository.ErrVersionNotFound),
		errors.Is(err, repository.ErrFileNotFound),
		errors.Is(err, repository.ErrReferenceNotFound),
		errors.Is(err, repository.ErrCommentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ledger.ErrNoSnapshot):
		http.Error(w, "this history entry cannot be restored", http.StatusUnprocessableEntity)
	case errors.Is(err, catalog.ErrUnknownSource):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error("Request failed", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// decodeJSON parses the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
