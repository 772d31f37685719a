package server

import (
	"net/http"

	"Tracklab/core/tracker"
	"Tracklab/logger"
	"Tracklab/model"
	"Tracklab/storage"

	"github.com/gorilla/mux"
)

// maxUploadSize caps multipart uploads at 256 MB.
const maxUploadSize = 256 << 20

// UploadFileHandler stores an uploaded audio or project file and attaches
// it to the song.
func (h *APIHandler) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	songID := mux.Vars(r)["id"]

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	fileType := model.FileType(r.FormValue("type"))
	if !fileType.Valid() {
		http.Error(w, "Unknown file type", http.StatusBadRequest)
		return
	}
	editor := r.FormValue("user")

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := storage.Upload(r.Context(), header.Filename, file, header.Size, contentType)
	if err != nil {
		logger.Error("Upload failed", logger.String("song_id", songID), logger.ErrorField(err))
		http.Error(w, "Upload failed", http.StatusInternalServerError)
		return
	}

	record, err := h.service.AddFile(r.Context(), songID, tracker.FileParams{
		Name:       result.Name,
		Type:       fileType,
		URL:        result.URL,
		MimeType:   result.MimeType,
		Size:       result.Size,
		ExternalID: result.ExternalID,
	}, editor)
	if err != nil {
		if removeErr := storage.Remove(r.Context(), result.ExternalID); removeErr != nil {
			logger.Warn("Failed to remove orphaned upload",
				logger.String("external_id", result.ExternalID),
				logger.ErrorField(removeErr))
		}
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, record)
}

// DeleteFileHandler detaches a file from its song and removes the stored
// object.
func (h *APIHandler) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]
	file, err := h.service.DeleteFile(r.Context(), fileID)
	if err != nil {
		respondError(w, err)
		return
	}
	if file.ExternalID != "" {
		if err := storage.Remove(r.Context(), file.ExternalID); err != nil {
			logger.Warn("Failed to remove stored object",
				logger.String("external_id", file.ExternalID),
				logger.ErrorField(err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
