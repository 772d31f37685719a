package server

import (
	"net/http"

	"Tracklab/model"
)

// SearchCatalogHandler proxies a track search to the requested external
// catalog.
func (h *APIHandler) SearchCatalogHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Query parameter q is required", http.StatusBadRequest)
		return
	}
	source := model.ReferenceSource(r.URL.Query().Get("source"))

	results, err := h.searcher.Search(r.Context(), source, query)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}
