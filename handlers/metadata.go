package handlers

import (
	"context"
	"net/http"
	"strings"

	"reelcache/models"
	metadatapkg "reelcache/services/metadata"
)

type searchService interface {
	Resolve(ctx context.Context, id string) (models.MediaRecord, error)
	Search(ctx context.Context, query string, limit int) ([]models.MediaRecord, error)
}

var _ searchService = (*metadatapkg.Service)(nil)

// MetadataHandler serves direct record lookups and title search.
type MetadataHandler struct {
	Service searchService
}

func NewMetadataHandler(s searchService) *MetadataHandler {
	return &MetadataHandler{Service: s}
}

// SearchResponse carries matched records for a query.
type SearchResponse struct {
	Query string               `json:"query"`
	Items []models.MediaRecord `json:"items"`
}

func (h *MetadataHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSONError(w, "q parameter is required", http.StatusBadRequest)
		return
	}

	items, err := h.Service.Search(r.Context(), query, defaultListLimit)
	if err != nil {
		writeJSONError(w, err.Error(), statusForError(err))
		return
	}
	if items == nil {
		items = []models.MediaRecord{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: query, Items: items})
}

func (h *MetadataHandler) Details(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeJSONError(w, "id parameter is required", http.StatusBadRequest)
		return
	}

	record, err := h.Service.Resolve(r.Context(), id)
	if err != nil {
		writeJSONError(w, err.Error(), statusForError(err))
		return
	}
	writeJSON(w, http.StatusOK, record)
}
