package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"reelcache/models"
	catalogpkg "reelcache/services/catalog"
	metadatapkg "reelcache/services/metadata"
)

const (
	homePageSize     = 20
	defaultListLimit = 20
	maxListLimit     = 100
)

type metadataResolver interface {
	Resolve(ctx context.Context, id string) (models.MediaRecord, error)
	ResolveMany(ctx context.Context, ids []string) []models.MediaRecord
	Trending(ctx context.Context, mediaType string) ([]models.MediaRecord, error)
}

var _ metadataResolver = (*metadatapkg.Service)(nil)

type catalogSource interface {
	Entries(ctx context.Context) ([]models.CatalogEntry, error)
	Random(ctx context.Context) (models.CatalogEntry, error)
}

var _ catalogSource = (*catalogpkg.Service)(nil)

// CatalogHandler serves the feed-backed browse endpoints.
type CatalogHandler struct {
	Metadata metadataResolver
	Catalog  catalogSource
}

func NewCatalogHandler(metadata metadataResolver, catalog catalogSource) *CatalogHandler {
	return &CatalogHandler{Metadata: metadata, Catalog: catalog}
}

// PagedResponse wraps resolved records with pagination bookkeeping.
type PagedResponse struct {
	Items []models.MediaRecord `json:"items"`
	Total int                  `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit,omitempty"`
}

func parsePage(r *http.Request) int {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	return page
}

// pageSlice returns the window of entries for a 1-based page. Pages past
// the end come back empty rather than erroring.
func pageSlice(entries []models.CatalogEntry, page, size int) []models.CatalogEntry {
	start := (page - 1) * size
	if start >= len(entries) {
		return nil
	}
	end := start + size
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end]
}

func entryIDs(entries []models.CatalogEntry) []string {
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
	}
	return ids
}

func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)

	entries, err := h.Catalog.Entries(r.Context())
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadGateway)
		return
	}

	window := pageSlice(entries, page, homePageSize)
	items := h.Metadata.ResolveMany(r.Context(), entryIDs(window))
	writeJSON(w, http.StatusOK, PagedResponse{
		Items: items,
		Total: len(entries),
		Page:  page,
	})
}

func (h *CatalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	mediaType := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type")))
	page := parsePage(r)

	records, err := h.Metadata.Trending(r.Context(), mediaType)
	if err != nil {
		writeJSONError(w, err.Error(), statusForError(err))
		return
	}

	total := len(records)
	start := (page - 1) * homePageSize
	if start >= total {
		records = nil
	} else if end := start + homePageSize; end > total {
		records = records[start:]
	} else {
		records = records[start:end]
	}
	writeJSON(w, http.StatusOK, PagedResponse{
		Items: records,
		Total: total,
		Page:  page,
	})
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	entries, err := h.Catalog.Entries(r.Context())
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadGateway)
		return
	}

	window := pageSlice(entries, page, limit)
	items := h.Metadata.ResolveMany(r.Context(), entryIDs(window))
	writeJSON(w, http.StatusOK, PagedResponse{
		Items: items,
		Total: len(entries),
		Page:  page,
		Limit: limit,
	})
}

func (h *CatalogHandler) Random(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Catalog.Random(r.Context())
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadGateway)
		return
	}

	record, err := h.Metadata.Resolve(r.Context(), entry.ID)
	if err != nil {
		writeJSONError(w, err.Error(), statusForError(err))
		return
	}
	writeJSON(w, http.StatusOK, record)
}
