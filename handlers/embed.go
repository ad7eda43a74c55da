package handlers

import (
	"fmt"
	"net/http"
	"strings"
)

// EmbedHandler builds player embed URLs for an external streaming frontend.
type EmbedHandler struct {
	BaseURL string
}

func NewEmbedHandler(baseURL string) *EmbedHandler {
	return &EmbedHandler{BaseURL: strings.TrimRight(baseURL, "/")}
}

// EmbedResponse carries the constructed player URL.
type EmbedResponse struct {
	URL string `json:"url"`
}

// Embed returns the movie-shaped URL unless both season and episode are
// supplied, which selects the series-episode shape.
func (h *EmbedHandler) Embed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := strings.TrimSpace(q.Get("id"))
	if id == "" {
		writeJSONError(w, "id parameter is required", http.StatusBadRequest)
		return
	}

	season := strings.TrimSpace(q.Get("season"))
	episode := strings.TrimSpace(q.Get("episode"))

	var url string
	if season != "" && episode != "" {
		url = fmt.Sprintf("%s/tv/%s/%s/%s", h.BaseURL, id, season, episode)
	} else {
		url = fmt.Sprintf("%s/movie/%s", h.BaseURL, id)
	}
	writeJSON(w, http.StatusOK, EmbedResponse{URL: url})
}
