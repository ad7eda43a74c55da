package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func embedURL(t *testing.T, h *EmbedHandler, target string) (int, string) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.Embed(rr, httptest.NewRequest(http.MethodGet, target, nil))
	if rr.Code != http.StatusOK {
		return rr.Code, ""
	}
	var resp EmbedResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return rr.Code, resp.URL
}

func TestEmbedRequiresID(t *testing.T) {
	h := NewEmbedHandler("https://vidsrc.xyz/embed")

	code, _ := embedURL(t, h, "/api/embed")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestEmbedMovieShape(t *testing.T) {
	h := NewEmbedHandler("https://vidsrc.xyz/embed")

	code, url := embedURL(t, h, "/api/embed?id=101")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "https://vidsrc.xyz/embed/movie/101", url)
}

func TestEmbedSeriesShape(t *testing.T) {
	h := NewEmbedHandler("https://vidsrc.xyz/embed")

	code, url := embedURL(t, h, "/api/embed?id=202&season=2&episode=5")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "https://vidsrc.xyz/embed/tv/202/2/5", url)
}

func TestEmbedSeasonWithoutEpisodeFallsBackToMovie(t *testing.T) {
	h := NewEmbedHandler("https://vidsrc.xyz/embed")

	code, url := embedURL(t, h, "/api/embed?id=202&season=2")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "https://vidsrc.xyz/embed/movie/202", url)
}

func TestEmbedTrimsTrailingSlash(t *testing.T) {
	h := NewEmbedHandler("https://player.example/embed/")

	_, url := embedURL(t, h, "/api/embed?id=7")
	require.Equal(t, "https://player.example/embed/movie/7", url)
}
