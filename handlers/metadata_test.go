package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"reelcache/models"
	"reelcache/services/metadata"
)

func TestSearchRequiresQuery(t *testing.T) {
	h := NewMetadataHandler(&fakeResolver{})

	rr := httptest.NewRecorder()
	h.Search(rr, httptest.NewRequest(http.MethodGet, "/api/search", nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Contains(t, body["error"], "q parameter")
}

func TestSearchReturnsMatches(t *testing.T) {
	resolver := &fakeResolver{searchRes: []models.MediaRecord{
		{ID: "101", Kind: models.KindMovie, Title: "Alpha"},
	}}
	h := NewMetadataHandler(resolver)

	rr := httptest.NewRecorder()
	h.Search(rr, httptest.NewRequest(http.MethodGet, "/api/search?q=lph", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "lph", resolver.lastSearchQuery)

	var resp SearchResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, "lph", resp.Query)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "Alpha", resp.Items[0].Title)
}

func TestSearchEmptyResultIsArray(t *testing.T) {
	h := NewMetadataHandler(&fakeResolver{})

	rr := httptest.NewRecorder()
	h.Search(rr, httptest.NewRequest(http.MethodGet, "/api/search?q=zzz", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"items":[]`)
}

func TestDetailsRequiresID(t *testing.T) {
	h := NewMetadataHandler(&fakeResolver{})

	rr := httptest.NewRecorder()
	h.Details(rr, httptest.NewRequest(http.MethodGet, "/api/details", nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDetailsReturnsRecord(t *testing.T) {
	resolver := &fakeResolver{records: map[string]models.MediaRecord{
		"101": {ID: "101", Kind: models.KindMovie, Title: "Alpha", Genres: []string{"Action"}},
	}}
	h := NewMetadataHandler(resolver)

	rr := httptest.NewRecorder()
	h.Details(rr, httptest.NewRequest(http.MethodGet, "/api/details?id=101", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var rec models.MediaRecord
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&rec))
	require.Equal(t, "Alpha", rec.Title)
	require.Equal(t, []string{"Action"}, rec.Genres)
}

func TestDetailsUpstreamDown(t *testing.T) {
	h := NewMetadataHandler(&fakeResolver{resolveErr: metadata.ErrUpstreamUnavailable})

	rr := httptest.NewRecorder()
	h.Details(rr, httptest.NewRequest(http.MethodGet, "/api/details?id=101", nil))

	require.Equal(t, http.StatusBadGateway, rr.Code)
}
