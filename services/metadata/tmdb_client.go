package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"reelcache/models"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	// Posters: w500 = 500px wide (plenty for cards ~200-300px)
	// Backdrops: w1280 = 1280px wide (good for 1080p backgrounds)
	tmdbPosterSize   = "w500"
	tmdbBackdropSize = "w1280"
)

type tmdbClient struct {
	apiKey   string
	language string
	httpc    *http.Client

	// Rate limiting
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

func newTMDBClient(apiKey, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		apiKey:      strings.TrimSpace(apiKey),
		language:    language,
		httpc:       httpc,
		minInterval: 20 * time.Millisecond, // TMDB has generous rate limits
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

func (c *tmdbClient) throttle() {
	c.throttleMu.Lock()
	since := time.Since(c.lastRequest)
	if since < c.minInterval {
		time.Sleep(c.minInterval - since)
	}
	c.lastRequest = time.Now()
	c.throttleMu.Unlock()
}

func (c *tmdbClient) endpoint(parts ...string) (string, error) {
	endpoint, err := url.JoinPath(tmdbBaseURL, parts...)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	if lang := strings.TrimSpace(c.language); lang != "" {
		q.Set("language", lang)
	}
	return endpoint + "?" + q.Encode(), nil
}

// doGET performs an HTTP GET with rate limiting and retry with exponential backoff
func (c *tmdbClient) doGET(ctx context.Context, endpoint string, v any) error {
	var lastErr error
	backoff := 300 * time.Millisecond

	for attempt := 0; attempt < 3; attempt++ {
		c.throttle()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("[tmdb] http error (attempt %d/3): %v", attempt+1, err)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		// Handle rate limiting and server errors
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			log.Printf("[tmdb] rate limited or server error (attempt %d/3): status %d", attempt+1, resp.StatusCode)
			lastErr = fmt.Errorf("tmdb request failed: %s", resp.Status)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return fmt.Errorf("tmdb request failed: %s", resp.Status)
		}

		err = json.NewDecoder(resp.Body).Decode(v)
		resp.Body.Close()
		if err != nil {
			return err
		}
		return nil
	}

	return lastErr
}

// tmdbTitle is the upstream payload for a single movie or TV entry. Movies
// and series expose different name/date fields; the coalescing helpers below
// pick the right one.
type tmdbTitle struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	GenreIDs     []int64 `json:"genre_ids"`
	Genres       []struct {
		ID int64 `json:"id"`
	} `json:"genres"`
}

// genreIDs returns the payload's genre ids regardless of which shape the
// upstream used (list responses carry genre_ids, detail responses carry
// embedded genre objects).
func (t *tmdbTitle) genreIDs() []int64 {
	if len(t.GenreIDs) > 0 {
		return t.GenreIDs
	}
	ids := make([]int64, 0, len(t.Genres))
	for _, g := range t.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

type probeStatus int

const (
	probeFound probeStatus = iota
	probeMissing
	probeUnavailable
)

// probe performs a single namespace lookup. A 404 is a definitive miss for
// that namespace; any transport fault or unexpected status is reported as
// unavailable so a transient failure never lands in the negative cache.
func (c *tmdbClient) probe(ctx context.Context, namespace, id string) (*tmdbTitle, probeStatus) {
	endpoint, err := c.endpoint(namespace, id)
	if err != nil {
		return nil, probeUnavailable
	}

	c.throttle()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, probeUnavailable
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Printf("[tmdb] %s probe for %s failed: %v", namespace, id, err)
		return nil, probeUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, probeMissing
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var title tmdbTitle
		if err := json.NewDecoder(resp.Body).Decode(&title); err != nil {
			log.Printf("[tmdb] %s probe for %s returned malformed payload: %v", namespace, id, err)
			return nil, probeUnavailable
		}
		return &title, probeFound
	default:
		log.Printf("[tmdb] %s probe for %s: unexpected status %d", namespace, id, resp.StatusCode)
		return nil, probeUnavailable
	}
}

// resolveTitle disambiguates an identifier across the two upstream
// namespaces. The movie namespace is always probed first; the order is the
// disambiguation policy, since the identifier spaces overlap.
//
// Returns KindUnknown with a nil payload when both namespaces definitively
// miss. Returns ErrUpstreamUnavailable when neither probe produced a
// definitive answer.
func (c *tmdbClient) resolveTitle(ctx context.Context, id string) (*tmdbTitle, models.Kind, error) {
	if !c.isConfigured() {
		return nil, "", fmt.Errorf("%w: tmdb api key not configured", ErrUpstreamUnavailable)
	}

	movie, movieStatus := c.probe(ctx, "movie", id)
	if movieStatus == probeFound {
		return movie, models.KindMovie, nil
	}

	series, seriesStatus := c.probe(ctx, "tv", id)
	if seriesStatus == probeFound {
		return series, models.KindSeries, nil
	}

	if movieStatus == probeMissing && seriesStatus == probeMissing {
		return nil, models.KindUnknown, nil
	}
	return nil, "", ErrUpstreamUnavailable
}

type tmdbGenreListResponse struct {
	Genres []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// genreList fetches the genre id to name mapping for one namespace.
func (c *tmdbClient) genreList(ctx context.Context, namespace string) (map[int64]string, error) {
	if !c.isConfigured() {
		return nil, errors.New("tmdb api key not configured")
	}

	endpoint, err := c.endpoint("genre", namespace, "list")
	if err != nil {
		return nil, err
	}

	var payload tmdbGenreListResponse
	if err := c.doGET(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("tmdb %s genre list: %w", namespace, err)
	}

	genres := make(map[int64]string, len(payload.Genres))
	for _, g := range payload.Genres {
		genres[g.ID] = g.Name
	}
	return genres, nil
}

type tmdbListResponse struct {
	Results []struct {
		ID        int64  `json:"id"`
		MediaType string `json:"media_type"`
	} `json:"results"`
}

// trending fetches this week's trending identifiers for the given media type
// (all, movie or tv).
func (c *tmdbClient) trending(ctx context.Context, mediaType string) ([]models.CatalogEntry, error) {
	if !c.isConfigured() {
		return nil, errors.New("tmdb api key not configured")
	}

	endpoint, err := c.endpoint("trending", mediaType, "week")
	if err != nil {
		return nil, err
	}

	var payload tmdbListResponse
	if err := c.doGET(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("tmdb trending %s: %w", mediaType, err)
	}

	return listEntries(payload, mediaType), nil
}

// searchTitles runs an upstream multi-search and returns the matching
// identifiers. Used as a fallback when the local title search is sparse.
func (c *tmdbClient) searchTitles(ctx context.Context, query string) ([]models.CatalogEntry, error) {
	if !c.isConfigured() {
		return nil, errors.New("tmdb api key not configured")
	}

	endpoint, err := c.endpoint("search", "multi")
	if err != nil {
		return nil, err
	}
	endpoint += "&query=" + url.QueryEscape(query)

	var payload tmdbListResponse
	if err := c.doGET(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("tmdb search: %w", err)
	}

	return listEntries(payload, ""), nil
}

func listEntries(payload tmdbListResponse, fallbackType string) []models.CatalogEntry {
	entries := make([]models.CatalogEntry, 0, len(payload.Results))
	for _, r := range payload.Results {
		mediaType := r.MediaType
		if mediaType == "" {
			mediaType = fallbackType
		}
		var kind models.Kind
		switch mediaType {
		case "movie":
			kind = models.KindMovie
		case "tv", "series":
			kind = models.KindSeries
		case "all":
			// trending/all entries without a media_type stay untyped
		default:
			// person results and the like carry no resolvable identifier
			continue
		}
		entries = append(entries, models.CatalogEntry{
			ID:   fmt.Sprintf("%d", r.ID),
			Kind: kind,
		})
	}
	return entries
}

// coalesceTitle picks the display title: movies use "title", series "name".
func coalesceTitle(kind models.Kind, payload *tmdbTitle) string {
	if kind == models.KindMovie && payload.Title != "" {
		return payload.Title
	}
	if payload.Name != "" {
		return payload.Name
	}
	return payload.Title
}

// coalesceDate picks the release date: movies use "release_date", series
// "first_air_date".
func coalesceDate(kind models.Kind, payload *tmdbTitle) string {
	if kind == models.KindMovie && payload.ReleaseDate != "" {
		return payload.ReleaseDate
	}
	if payload.FirstAirDate != "" {
		return payload.FirstAirDate
	}
	return payload.ReleaseDate
}

// buildImageURL turns an upstream image path into a fully qualified URL, or
// empty when the upstream provides no path.
func buildImageURL(imagePath, size string) string {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return ""
	}
	fullPath := path.Join(size, strings.TrimPrefix(trimmed, "/"))
	return fmt.Sprintf("%s/%s", tmdbImageBaseURL, fullPath)
}
