package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"reelcache/models"
)

var (
	ErrFeedNotConfigured = errors.New("catalog feed URL not configured")
	ErrCatalogEmpty      = errors.New("catalog feed returned no entries")
)

// Service fetches the external catalog feed. Entries are ephemeral: the feed
// is re-fetched per request batch and never persisted.
type Service struct {
	feedURL string
	httpc   *http.Client

	// pick chooses an index in [0,n); injectable so tests are deterministic.
	pick func(n int) int
}

func NewService(feedURL string, httpc *http.Client) *Service {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Service{
		feedURL: strings.TrimSpace(feedURL),
		httpc:   httpc,
		pick:    rand.Intn,
	}
}

// SetPicker overrides the random index chooser.
func (s *Service) SetPicker(pick func(n int) int) {
	s.pick = pick
}

// feedEntry tolerates the two shapes the feed serves: ids may be numbers or
// strings, and the type may be pre-known or absent.
type feedEntry struct {
	ID     any    `json:"id"`
	TMDBID any    `json:"tmdb_id"`
	Type   string `json:"type"`
}

// Entries fetches and normalizes the catalog feed. The feed returns either a
// JSON array of entries or an object keyed by identifier; both normalize to
// the same shape.
func (s *Service) Entries(ctx context.Context) ([]models.CatalogEntry, error) {
	if s.feedURL == "" {
		return nil, ErrFeedNotConfigured
	}

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := s.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return fmt.Errorf("catalog feed returned %s", resp.Status)
			}
			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog feed: %w", err)
	}

	return normalizeFeed(body)
}

// Random returns one randomly chosen catalog entry.
func (s *Service) Random(ctx context.Context) (models.CatalogEntry, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return models.CatalogEntry{}, err
	}
	if len(entries) == 0 {
		return models.CatalogEntry{}, ErrCatalogEmpty
	}
	return entries[s.pick(len(entries))], nil
}

func normalizeFeed(body []byte) ([]models.CatalogEntry, error) {
	var asArray []feedEntry
	if err := json.Unmarshal(body, &asArray); err == nil {
		return collectEntries(asArray), nil
	}

	var asObject map[string]feedEntry
	if err := json.Unmarshal(body, &asObject); err != nil {
		return nil, fmt.Errorf("catalog feed is neither array nor object: %w", err)
	}

	// Sort keys so object-shaped feeds paginate deterministically.
	keys := make([]string, 0, len(asObject))
	for k := range asObject {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]feedEntry, 0, len(asObject))
	for _, k := range keys {
		entry := asObject[k]
		if normalizeID(entry.ID) == "" && normalizeID(entry.TMDBID) == "" {
			// object keys double as identifiers when the value omits one
			entry.ID = k
		}
		entries = append(entries, entry)
	}
	return collectEntries(entries), nil
}

func collectEntries(raw []feedEntry) []models.CatalogEntry {
	entries := make([]models.CatalogEntry, 0, len(raw))
	for _, e := range raw {
		id := normalizeID(e.ID)
		if id == "" {
			id = normalizeID(e.TMDBID)
		}
		if id == "" {
			continue
		}
		entries = append(entries, models.CatalogEntry{
			ID:   id,
			Kind: normalizeKind(e.Type),
		})
	}
	return entries
}

func normalizeID(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}

func normalizeKind(t string) models.Kind {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "movie":
		return models.KindMovie
	case "tv", "series", "show":
		return models.KindSeries
	default:
		return ""
	}
}
