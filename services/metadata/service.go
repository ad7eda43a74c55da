package metadata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"

	"reelcache/models"
)

// resolveWorkers bounds the fan-out when a view resolves a batch of
// identifiers.
const resolveWorkers = 8

// searchFallbackThreshold is the minimum number of local hits below which a
// search consults the upstream provider.
const searchFallbackThreshold = 5

// RecordStore is the persistence boundary for resolved records and the genre
// directory.
type RecordStore interface {
	GetRecord(id string) (*models.MediaRecord, error)
	UpsertRecord(models.MediaRecord) error
	SearchByTitle(substring string, limit int) ([]models.MediaRecord, error)
	GenreDirectory() (map[int64]string, time.Time, error)
	ReplaceGenreDirectory(genres map[int64]string, refreshedAt time.Time) error
}

// Service resolves identifiers to cached metadata records. It owns the
// freshness decisions, the negative cache, and the per-identifier
// single-flight guarantee.
type Service struct {
	store     RecordStore
	client    *tmdbClient
	genres    *genreDirectory
	recordTTL time.Duration

	flight singleflight.Group
	now    func() time.Time
}

// NewService wires the coordinator. TTLs are in hours; the genre TTL is
// expected to be coarser than the record TTL.
func NewService(store RecordStore, tmdbAPIKey, language string, recordTTLHours, genreTTLHours int, httpc *http.Client) *Service {
	if recordTTLHours <= 0 {
		recordTTLHours = 1
	}
	if genreTTLHours <= 0 {
		genreTTLHours = 24
	}
	client := newTMDBClient(tmdbAPIKey, language, httpc)
	return &Service{
		store:     store,
		client:    client,
		genres:    newGenreDirectory(store, client, time.Duration(genreTTLHours)*time.Hour),
		recordTTL: time.Duration(recordTTLHours) * time.Hour,
		now:       time.Now,
	}
}

// Resolve returns the record for id, serving the cache when fresh and
// refreshing from upstream otherwise. Concurrent calls for the same id
// collapse into a single upstream resolution; all callers observe the same
// record or the same failure.
//
// Unknown records are cached like positive ones, so a persistently invalid
// identifier is retried at most once per TTL window.
func (s *Service) Resolve(ctx context.Context, id string) (models.MediaRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.MediaRecord{}, ErrIDRequired
	}

	cached, err := s.store.GetRecord(id)
	if err != nil {
		return models.MediaRecord{}, err
	}
	if cached != nil && isFresh(cached.RefreshedAt, s.recordTTL) {
		return *cached, nil
	}

	v, err, _ := s.flight.Do(id, func() (any, error) {
		return s.refresh(ctx, id, cached)
	})
	if err != nil {
		return models.MediaRecord{}, err
	}
	return v.(models.MediaRecord), nil
}

// refresh performs one upstream resolution and persists the outcome.
func (s *Service) refresh(ctx context.Context, id string, previous *models.MediaRecord) (models.MediaRecord, error) {
	payload, kind, err := s.client.resolveTitle(ctx, id)
	if err != nil {
		if previous != nil && errors.Is(err, ErrUpstreamUnavailable) {
			// Best-effort degraded result; the stale record stays in place
			// and the next call past the TTL retries upstream.
			log.Printf("[metadata] upstream unavailable for %s, serving stale record", id)
			return *previous, nil
		}
		return models.MediaRecord{}, err
	}

	record := models.MediaRecord{
		ID:          id,
		Kind:        kind,
		RefreshedAt: s.now().UTC(),
	}
	if kind != models.KindUnknown {
		record.Title = coalesceTitle(kind, payload)
		record.Overview = payload.Overview
		record.PosterURL = buildImageURL(payload.PosterPath, tmdbPosterSize)
		record.BackdropURL = buildImageURL(payload.BackdropPath, tmdbBackdropSize)
		if payload.VoteAverage > 0 {
			rating := payload.VoteAverage
			record.Rating = &rating
		}
		record.ReleaseDate = coalesceDate(kind, payload)

		names, err := s.genres.names(ctx, payload.genreIDs())
		if err != nil {
			return models.MediaRecord{}, err
		}
		record.Genres = names
	}

	if err := s.store.UpsertRecord(record); err != nil {
		return models.MediaRecord{}, err
	}
	return record, nil
}

// ResolveMany resolves a batch of identifiers with bounded concurrency,
// preserving input order. Identifiers that fail to resolve are dropped; list
// views degrade rather than fail wholesale.
func (s *Service) ResolveMany(ctx context.Context, ids []string) []models.MediaRecord {
	results := make([]*models.MediaRecord, len(ids))

	p := pool.New().WithMaxGoroutines(resolveWorkers)
	for i, id := range ids {
		p.Go(func() {
			rec, err := s.Resolve(ctx, id)
			if err != nil {
				log.Printf("[metadata] resolve %s failed: %v", id, err)
				return
			}
			results[i] = &rec
		})
	}
	p.Wait()

	records := make([]models.MediaRecord, 0, len(ids))
	for _, rec := range results {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}

// Search matches cached titles by case-insensitive substring. When fewer
// than searchFallbackThreshold local records match, the upstream search fills
// in additional identifiers, which are resolved through the cache so they
// stick for the next query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.MediaRecord, error) {
	query = strings.TrimSpace(query)
	if limit <= 0 {
		limit = 20
	}

	results, err := s.store.SearchByTitle(query, limit)
	if err != nil {
		return nil, err
	}
	if len(results) >= searchFallbackThreshold || !s.client.isConfigured() {
		return results, nil
	}

	entries, err := s.client.searchTitles(ctx, query)
	if err != nil {
		// Fallback is best effort; local hits still stand.
		log.Printf("[metadata] upstream search fallback failed: %v", err)
		return results, nil
	}

	seen := make(map[string]bool, len(results))
	for _, rec := range results {
		seen[rec.ID] = true
	}
	var ids []string
	for _, entry := range entries {
		if seen[entry.ID] {
			continue
		}
		seen[entry.ID] = true
		ids = append(ids, entry.ID)
		if len(results)+len(ids) >= limit {
			break
		}
	}

	for _, rec := range s.ResolveMany(ctx, ids) {
		if rec.Kind == models.KindUnknown {
			continue
		}
		results = append(results, rec)
	}
	sortByRelevance(results, query)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Trending fetches the upstream trending list for the given type (all, movie
// or tv) and resolves every entry to a cached record.
func (s *Service) Trending(ctx context.Context, mediaType string) ([]models.MediaRecord, error) {
	switch mediaType {
	case "", "all":
		mediaType = "all"
	case "movie", "tv":
	case "series":
		mediaType = "tv"
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMediaType, mediaType)
	}

	entries, err := s.client.trending(ctx, mediaType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
	}
	return s.ResolveMany(ctx, ids), nil
}
