package metadata

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// genreDirectory maintains the shared genre-id to name mapping. The mapping
// is persisted through the record store, cached in memory, and replaced
// wholesale on each refresh so callers never see a partial merge.
type genreDirectory struct {
	store  RecordStore
	client *tmdbClient
	ttl    time.Duration

	mu        sync.Mutex
	genres    map[int64]string
	refreshed time.Time
	loaded    bool
}

func newGenreDirectory(store RecordStore, client *tmdbClient, ttl time.Duration) *genreDirectory {
	return &genreDirectory{store: store, client: client, ttl: ttl}
}

// names translates genre ids to display names, silently dropping ids with no
// known mapping. It refreshes the directory first when absent or stale.
func (d *genreDirectory) names(ctx context.Context, ids []int64) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	genres, err := d.current(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := genres[id]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// current returns a fresh directory, refreshing it when needed. The mutex
// serializes refreshes, so concurrent callers wait for one upstream fetch
// rather than racing their own.
func (d *genreDirectory) current(ctx context.Context) (map[int64]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.loaded {
		genres, refreshed, err := d.store.GenreDirectory()
		if err != nil {
			return nil, err
		}
		d.genres = genres
		d.refreshed = refreshed
		d.loaded = true
	}

	if len(d.genres) > 0 && isFresh(d.refreshed, d.ttl) {
		return d.genres, nil
	}

	if err := d.refresh(ctx); err != nil {
		if len(d.genres) > 0 {
			// Stale directory beats no directory.
			log.Printf("[metadata] genre refresh failed, keeping stale directory: %v", err)
			return d.genres, nil
		}
		return nil, err
	}
	return d.genres, nil
}

// refresh fetches both namespace genre lists concurrently and merges them,
// movie entries winning on id collision. The merged mapping replaces the
// stored directory in one step.
func (d *genreDirectory) refresh(ctx context.Context) error {
	var movieGenres, seriesGenres map[int64]string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movieGenres, err = d.client.genreList(gctx, "movie")
		return err
	})
	g.Go(func() error {
		var err error
		seriesGenres, err = d.client.genreList(gctx, "tv")
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	merged := make(map[int64]string, len(movieGenres)+len(seriesGenres))
	for id, name := range movieGenres {
		merged[id] = name
	}
	for id, name := range seriesGenres {
		if _, ok := merged[id]; !ok {
			merged[id] = name
		}
	}

	now := time.Now().UTC()
	if err := d.store.ReplaceGenreDirectory(merged, now); err != nil {
		return err
	}

	d.genres = merged
	d.refreshed = now
	return nil
}
