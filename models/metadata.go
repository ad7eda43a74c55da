package models

import "time"

// Kind identifies which upstream namespace an identifier resolved in.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
	// KindUnknown marks a negative cache entry: the identifier resolved in
	// neither namespace. Such records carry no genres or artwork.
	KindUnknown Kind = "unknown"
)

// MediaRecord is the cached representation of one resolved content item.
// Records are replaced wholesale on every refresh; RefreshedAt is the only
// expiry mechanism.
type MediaRecord struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title,omitempty"`
	Overview    string    `json:"overview,omitempty"`
	PosterURL   string    `json:"posterUrl,omitempty"`
	BackdropURL string    `json:"backdropUrl,omitempty"`
	Rating      *float64  `json:"rating,omitempty"`
	ReleaseDate string    `json:"releaseDate,omitempty"`
	Genres      []string  `json:"genres,omitempty"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// CatalogEntry is one identifier from the external catalog feed. Entries are
// ephemeral: the feed is re-fetched per request batch and never persisted.
type CatalogEntry struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind,omitempty"` // empty when the feed does not pre-know the type
}
