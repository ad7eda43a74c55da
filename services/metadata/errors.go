package metadata

import "errors"

var (
	// ErrUpstreamUnavailable means no namespace probe produced a definitive
	// answer. Such failures are never cached negatively.
	ErrUpstreamUnavailable = errors.New("upstream metadata provider unavailable")

	ErrIDRequired = errors.New("id is required")

	// ErrInvalidMediaType rejects trending types outside all/movie/tv.
	ErrInvalidMediaType = errors.New("invalid media type")
)
