package metadata

import "time"

// isFresh reports whether a value refreshed at the given time is still
// inside its TTL window. A zero refreshedAt is always stale.
func isFresh(refreshedAt time.Time, ttl time.Duration) bool {
	if refreshedAt.IsZero() {
		return false
	}
	return time.Since(refreshedAt) < ttl
}
