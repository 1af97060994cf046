package cache

import (
	"context"
	"fmt"
	"time"
)

// Key families. Values under ShortURLKey are long URLs; values under
// AnalyticsKey are JSON-encoded domain.Analytics.
const (
	shortURLKeyPrefix  = "shortUrl"
	analyticsKeyPrefix = "analytics"
)

// Cache defines the key/value store placed in front of the durable stores.
// It is never the source of truth; every entry can be rebuilt from the database.
type Cache interface {
	// Get retrieves a value by key. found is false on a miss.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores a key-value pair that expires after ttl
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Ping checks connectivity
	Ping(ctx context.Context) error

	// Close closes the cache connection
	Close() error
}

// ShortURLKey is the cache key holding the long URL for a short identifier
func ShortURLKey(shortURLID string) string {
	return fmt.Sprintf("%s:%s", shortURLKeyPrefix, shortURLID)
}

// AnalyticsKey is the cache key holding an analytics result.
// timeFrame must already be canonical.
func AnalyticsKey(shortURLID, timeFrame string) string {
	return fmt.Sprintf("%s:%s:%s", analyticsKeyPrefix, shortURLID, timeFrame)
}
