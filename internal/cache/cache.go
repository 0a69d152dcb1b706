package cache

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
)

// ErrCache wraps every backend failure. Callers treat it as a miss.
var ErrCache = errors.New("score cache error")

// Results is the merged per-platform metrics stored under one key
type Results map[models.Platform]models.PlatformMetrics

// Cache stores scrape results with a time-to-live. Entries read past
// their expiry are deleted and reported as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (Results, bool, error)
	Put(ctx context.Context, key string, value Results, ttl time.Duration) error
}

// Sweeper is implemented by caches that need periodic space reclamation
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// envelope is the serialized form shared by the backends
type envelope struct {
	ExpiresAt int64   `json:"expires_at"` // epoch millis
	Results   Results `json:"results"`
}

func expired(expiresAt int64, now time.Time) bool {
	return now.UnixMilli() >= expiresAt
}
