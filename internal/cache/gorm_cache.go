package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCache keeps cached results in the cached_results table
type GormCache struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormCache creates a database-backed cache
func NewGormCache(db *gorm.DB) *GormCache {
	return &GormCache{db: db, now: time.Now}
}

// Get returns the cached results for key, deleting the entry if it expired
func (c *GormCache) Get(ctx context.Context, key string) (Results, bool, error) {
	var row models.CachedResult
	err := c.db.WithContext(ctx).Where("cache_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to read %s: %v", ErrCache, key, err)
	}

	if expired(row.ExpiresAt, c.now()) {
		if err := c.db.WithContext(ctx).Where("cache_key = ?", key).Delete(&models.CachedResult{}).Error; err != nil {
			logger.Warn("Failed to delete expired cache entry", zap.String("key", key), zap.Error(err))
		}
		return nil, false, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(row.Payload), &env); err != nil {
		return nil, false, fmt.Errorf("%w: corrupt entry %s: %v", ErrCache, key, err)
	}
	return env.Results, true, nil
}

// Put stores value under key until now+ttl. A non-positive ttl stores nothing.
func (c *GormCache) Put(ctx context.Context, key string, value Results, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	expiresAt := c.now().Add(ttl).UnixMilli()
	payload, err := json.Marshal(envelope{ExpiresAt: expiresAt, Results: value})
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", ErrCache, key, err)
	}

	row := models.CachedResult{
		Key:       key,
		Payload:   string(payload),
		ExpiresAt: expiresAt,
		CreatedAt: c.now(),
	}
	err = c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "created_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", ErrCache, key, err)
	}
	return nil
}

// Sweep deletes every expired entry
func (c *GormCache) Sweep(ctx context.Context) (int64, error) {
	result := c.db.WithContext(ctx).
		Where("expires_at <= ?", c.now().UnixMilli()).
		Delete(&models.CachedResult{})
	if result.Error != nil {
		return 0, fmt.Errorf("%w: sweep failed: %v", ErrCache, result.Error)
	}
	return result.RowsAffected, nil
}
