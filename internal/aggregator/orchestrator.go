package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/codetrack/scraper-service/internal/cache"
	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/internal/progress"
	"github.com/yourusername/codetrack/scraper-service/internal/providers"
	"github.com/yourusername/codetrack/scraper-service/pkg/logger"
	"go.uber.org/zap"
)

// ErrPersistence marks a student whose merged record could not be stored
var ErrPersistence = errors.New("persistence error")

// PerformanceStore persists a student's merged metrics
type PerformanceStore interface {
	SaveAll(ctx context.Context, studentID string, results map[models.Platform]models.PlatformMetrics) error
}

// BatchInput is one parsed bulk-input row: a student and the profile URL
// or username given for each platform. Blank entries are not linked.
type BatchInput struct {
	StudentID string                     `json:"student_id" binding:"required"`
	Profiles  map[models.Platform]string `json:"profiles"`
}

// StudentResult is the outcome of processing one student
type StudentResult struct {
	StudentID    string            `json:"student_id"`
	Results      cache.Results     `json:"results"`
	FromCache    bool              `json:"from_cache"`
	Failed       []models.Platform `json:"failed,omitempty"`
	PersistError string            `json:"persist_error,omitempty"`
}

// AggregateResult summarizes a batch run
type AggregateResult struct {
	BatchID    string          `json:"batch_id"`
	Total      int             `json:"total"`
	Processed  int             `json:"processed"`
	Persisted  int             `json:"persisted"`
	CacheHits  int             `json:"cache_hits"`
	Students   []StudentResult `json:"students"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// BatchOptions tunes one batch run
type BatchOptions struct {
	BatchID string
	// UseCache enables cache reads; results are written either way
	UseCache bool
}

// Orchestrator scrapes students one at a time, platform by platform
type Orchestrator struct {
	registry *providers.Registry
	cache    cache.Cache
	store    PerformanceStore
	cacheTTL time.Duration
}

// NewOrchestrator creates a batch orchestrator
func NewOrchestrator(
	registry *providers.Registry,
	scoreCache cache.Cache,
	store PerformanceStore,
	cacheTTL time.Duration,
) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		cache:    scoreCache,
		store:    store,
		cacheTTL: cacheTTL,
	}
}

// ProcessBatch processes students strictly in order. Each student's record
// is cached and persisted before the next one starts, so progress counts
// only grow. Platform failures become error stubs and persistence failures
// are reported through sink; neither stops the batch. The returned error is
// non-nil only when ctx ends the batch early.
func (o *Orchestrator) ProcessBatch(ctx context.Context, students []BatchInput, opts BatchOptions, sink progress.Sink) (*AggregateResult, error) {
	if sink == nil {
		sink = progress.Discard
	}
	batchID := opts.BatchID
	if batchID == "" {
		batchID = progress.NewBatchID()
	}

	result := &AggregateResult{
		BatchID:   batchID,
		Total:     len(students),
		Students:  make([]StudentResult, 0, len(students)),
		StartedAt: time.Now(),
	}

	logger.Info("Starting batch",
		zap.String("batchID", batchID),
		zap.Int("students", len(students)),
		zap.Bool("useCache", opts.UseCache),
	)

	for _, input := range students {
		if err := ctx.Err(); err != nil {
			result.FinishedAt = time.Now()
			logger.Warn("Batch interrupted",
				zap.String("batchID", batchID),
				zap.Int("processed", result.Processed),
				zap.Error(err),
			)
			return result, err
		}

		sr := o.processStudent(ctx, input, opts.UseCache)
		result.Processed++
		if sr.FromCache {
			result.CacheHits++
		}

		event := progress.Event{
			BatchID:   batchID,
			Type:      progress.TypeProgress,
			Processed: result.Processed,
			Total:     result.Total,
			StudentID: sr.StudentID,
			At:        time.Now(),
		}
		if sr.PersistError != "" {
			event.Type = progress.TypeError
			event.Message = fmt.Sprintf("Skipped %s: %s", sr.StudentID, sr.PersistError)
		} else {
			result.Persisted++
			event.Message = progressMessage(sr)
		}
		sink.Publish(event)

		result.Students = append(result.Students, sr)
	}

	result.FinishedAt = time.Now()
	sink.Publish(progress.Event{
		BatchID:   batchID,
		Type:      progress.TypeComplete,
		Processed: result.Processed,
		Total:     result.Total,
		Message:   fmt.Sprintf("Processed %d students, %d persisted", result.Processed, result.Persisted),
		At:        result.FinishedAt,
	})

	logger.Info("Batch complete",
		zap.String("batchID", batchID),
		zap.Int("processed", result.Processed),
		zap.Int("persisted", result.Persisted),
		zap.Int("cacheHits", result.CacheHits),
		zap.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

func (o *Orchestrator) processStudent(ctx context.Context, input BatchInput, useCache bool) StudentResult {
	sr := StudentResult{StudentID: input.StudentID}
	log := logger.L().With(zap.String("studentID", input.StudentID))

	links := linkedProfiles(input)
	key := cache.DeriveKey(input.StudentID, cache.LinksFromMap(links))

	if useCache && o.cache != nil {
		cached, ok, err := o.cache.Get(ctx, key)
		if err != nil {
			log.Warn("Cache read failed, scraping instead", zap.Error(err))
		}
		if ok {
			sr.Results = cached
			sr.FromCache = true
		}
	}

	if !sr.FromCache {
		sr.Results = make(cache.Results, len(links))
		for _, platform := range models.BatchOrder {
			profile, ok := links[platform]
			if !ok {
				continue
			}
			metrics := o.scrape(ctx, platform, profile)
			if metrics.Failed() {
				log.Warn("Platform scrape failed",
					zap.String("platform", string(platform)),
					zap.String("profile", profile),
					zap.String("error", metrics.Error),
				)
			}
			sr.Results[platform] = metrics
		}

		if o.cache != nil {
			if err := o.cache.Put(ctx, key, sr.Results, o.cacheTTL); err != nil {
				log.Warn("Cache write failed", zap.Error(err))
			}
		}
	}

	for _, platform := range models.BatchOrder {
		if m, ok := sr.Results[platform]; ok && m.Failed() {
			sr.Failed = append(sr.Failed, platform)
		}
	}

	if err := o.store.SaveAll(ctx, input.StudentID, sr.Results); err != nil {
		err = fmt.Errorf("%w: %v", ErrPersistence, err)
		log.Error("Failed to persist student metrics", zap.Error(err))
		sr.PersistError = err.Error()
	}
	return sr
}

// scrape calls one adapter and folds every failure into an error stub
func (o *Orchestrator) scrape(ctx context.Context, platform models.Platform, profile string) (metrics models.PlatformMetrics) {
	defer func() {
		if r := recover(); r != nil {
			metrics = models.ErrorStub(platform, profile, fmt.Errorf("adapter panic: %v", r))
		}
	}()

	provider, err := o.registry.Get(platform)
	if err != nil {
		return models.ErrorStub(platform, profile, err)
	}
	m, err := provider.FetchProfile(ctx, profile)
	if err != nil {
		return models.ErrorStub(platform, profile, err)
	}
	if m == nil {
		return models.ErrorStub(platform, profile, errors.New("adapter returned no metrics"))
	}
	return *m
}

func linkedProfiles(input BatchInput) map[models.Platform]string {
	links := make(map[models.Platform]string, len(input.Profiles))
	for platform, profile := range input.Profiles {
		profile = strings.TrimSpace(profile)
		if profile == "" || !platform.Valid() {
			continue
		}
		links[platform] = profile
	}
	return links
}

func progressMessage(sr StudentResult) string {
	switch {
	case sr.FromCache:
		return fmt.Sprintf("Loaded %s from cache", sr.StudentID)
	case len(sr.Failed) > 0:
		names := make([]string, len(sr.Failed))
		for i, p := range sr.Failed {
			names[i] = p.DisplayName()
		}
		return fmt.Sprintf("Processed %s (failed: %s)", sr.StudentID, strings.Join(names, ", "))
	}
	return fmt.Sprintf("Processed %s", sr.StudentID)
}
