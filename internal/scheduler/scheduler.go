// Package scheduler runs the periodic batch refresh and cache sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/yourusername/codetrack/scraper-service/internal/aggregator"
	"github.com/yourusername/codetrack/scraper-service/internal/cache"
	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/internal/progress"
	"github.com/yourusername/codetrack/scraper-service/internal/service"
	"github.com/yourusername/codetrack/scraper-service/pkg/logger"
	"go.uber.org/zap"
)

// BatchRunner processes a batch of students
type BatchRunner interface {
	ProcessBatch(ctx context.Context, students []aggregator.BatchInput, opts aggregator.BatchOptions, sink progress.Sink) (*aggregator.AggregateResult, error)
}

// Ranker recomputes the ranking
type Ranker interface {
	ComputeRanking(ctx context.Context, filter models.RankingFilter, req service.PageRequest) (*service.RankingPage, error)
}

// ProfileLister lists the links a batch should scrape
type ProfileLister interface {
	ListScrapable(ctx context.Context, statuses ...models.ProfileStatus) ([]models.CodingProfile, error)
}

// Config holds the cron expressions and per-run timeouts
type Config struct {
	BatchSchedule string
	SweepSchedule string
	UseCache      bool
	BatchTimeout  time.Duration
	SweepTimeout  time.Duration
}

// Scheduler owns the cron runner
type Scheduler struct {
	cron     *cron.Cron
	cfg      Config
	runner   BatchRunner
	ranker   Ranker
	profiles ProfileLister
	sweeper  cache.Sweeper
	sink     progress.Sink
}

// New creates a scheduler. sweeper may be nil when the cache expires
// entries on its own.
func New(cfg Config, runner BatchRunner, ranker Ranker, profiles ProfileLister, sweeper cache.Sweeper, sink progress.Sink) *Scheduler {
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 12 * time.Hour
	}
	if cfg.SweepTimeout <= 0 {
		cfg.SweepTimeout = 5 * time.Minute
	}
	if sink == nil {
		sink = progress.Discard
	}

	cronLog := cronLogger{log: logger.L().Sugar()}
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.SkipIfStillRunning(cronLog))),
		cfg:      cfg,
		runner:   runner,
		ranker:   ranker,
		profiles: profiles,
		sweeper:  sweeper,
		sink:     sink,
	}
}

// Start registers the jobs and starts the cron runner
func (s *Scheduler) Start() error {
	if s.cfg.BatchSchedule != "" {
		_, err := s.cron.AddFunc(s.cfg.BatchSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.BatchTimeout)
			defer cancel()
			if _, err := s.RunBatch(ctx); err != nil {
				logger.Error("Scheduled batch failed", zap.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("invalid batch schedule %q: %w", s.cfg.BatchSchedule, err)
		}
	}

	if s.cfg.SweepSchedule != "" && s.sweeper != nil {
		_, err := s.cron.AddFunc(s.cfg.SweepSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SweepTimeout)
			defer cancel()
			s.SweepCache(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid sweep schedule %q: %w", s.cfg.SweepSchedule, err)
		}
	}

	s.cron.Start()
	logger.Info("Scheduler started",
		zap.String("batchSchedule", s.cfg.BatchSchedule),
		zap.String("sweepSchedule", s.cfg.SweepSchedule),
	)
	return nil
}

// Stop stops the runner and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunBatch scrapes every pending or accepted link, then recomputes the
// unfiltered ranking so stored ranks follow the new metrics.
func (s *Scheduler) RunBatch(ctx context.Context) (*aggregator.AggregateResult, error) {
	profiles, err := s.profiles.ListScrapable(ctx, models.StatusPending, models.StatusAccepted)
	if err != nil {
		return nil, err
	}
	students := BuildBatch(profiles)

	result, err := s.runner.ProcessBatch(ctx, students, aggregator.BatchOptions{UseCache: s.cfg.UseCache}, s.sink)
	if err != nil {
		return result, err
	}

	page, err := s.ranker.ComputeRanking(ctx, models.RankingFilter{}, service.PageRequest{})
	if err != nil {
		return result, fmt.Errorf("failed to refresh ranking: %w", err)
	}
	logger.Info("Ranking refreshed after batch",
		zap.String("batchID", result.BatchID),
		zap.Int("students", page.TotalStudents),
		zap.Bool("ranksSaved", page.RanksSaved),
	)
	return result, nil
}

// SweepCache removes expired cache entries
func (s *Scheduler) SweepCache(ctx context.Context) {
	if s.sweeper == nil {
		return
	}
	removed, err := s.sweeper.Sweep(ctx)
	if err != nil {
		logger.Warn("Cache sweep failed", zap.Error(err))
		return
	}
	logger.Debug("Cache sweep complete", zap.Int64("removed", removed))
}

// BuildBatch groups links into one batch row per student, keeping the
// order in which students first appear.
func BuildBatch(profiles []models.CodingProfile) []aggregator.BatchInput {
	var batch []aggregator.BatchInput
	index := make(map[string]int)

	for _, p := range profiles {
		if p.Username == nil || *p.Username == "" {
			continue
		}
		i, ok := index[p.StudentID]
		if !ok {
			i = len(batch)
			index[p.StudentID] = i
			batch = append(batch, aggregator.BatchInput{
				StudentID: p.StudentID,
				Profiles:  make(map[models.Platform]string),
			})
		}
		batch[i].Profiles[p.Platform] = *p.Username
	}
	return batch
}

// cronLogger routes cron's logging through zap
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
