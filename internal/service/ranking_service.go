package service

import (
	"context"
	"fmt"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/internal/repository"
	"github.com/yourusername/codetrack/scraper-service/internal/scoring"
	"github.com/yourusername/codetrack/scraper-service/pkg/logger"
	"go.uber.org/zap"
)

// PageRequest selects one page of a ranking
type PageRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// RankingPage is one page of ranked students with its metadata
type RankingPage struct {
	Students      []models.RankedStudent `json:"students"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	TotalStudents int                    `json:"totalStudents"`
	TotalPages    int                    `json:"totalPages"`
	RanksSaved    bool                   `json:"ranksSaved"`
}

// RankingOptions configures pagination bounds and rank persistence
type RankingOptions struct {
	DefaultLimit int
	MaxLimit     int
	PersistChunk int
}

// RankingService computes and persists student rankings
type RankingService struct {
	rules   *repository.RuleRepository
	ranking *repository.RankingRepository
	opts    RankingOptions
}

// NewRankingService creates a new ranking service
func NewRankingService(rules *repository.RuleRepository, ranking *repository.RankingRepository, opts RankingOptions) *RankingService {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}
	if opts.PersistChunk <= 0 {
		opts.PersistChunk = repository.DefaultRankChunk
	}
	return &RankingService{rules: rules, ranking: ranking, opts: opts}
}

// ComputeRanking scores and ranks every student matching filter, then
// returns the requested page. Ranks are assigned over the whole filtered
// population before slicing. Unfiltered rankings are written back to the
// student rows; a failed write is logged and the ranking still returned.
func (s *RankingService) ComputeRanking(ctx context.Context, filter models.RankingFilter, req PageRequest) (*RankingPage, error) {
	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, err
	}
	engine := scoring.NewEngine(rules)

	students, err := s.ranking.Scores(ctx, engine, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to rank students: %w", err)
	}
	scoring.AssignRanks(students)

	page := &RankingPage{TotalStudents: len(students)}
	if filter.Empty() {
		if err := s.ranking.PersistRanks(ctx, students, s.opts.PersistChunk); err != nil {
			logger.Error("Failed to persist ranks", zap.Int("students", len(students)), zap.Error(err))
		} else {
			page.RanksSaved = true
		}
	}

	page.Page, page.Limit = s.normalizePage(req)
	page.TotalPages = (len(students) + page.Limit - 1) / page.Limit

	start := (page.Page - 1) * page.Limit
	if start > len(students) {
		start = len(students)
	}
	end := min(start+page.Limit, len(students))
	page.Students = students[start:end]

	return page, nil
}

func (s *RankingService) normalizePage(req PageRequest) (page, limit int) {
	page, limit = req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}
	if limit > s.opts.MaxLimit {
		limit = s.opts.MaxLimit
	}
	return page, limit
}
