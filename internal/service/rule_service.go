package service

import (
	"context"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/internal/repository"
	"github.com/yourusername/codetrack/scraper-service/pkg/logger"
	"go.uber.org/zap"
)

// RuleService administers grading rules
type RuleService struct {
	rules *repository.RuleRepository
}

// NewRuleService creates a new grading rule service
func NewRuleService(rules *repository.RuleRepository) *RuleService {
	return &RuleService{rules: rules}
}

// ListRules returns every grading rule
func (s *RuleService) ListRules(ctx context.Context) ([]models.GradingRule, error) {
	return s.rules.List(ctx)
}

// UpsertRule sets the points of a catalog metric
func (s *RuleService) UpsertRule(ctx context.Context, metric string, points int, updatedBy string) (*models.GradingRule, error) {
	rule, err := s.rules.Upsert(ctx, metric, points, updatedBy)
	if err != nil {
		return nil, err
	}
	logger.Info("Grading rule updated",
		zap.String("metric", metric),
		zap.Int("points", points),
		zap.String("updatedBy", updatedBy),
	)
	return rule, nil
}
