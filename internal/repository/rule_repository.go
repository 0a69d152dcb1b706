package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RuleRepository manages grading rules
type RuleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new grading rule repository
func NewRuleRepository(db *gorm.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// List retrieves every grading rule ordered by metric
func (r *RuleRepository) List(ctx context.Context) ([]models.GradingRule, error) {
	var rules []models.GradingRule
	if err := r.db.WithContext(ctx).Order("metric ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list grading rules: %w", err)
	}
	return rules, nil
}

// Upsert sets the points of a catalog metric
func (r *RuleRepository) Upsert(ctx context.Context, metric string, points int, updatedBy string) (*models.GradingRule, error) {
	if _, ok := models.LookupMetric(metric); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}

	var rule models.GradingRule
	err := r.db.WithContext(ctx).Where("metric = ?", metric).First(&rule).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rule = models.GradingRule{Metric: metric, Points: points, UpdatedBy: updatedBy}
		if err := r.db.WithContext(ctx).Create(&rule).Error; err != nil {
			return nil, fmt.Errorf("failed to create grading rule: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to get grading rule: %w", err)
	default:
		rule.Points = points
		rule.UpdatedBy = updatedBy
		if err := r.db.WithContext(ctx).Save(&rule).Error; err != nil {
			return nil, fmt.Errorf("failed to update grading rule: %w", err)
		}
	}
	return &rule, nil
}

// SeedDefaults inserts the default rule for every metric that has none.
// Existing rules are left untouched.
func (r *RuleRepository) SeedDefaults(ctx context.Context) error {
	rules := make([]models.GradingRule, 0, len(models.MetricCatalog))
	for _, m := range models.MetricCatalog {
		rules = append(rules, models.GradingRule{
			Metric:    m.Name,
			Points:    models.DefaultGradingRules[m.Name],
			UpdatedBy: "system",
		})
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "metric"}}, DoNothing: true}).
		Create(&rules).Error
	if err != nil {
		return fmt.Errorf("failed to seed grading rules: %w", err)
	}
	return nil
}
