package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PerformanceRepository stores the latest metrics of every student
type PerformanceRepository struct {
	db *gorm.DB
}

// NewPerformanceRepository creates a new performance repository
func NewPerformanceRepository(db *gorm.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// Get retrieves the performance row of a student
func (r *PerformanceRepository) Get(ctx context.Context, studentID string) (*models.Performance, error) {
	var perf models.Performance
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&perf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("performance of %s: %w", studentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get performance: %w", err)
	}
	return &perf, nil
}

// SavePlatform overwrites one platform's columns for a student
func (r *PerformanceRepository) SavePlatform(ctx context.Context, studentID string, metrics models.PlatformMetrics) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return savePlatform(tx, studentID, metrics)
	})
}

// SaveAll overwrites every given platform's columns in one transaction
func (r *PerformanceRepository) SaveAll(ctx context.Context, studentID string, results map[models.Platform]models.PlatformMetrics) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, platform := range models.BatchOrder {
			metrics, ok := results[platform]
			if !ok {
				continue
			}
			if err := savePlatform(tx, studentID, metrics); err != nil {
				return err
			}
		}
		return nil
	})
}

func savePlatform(tx *gorm.DB, studentID string, metrics models.PlatformMetrics) error {
	columns, err := PlatformColumns(metrics)
	if err != nil {
		return err
	}

	var perf models.Performance
	if err := tx.Where(models.Performance{StudentID: studentID}).FirstOrCreate(&perf).Error; err != nil {
		return fmt.Errorf("failed to ensure performance row: %w", err)
	}

	err = tx.Model(&models.Performance{}).
		Where("student_id = ?", studentID).
		Updates(columns).Error
	if err != nil {
		return fmt.Errorf("failed to save %s metrics: %w", metrics.Platform, err)
	}
	return nil
}

// PlatformColumns maps a snapshot onto the performance columns its
// platform owns, including the error column, so a save overwrites the
// previous snapshot as a unit.
func PlatformColumns(metrics models.PlatformMetrics) (map[string]interface{}, error) {
	if !metrics.Platform.Valid() {
		return nil, fmt.Errorf("unknown platform %q", metrics.Platform)
	}

	columns := map[string]interface{}{
		"error_" + metrics.Platform.Suffix(): metrics.Error,
	}
	for name, value := range metrics.MetricValues() {
		metric, _ := models.LookupMetric(name)
		columns[metric.Column] = value
	}

	switch metrics.Platform {
	case models.PlatformLeetCode:
		columns["total_score_lc"] = metrics.TotalScore
	case models.PlatformHackerRank:
		badges := metrics.BadgeDetails
		if badges == nil {
			badges = []models.Badge{}
		}
		titles := metrics.CertificateTitles
		if titles == nil {
			titles = []string{}
		}
		badgeJSON, err := json.Marshal(badges)
		if err != nil {
			return nil, fmt.Errorf("failed to encode badges: %w", err)
		}
		titleJSON, err := json.Marshal(titles)
		if err != nil {
			return nil, fmt.Errorf("failed to encode certificates: %w", err)
		}
		columns["badge_details_hr"] = datatypes.JSON(badgeJSON)
		columns["certificate_titles_hr"] = datatypes.JSON(titleJSON)
	}
	return columns, nil
}
