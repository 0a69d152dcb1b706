package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/internal/scoring"
	"gorm.io/gorm"
)

// DefaultRankChunk is the number of students persisted per transaction
const DefaultRankChunk = 100

// RankingRepository computes scores in SQL and stores ranks
type RankingRepository struct {
	db *gorm.DB
}

// NewRankingRepository creates a new ranking repository
func NewRankingRepository(db *gorm.DB) *RankingRepository {
	return &RankingRepository{db: db}
}

// Scores evaluates the engine's score expression for every student that
// matches the filter. Ranks are left at zero.
func (r *RankingRepository) Scores(ctx context.Context, engine *scoring.Engine, filter models.RankingFilter) ([]models.RankedStudent, error) {
	expr, args := engine.Expression()

	q := r.db.WithContext(ctx).
		Table("students AS s").
		Select("s.id AS student_id, s.name, s.department, s.year, s.section, "+expr+" AS score", args...).
		Joins("LEFT JOIN performances AS perf ON perf.student_id = s.id")

	for _, p := range models.BatchOrder {
		alias := scoring.ProfileAlias(p)
		q = q.Joins(fmt.Sprintf(
			"LEFT JOIN coding_profiles AS %s ON %s.student_id = s.id AND %s.platform = ?",
			alias, alias, alias,
		), string(p))
	}

	q = applyFilter(q, filter)

	var students []models.RankedStudent
	if err := q.Order("score DESC, s.id ASC").Scan(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to compute scores: %w", err)
	}
	return students, nil
}

func applyFilter(q *gorm.DB, filter models.RankingFilter) *gorm.DB {
	if filter.Department != "" {
		q = q.Where("s.department = ?", filter.Department)
	}
	if filter.Year != 0 {
		q = q.Where("s.year = ?", filter.Year)
	}
	if filter.Section != "" {
		q = q.Where("s.section = ?", filter.Section)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("(LOWER(s.name) LIKE ? OR LOWER(s.id) LIKE ?)", pattern, pattern)
	}
	return q
}

// PersistRanks writes (score, rank) back onto the student rows. Each
// chunk commits in its own transaction; the first failing chunk is rolled
// back and its error returned, leaving earlier chunks committed.
func (r *RankingRepository) PersistRanks(ctx context.Context, ranked []models.RankedStudent, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = DefaultRankChunk
	}
	now := time.Now()

	for start := 0; start < len(ranked); start += chunkSize {
		end := min(start+chunkSize, len(ranked))
		chunk := ranked[start:end]

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, s := range chunk {
				err := tx.Model(&models.Student{}).
					Where("id = ?", s.StudentID).
					Updates(map[string]interface{}{
						"score":        s.Score,
						"overall_rank": s.Rank,
						"ranked_at":    now,
					}).Error
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to persist ranks %d-%d: %w", start+1, end, err)
		}
	}
	return nil
}
