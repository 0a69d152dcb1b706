package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"gorm.io/gorm"
)

// ProfileRepository handles coding profile links
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create creates a new profile link
func (r *ProfileRepository) Create(ctx context.Context, profile *models.CodingProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// Get retrieves the link for one (student, platform) pair
func (r *ProfileRepository) Get(ctx context.Context, studentID string, platform models.Platform) (*models.CodingProfile, error) {
	var profile models.CodingProfile
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND platform = ?", studentID, platform).
		First(&profile).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s profile of %s: %w", platform, studentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// ListByStudent retrieves every link of a student
func (r *ProfileRepository) ListByStudent(ctx context.Context, studentID string) ([]models.CodingProfile, error) {
	var profiles []models.CodingProfile
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("platform ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// ListScrapable retrieves links that have a username and one of the given
// statuses, ordered by student so a batch can group them.
func (r *ProfileRepository) ListScrapable(ctx context.Context, statuses ...models.ProfileStatus) ([]models.CodingProfile, error) {
	var profiles []models.CodingProfile
	err := r.db.WithContext(ctx).
		Where("username IS NOT NULL AND username <> ''").
		Where("status IN ?", statuses).
		Order("student_id ASC, platform ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scrapable profiles: %w", err)
	}
	return profiles, nil
}

// Update applies a partial column update to one link
func (r *ProfileRepository) Update(ctx context.Context, studentID string, platform models.Platform, columns map[string]interface{}) error {
	query := r.db.WithContext(ctx).
		Model(&models.CodingProfile{}).
		Where("student_id = ? AND platform = ?", studentID, platform)
	return applyUpdate(query, studentID, platform, columns)
}

// UpdateIfUsername applies the update only while the link still holds
// username. A link resubmitted in the meantime yields ErrNotFound.
func (r *ProfileRepository) UpdateIfUsername(ctx context.Context, studentID string, platform models.Platform, username string, columns map[string]interface{}) error {
	query := r.db.WithContext(ctx).
		Model(&models.CodingProfile{}).
		Where("student_id = ? AND platform = ? AND username = ?", studentID, platform, username)
	return applyUpdate(query, studentID, platform, columns)
}

func applyUpdate(query *gorm.DB, studentID string, platform models.Platform, columns map[string]interface{}) error {
	result := query.Updates(columns)
	if result.Error != nil {
		return fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s profile of %s: %w", platform, studentID, ErrNotFound)
	}
	return nil
}
