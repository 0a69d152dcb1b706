package service

import (
	"context"
	"errors"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/internal/repository"
	"github.com/yourusername/codetrack/scraper-service/internal/scoring"
)

// StudentSummary is one student's links, stored metrics and live score
type StudentSummary struct {
	Student       *models.Student        `json:"student"`
	Profiles      []models.CodingProfile `json:"profiles"`
	Performance   *models.Performance    `json:"performance"`
	Score         int                    `json:"score"`
	TotalStudents int64                  `json:"total_students"`
}

// StudentService assembles per-student views
type StudentService struct {
	students     *repository.StudentRepository
	profiles     *repository.ProfileRepository
	performances *repository.PerformanceRepository
	rules        *repository.RuleRepository
}

// NewStudentService creates a new student service
func NewStudentService(students *repository.StudentRepository, profiles *repository.ProfileRepository, performances *repository.PerformanceRepository, rules *repository.RuleRepository) *StudentService {
	return &StudentService{students: students, profiles: profiles, performances: performances, rules: rules}
}

// Summary returns the student's links and metrics with a score computed
// from the current grading rules. The stored rank is the one written by
// the last unfiltered ranking and may trail a rule change.
func (s *StudentService) Summary(ctx context.Context, studentID string) (*StudentSummary, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	profiles, err := s.profiles.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	statuses := make(map[models.Platform]models.ProfileStatus, len(profiles))
	for _, p := range profiles {
		statuses[p.Platform] = p.Status
	}

	perf, err := s.performances.Get(ctx, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		perf = &models.Performance{StudentID: studentID}
	} else if err != nil {
		return nil, err
	}

	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, err
	}

	total, err := s.students.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &StudentSummary{
		Student:       student,
		Profiles:      profiles,
		Performance:   perf,
		Score:         scoring.NewEngine(rules).Score(perf, statuses),
		TotalStudents: total,
	}, nil
}
