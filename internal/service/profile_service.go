package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/internal/providers"
	"github.com/yourusername/codetrack/scraper-service/internal/repository"
	"github.com/yourusername/codetrack/scraper-service/internal/verification"
	"github.com/yourusername/codetrack/scraper-service/pkg/logger"
	"go.uber.org/zap"
)

// ErrEmptyUsername is returned when a resubmission carries no username
var ErrEmptyUsername = errors.New("username must not be empty")

// ProfileStore reads and mutates coding profile links
type ProfileStore interface {
	Get(ctx context.Context, studentID string, platform models.Platform) (*models.CodingProfile, error)
	Create(ctx context.Context, profile *models.CodingProfile) error
	Update(ctx context.Context, studentID string, platform models.Platform, columns map[string]interface{}) error
	UpdateIfUsername(ctx context.Context, studentID string, platform models.Platform, username string, columns map[string]interface{}) error
}

// MetricsStore persists one platform's metrics for a student
type MetricsStore interface {
	SavePlatform(ctx context.Context, studentID string, metrics models.PlatformMetrics) error
}

// RetryPolicy bounds the single-profile refresh loop
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetryPolicy makes five attempts one second apart
var DefaultRetryPolicy = RetryPolicy{Attempts: 5, Delay: time.Second}

// Outcome describes one UpdateOnePlatform run
type Outcome struct {
	StudentID     string                        `json:"student_id"`
	Platform      models.Platform               `json:"platform"`
	Username      string                        `json:"username"`
	Attempts      int                           `json:"attempts"`
	Metrics       *models.PlatformMetrics       `json:"metrics,omitempty"`
	LastError     string                        `json:"last_error,omitempty"`
	PersistError  string                        `json:"persist_error,omitempty"`
	Demoted       *verification.PlatformDemoted `json:"demoted,omitempty"`
	DemotionError string                        `json:"demotion_error,omitempty"`
}

// Succeeded reports whether metrics were fetched
func (o Outcome) Succeeded() bool {
	return o.Metrics != nil
}

// ProfileService handles faculty review, resubmission and real-time
// refresh of single coding profiles.
type ProfileService struct {
	profiles ProfileStore
	metrics  MetricsStore
	registry *providers.Registry
	policy   RetryPolicy
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
}

// NewProfileService creates a new profile service
func NewProfileService(
	profiles ProfileStore,
	metrics MetricsStore,
	registry *providers.Registry,
	policy RetryPolicy,
) *ProfileService {
	if policy.Attempts < 1 {
		policy.Attempts = DefaultRetryPolicy.Attempts
	}
	return &ProfileService{
		profiles: profiles,
		metrics:  metrics,
		registry: registry,
		policy:   policy,
		sleep:    sleepContext,
		now:      time.Now,
	}
}

// ReviewResult is the outcome of a faculty review
type ReviewResult struct {
	Profile *models.CodingProfile `json:"profile"`
	Refresh *Outcome              `json:"refresh,omitempty"`
}

// Review applies a faculty action to a link. Accepting a link scrapes it
// right away through UpdateOnePlatform, which may demote it again.
func (s *ProfileService) Review(ctx context.Context, studentID string, platform models.Platform, action, verifier string) (*ReviewResult, error) {
	event, err := verification.ParseEvent(action)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.Get(ctx, studentID, platform)
	if err != nil {
		return nil, err
	}

	mutation, err := verification.Review(profile.Status, event, verifier)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.Update(ctx, studentID, platform, mutation.Columns()); err != nil {
		return nil, fmt.Errorf("failed to apply review: %w", err)
	}

	logger.Info("Profile reviewed",
		zap.String("studentID", studentID),
		zap.String("platform", string(platform)),
		zap.String("action", string(event)),
		zap.String("verifier", verifier),
		zap.String("status", string(mutation.Status)),
	)

	result := &ReviewResult{}
	if event == verification.EventAccept && profile.Username != nil && *profile.Username != "" {
		outcome := s.UpdateOnePlatform(ctx, studentID, platform, *profile.Username)
		result.Refresh = &outcome
	}

	if result.Profile, err = s.profiles.Get(ctx, studentID, platform); err != nil {
		return nil, err
	}
	return result, nil
}

// Resubmit stores a new username for a link and resets it to pending,
// creating the link if the student had none for the platform.
func (s *ProfileService) Resubmit(ctx context.Context, studentID string, platform models.Platform, username string) (*models.CodingProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if !platform.Valid() {
		return nil, fmt.Errorf("unknown platform %q", platform)
	}

	_, err := s.profiles.Get(ctx, studentID, platform)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		profile := &models.CodingProfile{
			StudentID: studentID,
			Platform:  platform,
			Username:  &username,
			Status:    models.StatusPending,
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
	case err != nil:
		return nil, err
	default:
		if err := s.profiles.Update(ctx, studentID, platform, verification.Resubmit(username).Columns()); err != nil {
			return nil, fmt.Errorf("failed to resubmit profile: %w", err)
		}
	}

	logger.Info("Profile submitted",
		zap.String("studentID", studentID),
		zap.String("platform", string(platform)),
		zap.String("username", username),
	)
	return s.profiles.Get(ctx, studentID, platform)
}

// Refresh re-scrapes the stored username of a link
func (s *ProfileService) Refresh(ctx context.Context, studentID string, platform models.Platform) (*Outcome, error) {
	profile, err := s.profiles.Get(ctx, studentID, platform)
	if err != nil {
		return nil, err
	}
	if profile.Username == nil || *profile.Username == "" {
		return nil, ErrEmptyUsername
	}
	outcome := s.UpdateOnePlatform(ctx, studentID, platform, *profile.Username)
	return &outcome, nil
}

// UpdateOnePlatform scrapes one profile, retrying up to the policy bound.
// Success persists the metrics. Exhausting every attempt demotes the link
// to rejected and clears its username; a failed demotion write is logged
// and not retried.
func (s *ProfileService) UpdateOnePlatform(ctx context.Context, studentID string, platform models.Platform, username string) Outcome {
	outcome := Outcome{StudentID: studentID, Platform: platform, Username: username}
	log := logger.L().With(
		zap.String("studentID", studentID),
		zap.String("platform", string(platform)),
	)

	provider, err := s.registry.Get(platform)
	if err != nil {
		outcome.LastError = err.Error()
		log.Error("No provider for platform", zap.Error(err))
		return outcome
	}

	var lastErr error
	for attempt := 1; attempt <= s.policy.Attempts; attempt++ {
		outcome.Attempts = attempt

		metrics, err := provider.FetchProfile(ctx, username)
		if err == nil && metrics != nil {
			outcome.Metrics = metrics
			outcome.LastError = ""
			if err := s.metrics.SavePlatform(ctx, studentID, *metrics); err != nil {
				outcome.PersistError = err.Error()
				log.Error("Failed to persist refreshed metrics", zap.Error(err))
			}
			log.Info("Profile refreshed", zap.Int("attempts", attempt))
			return outcome
		}
		if err == nil {
			err = errors.New("adapter returned no metrics")
		}
		lastErr = err
		outcome.LastError = err.Error()

		log.Warn("Profile scrape attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", s.policy.Attempts),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			// cancellation is not evidence of a broken profile
			return outcome
		}
		if !providers.IsRetryable(err) {
			break
		}
		if attempt < s.policy.Attempts {
			if err := s.sleep(ctx, s.policy.Delay); err != nil {
				return outcome
			}
		}
	}

	s.demote(ctx, &outcome, lastErr)
	return outcome
}

func (s *ProfileService) demote(ctx context.Context, outcome *Outcome, cause error) {
	reason := fmt.Sprintf("scrape failed after %d attempts: %v", outcome.Attempts, cause)
	if providers.IsKind(cause, providers.KindProfileNotFound) {
		reason = fmt.Sprintf("no %s profile named %q", outcome.Platform.DisplayName(), outcome.Username)
	}
	event := verification.PlatformDemoted{
		StudentID: outcome.StudentID,
		Platform:  outcome.Platform,
		Reason:    reason,
		Attempts:  outcome.Attempts,
		At:        s.now(),
	}
	log := logger.L().With(
		zap.String("studentID", event.StudentID),
		zap.String("platform", string(event.Platform)),
	)

	profile, err := s.profiles.Get(ctx, event.StudentID, event.Platform)
	if err != nil {
		outcome.DemotionError = err.Error()
		log.Error("Failed to load profile for demotion", zap.Error(err))
		return
	}

	if profile.Username == nil || *profile.Username != outcome.Username {
		outcome.DemotionError = "profile was resubmitted during the refresh"
		log.Info("Profile resubmitted during refresh, not demoted", zap.String("scraped", outcome.Username))
		return
	}

	mutation, err := event.Apply(profile.Status)
	if err != nil {
		outcome.DemotionError = err.Error()
		log.Warn("Profile not demoted", zap.String("status", string(profile.Status)), zap.Error(err))
		return
	}

	// the guard covers a resubmission landing between the read and the write
	if err := s.profiles.UpdateIfUsername(ctx, event.StudentID, event.Platform, outcome.Username, mutation.Columns()); err != nil {
		outcome.DemotionError = err.Error()
		log.Error("Failed to demote profile", zap.Error(err))
		return
	}

	outcome.Demoted = &event
	log.Warn("Profile demoted to rejected",
		zap.Int("attempts", event.Attempts),
		zap.String("reason", event.Reason),
	)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
