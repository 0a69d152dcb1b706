package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/internal/providers"
	"github.com/yourusername/codetrack/scraper-service/internal/repository"
	"gorm.io/gorm"
)

// Mock provider for testing
type mockProvider struct {
	platform models.Platform
	calls    int
	failN    int // fail the first failN calls, -1 fails forever
	err      error
}

func (m *mockProvider) Platform() models.Platform { return m.platform }

func (m *mockProvider) FetchProfile(ctx context.Context, input string) (*models.PlatformMetrics, error) {
	m.calls++
	if m.failN < 0 || m.calls <= m.failN {
		if m.err != nil {
			return nil, m.err
		}
		return nil, &providers.ScrapeError{Kind: providers.KindHTTP, Platform: m.platform, Err: errors.New("503")}
	}
	return &models.PlatformMetrics{Platform: m.platform, Username: input, ProblemsSolved: 10, Stars: 3}, nil
}

// Profile store that fails every update
type failingUpdates struct {
	*repository.ProfileRepository
}

func (f failingUpdates) Update(ctx context.Context, studentID string, platform models.Platform, columns map[string]interface{}) error {
	return errors.New("connection reset")
}

func (f failingUpdates) UpdateIfUsername(ctx context.Context, studentID string, platform models.Platform, username string, columns map[string]interface{}) error {
	return errors.New("connection reset")
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func setupProfileService(t *testing.T, provider *mockProvider) (*ProfileService, *gorm.DB) {
	db := setupTestDB(t)
	svc := NewProfileService(
		repository.NewProfileRepository(db),
		repository.NewPerformanceRepository(db),
		providers.NewRegistry(provider),
		RetryPolicy{Attempts: 5, Delay: time.Second},
	)
	svc.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return svc, db
}

func seedLink(t *testing.T, db *gorm.DB, status models.ProfileStatus) {
	t.Helper()
	username := "bob"
	err := repository.NewProfileRepository(db).Create(context.Background(), &models.CodingProfile{
		StudentID: "S1",
		Platform:  models.PlatformCodeChef,
		Username:  &username,
		Status:    status,
		Verified:  status == models.StatusAccepted,
	})
	if err != nil {
		t.Fatalf("Failed to seed profile: %v", err)
	}
}

func TestRetryExhaustionDemotes(t *testing.T) {
	provider := &mockProvider{platform: models.PlatformCodeChef, failN: -1}
	svc, db := setupProfileService(t, provider)
	seedLink(t, db, models.StatusAccepted)

	var delays []time.Duration
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	outcome := svc.UpdateOnePlatform(context.Background(), "S1", models.PlatformCodeChef, "bob")

	if provider.calls != 5 || outcome.Attempts != 5 {
		t.Errorf("Expected exactly 5 attempts, got %d calls", provider.calls)
	}
	if len(delays) != 4 || delays[0] != time.Second {
		t.Errorf("Expected 4 one-second delays between attempts, got %v", delays)
	}
	if outcome.Demoted == nil || outcome.Demoted.Attempts != 5 {
		t.Fatalf("Expected demotion event, got %+v", outcome)
	}

	profile, err := repository.NewProfileRepository(db).Get(context.Background(), "S1", models.PlatformCodeChef)
	if err != nil {
		t.Fatalf("Failed to get profile: %v", err)
	}
	if profile.Status != models.StatusRejected || profile.Verified || profile.Username != nil {
		t.Errorf("Expected rejected, unverified, username cleared; got %+v", profile)
	}
	if profile.DemotionReason == "" {
		t.Error("Expected demotion reason to be recorded")
	}
}

func TestRetrySucceedsBeforeExhaustion(t *testing.T) {
	provider := &mockProvider{platform: models.PlatformCodeChef, failN: 2}
	svc, db := setupProfileService(t, provider)
	seedLink(t, db, models.StatusAccepted)

	outcome := svc.UpdateOnePlatform(context.Background(), "S1", models.PlatformCodeChef, "bob")
	if !outcome.Succeeded() || outcome.Attempts != 3 || outcome.Demoted != nil {
		t.Fatalf("Expected success on third attempt, got %+v", outcome)
	}

	perf, err := repository.NewPerformanceRepository(db).Get(context.Background(), "S1")
	if err != nil {
		t.Fatalf("Failed to get performance: %v", err)
	}
	if perf.ProblemsCC != 10 || perf.StarsCC != 3 {
		t.Errorf("Expected metrics to be persisted, got %+v", perf)
	}

	profile, _ := repository.NewProfileRepository(db).Get(context.Background(), "S1", models.PlatformCodeChef)
	if profile.Status != models.StatusAccepted {
		t.Errorf("Expected link to stay accepted, got %s", profile.Status)
	}
}

func TestInvalidInputDemotesWithoutRetry(t *testing.T) {
	provider := &mockProvider{
		platform: models.PlatformCodeChef,
		failN:    -1,
		err:      &providers.ScrapeError{Kind: providers.KindInvalidInput, Platform: models.PlatformCodeChef, Err: errors.New("bad username")},
	}
	svc, db := setupProfileService(t, provider)
	seedLink(t, db, models.StatusPending)

	outcome := svc.UpdateOnePlatform(context.Background(), "S1", models.PlatformCodeChef, "??")
	if provider.calls != 1 {
		t.Errorf("Expected a single attempt for invalid input, got %d", provider.calls)
	}
	if outcome.Demoted == nil {
		t.Error("Expected invalid username to be demoted")
	}
}

func TestDemotionWriteFailureIsNotRetried(t *testing.T) {
	provider := &mockProvider{platform: models.PlatformCodeChef, failN: -1}
	db := setupTestDB(t)
	seedLink(t, db, models.StatusAccepted)

	svc := NewProfileService(
		failingUpdates{repository.NewProfileRepository(db)},
		repository.NewPerformanceRepository(db),
		providers.NewRegistry(provider),
		DefaultRetryPolicy,
	)
	svc.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	outcome := svc.UpdateOnePlatform(context.Background(), "S1", models.PlatformCodeChef, "bob")
	if outcome.Demoted != nil || outcome.DemotionError == "" {
		t.Errorf("Expected demotion failure to be reported, got %+v", outcome)
	}
	if provider.calls != 5 {
		t.Errorf("Expected no extra attempts after a failed demotion, got %d", provider.calls)
	}
}

func TestCancelledRefreshDoesNotDemote(t *testing.T) {
	provider := &mockProvider{platform: models.PlatformCodeChef, failN: -1}
	svc, db := setupProfileService(t, provider)
	seedLink(t, db, models.StatusAccepted)

	ctx, cancel := context.WithCancel(context.Background())
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	outcome := svc.UpdateOnePlatform(ctx, "S1", models.PlatformCodeChef, "bob")
	if outcome.Demoted != nil {
		t.Error("Expected cancellation not to demote")
	}

	profile, _ := repository.NewProfileRepository(db).Get(context.Background(), "S1", models.PlatformCodeChef)
	if profile.Status != models.StatusAccepted {
		t.Errorf("Expected link to stay accepted, got %s", profile.Status)
	}
}

func TestReviewAcceptRefreshes(t *testing.T) {
	provider := &mockProvider{platform: models.PlatformCodeChef}
	svc, db := setupProfileService(t, provider)
	seedLink(t, db, models.StatusPending)

	result, err := svc.Review(context.Background(), "S1", models.PlatformCodeChef, "accept", "prof.x")
	if err != nil {
		t.Fatalf("Failed to review: %v", err)
	}
	if result.Profile.Status != models.StatusAccepted || !result.Profile.Verified || result.Profile.VerifiedBy != "prof.x" {
		t.Errorf("Unexpected profile after accept: %+v", result.Profile)
	}
	if result.Refresh == nil || !result.Refresh.Succeeded() {
		t.Errorf("Expected immediate refresh, got %+v", result.Refresh)
	}
}

func TestReviewAcceptWithBrokenProfileDemotes(t *testing.T) {
	provider := &mockProvider{platform: models.PlatformCodeChef, failN: -1}
	svc, db := setupProfileService(t, provider)
	seedLink(t, db, models.StatusPending)

	result, err := svc.Review(context.Background(), "S1", models.PlatformCodeChef, "accept", "prof.x")
	if err != nil {
		t.Fatalf("Failed to review: %v", err)
	}
	if result.Profile.Status != models.StatusRejected || result.Profile.Username != nil {
		t.Errorf("Expected accepted link to be demoted, got %+v", result.Profile)
	}
}

func TestReviewInvalidTransition(t *testing.T) {
	svc, db := setupProfileService(t, &mockProvider{platform: models.PlatformCodeChef})
	seedLink(t, db, models.StatusRejected)

	if _, err := svc.Review(context.Background(), "S1", models.PlatformCodeChef, "accept", "prof.x"); err == nil {
		t.Error("Expected accepting a rejected link to fail")
	}
	if _, err := svc.Review(context.Background(), "S9", models.PlatformCodeChef, "accept", "prof.x"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestResubmit(t *testing.T) {
	svc, db := setupProfileService(t, &mockProvider{platform: models.PlatformCodeChef})
	seedLink(t, db, models.StatusRejected)
	ctx := context.Background()

	profile, err := svc.Resubmit(ctx, "S1", models.PlatformCodeChef, " bob_new ")
	if err != nil {
		t.Fatalf("Failed to resubmit: %v", err)
	}
	if profile.Status != models.StatusPending || profile.Username == nil || *profile.Username != "bob_new" {
		t.Errorf("Unexpected profile after resubmit: %+v", profile)
	}

	created, err := svc.Resubmit(ctx, "S2", models.PlatformLeetCode, "carol")
	if err != nil {
		t.Fatalf("Failed to create link: %v", err)
	}
	if created.Status != models.StatusPending {
		t.Errorf("Expected new link to be pending, got %s", created.Status)
	}

	if _, err := svc.Resubmit(ctx, "S1", models.PlatformCodeChef, "  "); !errors.Is(err, ErrEmptyUsername) {
		t.Errorf("Expected ErrEmptyUsername, got %v", err)
	}
}

func TestResubmitDuringRefreshIsNotDemoted(t *testing.T) {
	provider := &mockProvider{platform: models.PlatformCodeChef, failN: -1}
	svc, db := setupProfileService(t, provider)
	seedLink(t, db, models.StatusAccepted)
	ctx := context.Background()

	sleeps := 0
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		if sleeps == 2 {
			if _, err := svc.Resubmit(ctx, "S1", models.PlatformCodeChef, "bob2"); err != nil {
				t.Fatalf("Failed to resubmit: %v", err)
			}
		}
		return nil
	}

	outcome := svc.UpdateOnePlatform(ctx, "S1", models.PlatformCodeChef, "bob")
	if outcome.Demoted != nil || outcome.DemotionError == "" {
		t.Errorf("Expected demotion to be skipped, got %+v", outcome)
	}

	profile, err := repository.NewProfileRepository(db).Get(ctx, "S1", models.PlatformCodeChef)
	if err != nil {
		t.Fatalf("Failed to get profile: %v", err)
	}
	if profile.Status != models.StatusPending || profile.Username == nil || *profile.Username != "bob2" {
		t.Errorf("Expected the resubmitted link to survive, got %+v", profile)
	}
}

func TestMissingProfileDemotionReason(t *testing.T) {
	provider := &mockProvider{
		platform: models.PlatformCodeChef,
		failN:    -1,
		err:      &providers.ScrapeError{Kind: providers.KindProfileNotFound, Platform: models.PlatformCodeChef, Err: errors.New("404")},
	}
	svc, db := setupProfileService(t, provider)
	seedLink(t, db, models.StatusAccepted)

	outcome := svc.UpdateOnePlatform(context.Background(), "S1", models.PlatformCodeChef, "bob")
	if outcome.Demoted == nil {
		t.Fatalf("Expected demotion, got %+v", outcome)
	}
	if !strings.Contains(outcome.Demoted.Reason, `no CodeChef profile named "bob"`) {
		t.Errorf("Unexpected demotion reason %q", outcome.Demoted.Reason)
	}
}
