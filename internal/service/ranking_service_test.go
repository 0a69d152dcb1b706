package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/internal/repository"
	"gorm.io/gorm"
)

func setupRankingService(t *testing.T, students int) (*RankingService, *gorm.DB) {
	db := setupTestDB(t)
	ctx := context.Background()

	rules := repository.NewRuleRepository(db)
	for metric, points := range map[string]int{"easy_lc": 1, "medium_lc": 3, "contests_lc": 5, "stars_cc": 2, "problems_cc": 1} {
		if _, err := rules.Upsert(ctx, metric, points, "test"); err != nil {
			t.Fatalf("Failed to seed rule: %v", err)
		}
	}

	studentRepo := repository.NewStudentRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	perfRepo := repository.NewPerformanceRepository(db)
	for i := 1; i <= students; i++ {
		id := fmt.Sprintf("S%02d", i)
		dept := "CSE"
		if i%2 == 0 {
			dept = "ECE"
		}
		studentRepo.Create(ctx, &models.Student{ID: id, Name: "Student " + id, Department: dept, Year: 2})
		username := "user" + id
		profileRepo.Create(ctx, &models.CodingProfile{StudentID: id, Platform: models.PlatformLeetCode, Username: &username, Status: models.StatusAccepted})
		// scores repeat every 3 students so ties exist
		perfRepo.SavePlatform(ctx, id, models.PlatformMetrics{Platform: models.PlatformLeetCode, Easy: i % 3})
	}

	svc := NewRankingService(rules, repository.NewRankingRepository(db), RankingOptions{
		DefaultLimit: 10,
		MaxLimit:     20,
		PersistChunk: 4,
	})
	return svc, db
}

func TestComputeRankingScenario(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	rules := repository.NewRuleRepository(db)
	for metric, points := range map[string]int{"easy_lc": 1, "medium_lc": 3, "contests_lc": 5, "stars_cc": 2, "problems_cc": 1} {
		rules.Upsert(ctx, metric, points, "test")
	}
	repository.NewStudentRepository(db).Create(ctx, &models.Student{ID: "S1", Name: "Alice"})
	alice, bob := "alice", "bob"
	profiles := repository.NewProfileRepository(db)
	profiles.Create(ctx, &models.CodingProfile{StudentID: "S1", Platform: models.PlatformLeetCode, Username: &alice, Status: models.StatusAccepted})
	profiles.Create(ctx, &models.CodingProfile{StudentID: "S1", Platform: models.PlatformCodeChef, Username: &bob, Status: models.StatusAccepted})
	repository.NewPerformanceRepository(db).SaveAll(ctx, "S1", map[models.Platform]models.PlatformMetrics{
		models.PlatformLeetCode: {Platform: models.PlatformLeetCode, Easy: 2, Medium: 1, Contests: 1},
		models.PlatformCodeChef: {Platform: models.PlatformCodeChef, Stars: 3, ProblemsSolved: 10},
	})

	svc := NewRankingService(rules, repository.NewRankingRepository(db), RankingOptions{})

	page, err := svc.ComputeRanking(ctx, models.RankingFilter{}, PageRequest{})
	if err != nil {
		t.Fatalf("Failed to compute ranking: %v", err)
	}
	if page.Students[0].Score != 26 || page.Students[0].Rank != 1 {
		t.Errorf("Expected score 26 at rank 1, got %+v", page.Students[0])
	}

	profiles.Update(ctx, "S1", models.PlatformCodeChef, map[string]interface{}{"status": models.StatusPending})
	page, _ = svc.ComputeRanking(ctx, models.RankingFilter{}, PageRequest{})
	if page.Students[0].Score != 10 {
		t.Errorf("Expected CodeChef terms to be zeroed, got %d", page.Students[0].Score)
	}
}

func TestRankingPagination(t *testing.T) {
	svc, _ := setupRankingService(t, 25)
	ctx := context.Background()

	full, err := svc.ComputeRanking(ctx, models.RankingFilter{}, PageRequest{Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("Failed to compute ranking: %v", err)
	}
	second, err := svc.ComputeRanking(ctx, models.RankingFilter{}, PageRequest{Page: 2, Limit: 5})
	if err != nil {
		t.Fatalf("Failed to compute ranking: %v", err)
	}

	if second.TotalStudents != 25 || second.TotalPages != 5 || second.Page != 2 || second.Limit != 5 {
		t.Errorf("Unexpected page metadata: %+v", second)
	}
	for i, s := range second.Students {
		want := full.Students[5+i]
		if s.StudentID != want.StudentID || s.Rank != want.Rank {
			t.Errorf("Page slice %d: expected %s rank %d, got %s rank %d", i, want.StudentID, want.Rank, s.StudentID, s.Rank)
		}
	}

	for i, s := range full.Students {
		if s.Rank != i+1 {
			t.Errorf("Expected gapless ranks, position %d has rank %d", i, s.Rank)
		}
		if i > 0 {
			prev := full.Students[i-1]
			if prev.Score < s.Score || (prev.Score == s.Score && prev.StudentID > s.StudentID) {
				t.Errorf("Ordering broken between %s and %s", prev.StudentID, s.StudentID)
			}
		}
	}
}

func TestRankingLimits(t *testing.T) {
	svc, _ := setupRankingService(t, 25)
	ctx := context.Background()

	def, _ := svc.ComputeRanking(ctx, models.RankingFilter{}, PageRequest{})
	if def.Limit != 10 || len(def.Students) != 10 || def.Page != 1 {
		t.Errorf("Expected default limit 10 on page 1, got limit %d len %d page %d", def.Limit, len(def.Students), def.Page)
	}

	capped, _ := svc.ComputeRanking(ctx, models.RankingFilter{}, PageRequest{Limit: 500})
	if capped.Limit != 20 {
		t.Errorf("Expected limit capped at 20, got %d", capped.Limit)
	}

	beyond, _ := svc.ComputeRanking(ctx, models.RankingFilter{}, PageRequest{Page: 9, Limit: 10})
	if len(beyond.Students) != 0 || beyond.TotalPages != 3 {
		t.Errorf("Expected empty page past the end, got %+v", beyond)
	}
}

func TestRankPersistenceOnlyWhenUnfiltered(t *testing.T) {
	svc, db := setupRankingService(t, 9)
	ctx := context.Background()
	students := repository.NewStudentRepository(db)

	filtered, err := svc.ComputeRanking(ctx, models.RankingFilter{Department: "ECE"}, PageRequest{Limit: 20})
	if err != nil {
		t.Fatalf("Failed to compute ranking: %v", err)
	}
	if filtered.RanksSaved {
		t.Error("Expected filtered ranking not to be persisted")
	}
	for _, s := range filtered.Students {
		if s.StudentID == "S01" {
			t.Error("Expected department filter to exclude CSE students")
		}
	}
	s, _ := students.GetByID(ctx, filtered.Students[0].StudentID)
	if s.OverallRank != 0 {
		t.Errorf("Expected no stored rank after filtered request, got %d", s.OverallRank)
	}

	full, _ := svc.ComputeRanking(ctx, models.RankingFilter{}, PageRequest{Limit: 20})
	if !full.RanksSaved {
		t.Fatal("Expected unfiltered ranking to be persisted")
	}
	for _, r := range full.Students {
		stored, _ := students.GetByID(ctx, r.StudentID)
		if stored.OverallRank != r.Rank || stored.Score != r.Score {
			t.Errorf("Stored rank diverged for %s: stored %d/%d, returned %d/%d", r.StudentID, stored.OverallRank, stored.Score, r.Rank, r.Score)
		}
	}
}
