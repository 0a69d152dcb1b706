package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/yourusername/codetrack/scraper-service/internal/fetch"
	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/pkg/logger"
	"go.uber.org/zap"
)

const leetCodeProfileQuery = `query userProfile($username: String!) {
  matchedUser(username: $username) {
    username
    submitStatsGlobal {
      acSubmissionNum {
        difficulty
        count
      }
    }
  }
  userContestRanking(username: $username) {
    attendedContestsCount
    rating
  }
}`

// LeetCodeWeights drive the client-side Total_Score
type LeetCodeWeights struct {
	Easy    int
	Medium  int
	Hard    int
	Contest int
}

// LeetCodeProvider queries the LeetCode GraphQL endpoint
type LeetCodeProvider struct {
	fetcher    fetch.Fetcher
	graphqlURL string
	timeout    time.Duration
	weights    LeetCodeWeights
}

// NewLeetCodeProvider creates a new LeetCode provider
func NewLeetCodeProvider(fetcher fetch.Fetcher, graphqlURL string, timeout time.Duration, weights LeetCodeWeights) *LeetCodeProvider {
	return &LeetCodeProvider{
		fetcher:    fetcher,
		graphqlURL: graphqlURL,
		timeout:    timeout,
		weights:    weights,
	}
}

func (p *LeetCodeProvider) Platform() models.Platform {
	return models.PlatformLeetCode
}

type leetCodeResponse struct {
	Data struct {
		MatchedUser *struct {
			Username          string `json:"username"`
			SubmitStatsGlobal *struct {
				AcSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStatsGlobal"`
		} `json:"matchedUser"`
		UserContestRanking *struct {
			AttendedContestsCount int     `json:"attendedContestsCount"`
			Rating                float64 `json:"rating"`
		} `json:"userContestRanking"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchProfile fetches submission stats and contest ranking for a user
func (p *LeetCodeProvider) FetchProfile(ctx context.Context, input string) (*models.PlatformMetrics, error) {
	username, err := extractUsername(models.PlatformLeetCode, input, "u", "profile")
	if err != nil {
		return nil, err
	}

	logger.Info("Fetching LeetCode profile", zap.String("username", username))

	body, err := json.Marshal(map[string]interface{}{
		"query":     leetCodeProfileQuery,
		"variables": map[string]string{"username": username},
	})
	if err != nil {
		return nil, parseError(models.PlatformLeetCode, "failed to encode query: %v", err)
	}

	resp, err := p.fetcher.Post(ctx, p.graphqlURL, body, fetch.Options{
		Timeout: p.timeout,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
			"Referer":      fmt.Sprintf("https://leetcode.com/u/%s/", username),
		},
	})
	if err != nil {
		return nil, fromFetchError(models.PlatformLeetCode, username, err)
	}

	metrics, err := p.Parse(resp.Body, username)
	if err != nil {
		return nil, err
	}

	logger.Info("LeetCode profile fetched successfully",
		zap.String("username", username),
		zap.Int("easy", metrics.Easy),
		zap.Int("medium", metrics.Medium),
		zap.Int("hard", metrics.Hard),
		zap.Int("contests", metrics.Contests),
	)

	return metrics, nil
}

// Parse normalizes a GraphQL response. Missing or partial fields count as zero.
func (p *LeetCodeProvider) Parse(payload []byte, username string) (*models.PlatformMetrics, error) {
	var result leetCodeResponse
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, parseError(models.PlatformLeetCode, "failed to decode response: %v", err)
	}

	if result.Data.MatchedUser == nil {
		if len(result.Errors) > 0 {
			logger.Warn("LeetCode returned GraphQL errors",
				zap.String("username", username),
				zap.String("error", result.Errors[0].Message),
			)
		}
		return nil, profileNotFound(models.PlatformLeetCode, username)
	}

	metrics := &models.PlatformMetrics{
		Platform:  models.PlatformLeetCode,
		Username:  username,
		FetchedAt: time.Now(),
	}

	if stats := result.Data.MatchedUser.SubmitStatsGlobal; stats != nil {
		for _, bucket := range stats.AcSubmissionNum {
			switch strings.ToLower(bucket.Difficulty) {
			case "easy":
				metrics.Easy = bucket.Count
			case "medium":
				metrics.Medium = bucket.Count
			case "hard":
				metrics.Hard = bucket.Count
			}
		}
	}

	if ranking := result.Data.UserContestRanking; ranking != nil {
		metrics.Contests = ranking.AttendedContestsCount
		metrics.Rating = int(math.Round(ranking.Rating))
	}

	metrics.TotalScore = metrics.Easy*p.weights.Easy +
		metrics.Medium*p.weights.Medium +
		metrics.Hard*p.weights.Hard +
		metrics.Contests*p.weights.Contest

	return metrics, nil
}
