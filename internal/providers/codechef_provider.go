package providers

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/yourusername/codetrack/scraper-service/internal/fetch"
	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/pkg/logger"
	"go.uber.org/zap"
)

var (
	codeChefProfileMarker = ".user-details-container"

	codeChefUsername = []SelectorStrategy{
		{Name: "header-h1", Kind: StrategyText, Selector: ".user-details-container header h1"},
		{Name: "h2-style", Kind: StrategyText, Selector: ".user-details-container .h2-style"},
		{Name: "username-link", Kind: StrategyText, Selector: ".m-username--link"},
	}

	codeChefStars = []SelectorStrategy{
		{Name: "rating-star-spans", Kind: StrategyCount, Selector: ".rating-star span"},
		{Name: "rating-text", Kind: StrategyInt, Selector: ".user-details-container .rating"},
	}

	codeChefRating = []SelectorStrategy{
		{Name: "rating-number", Kind: StrategyInt, Selector: ".rating-number"},
	}

	codeChefProblems = []SelectorStrategy{
		{Name: "problems-solved-h3", Kind: StrategyIntAfterLabel, Selector: ".rating-data-section.problems-solved h3", Label: "Total Problems Solved"},
		{Name: "any-h3", Kind: StrategyIntAfterLabel, Selector: "h3", Label: "Total Problems Solved"},
	}

	codeChefBadges = []SelectorStrategy{
		{Name: "widget-badges", Kind: StrategyCount, Selector: ".widget-badges .badge", Exclude: "no badges"},
		{Name: "badge", Kind: StrategyCount, Selector: ".badge", Exclude: "no badges"},
	}

	// The participation counter moved out of its own node on some
	// layouts; the fallback reads it from the surrounding text.
	codeChefContests = []SelectorStrategy{
		{Name: "contest-participated-count", Kind: StrategyInt, Selector: ".contest-participated-count b"},
		{Name: "contests-participated-label", Kind: StrategyIntAfterLabel, Selector: "body", Label: "Contests Participated"},
	}
)

// CodeChefProvider scrapes public CodeChef profile pages
type CodeChefProvider struct {
	fetcher  fetch.Fetcher
	baseURL  string
	timeout  time.Duration
	preDelay time.Duration
}

// NewCodeChefProvider creates a new CodeChef provider. timeout should be
// double the other platforms'; preDelay is waited before every request.
func NewCodeChefProvider(fetcher fetch.Fetcher, baseURL string, timeout, preDelay time.Duration) *CodeChefProvider {
	return &CodeChefProvider{
		fetcher:  fetcher,
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeout:  timeout,
		preDelay: preDelay,
	}
}

func (p *CodeChefProvider) Platform() models.Platform {
	return models.PlatformCodeChef
}

// FetchProfile fetches and parses /users/{username}
func (p *CodeChefProvider) FetchProfile(ctx context.Context, input string) (*models.PlatformMetrics, error) {
	username, err := extractUsername(models.PlatformCodeChef, input, "users")
	if err != nil {
		return nil, err
	}

	if err := sleep(ctx, p.preDelay); err != nil {
		return nil, &ScrapeError{Kind: KindHTTP, Platform: models.PlatformCodeChef, Err: err}
	}

	url := fmt.Sprintf("%s/users/%s", p.baseURL, username)
	logger.Info("Fetching CodeChef profile", zap.String("username", username), zap.String("url", url))

	resp, err := p.fetcher.Get(ctx, url, fetch.Options{Timeout: p.timeout})
	if err != nil {
		return nil, fromFetchError(models.PlatformCodeChef, username, err)
	}

	metrics, err := ParseCodeChefProfile(resp.Body, username)
	if err != nil {
		return nil, err
	}

	logger.Info("CodeChef profile fetched successfully",
		zap.String("username", username),
		zap.Int("stars", metrics.Stars),
		zap.Int("problems", metrics.ProblemsSolved),
		zap.Int("contests", metrics.Contests),
	)

	return metrics, nil
}

// ParseCodeChefProfile extracts metrics from a CodeChef profile page
func ParseCodeChefProfile(html []byte, username string) (*models.PlatformMetrics, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, parseError(models.PlatformCodeChef, "failed to parse html: %v", err)
	}
	root := doc.Selection

	// Unknown users are redirected to a page without the profile block
	if root.Find(codeChefProfileMarker).Length() == 0 {
		return nil, profileNotFound(models.PlatformCodeChef, username)
	}

	problems, ok := FirstInt(root, codeChefProblems)
	if !ok {
		return nil, parseError(models.PlatformCodeChef, "total problems solved not found for %q", username)
	}

	metrics := &models.PlatformMetrics{
		Platform:       models.PlatformCodeChef,
		Username:       username,
		ProblemsSolved: problems,
		FetchedAt:      time.Now(),
	}

	if name, strategy, ok := FirstString(root, codeChefUsername); ok {
		logger.Debug("CodeChef profile header", zap.String("name", name), zap.String("strategy", strategy))
	}
	metrics.Stars, _ = FirstInt(root, codeChefStars)
	metrics.Rating, _ = FirstInt(root, codeChefRating)
	metrics.Badges, _ = FirstInt(root, codeChefBadges)

	contests, ok := FirstInt(root, codeChefContests)
	if !ok {
		logger.Debug("CodeChef contest count missing", zap.String("username", username))
	}
	metrics.Contests = contests

	return metrics, nil
}
