package providers

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/yourusername/codetrack/scraper-service/internal/fetch"
	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/pkg/logger"
	"go.uber.org/zap"
)

var (
	gfgUsername = []SelectorStrategy{
		{Name: "user-handle", Kind: StrategyText, Selector: `[class*="profilePicSection_head_userHandle"]`},
		{Name: "profile-name", Kind: StrategyText, Selector: ".profile_name"},
		{Name: "user-name", Kind: StrategyText, Selector: ".userName"},
	}

	// Nodes carrying "CATEGORY (count)" labels, most specific first
	gfgCategorySelectors = []string{
		`[class*="problemNavbar_head_nav--text"]`,
		".tabs .tab",
		"body",
	}

	gfgCategory = regexp.MustCompile(`(?i)\b(school|basic|easy|medium|hard)\s*\(\s*(\d+)\s*\)`)
)

// GeeksForGeeksProvider scrapes public GeeksForGeeks user pages
type GeeksForGeeksProvider struct {
	fetcher fetch.Fetcher
	baseURL string
	timeout time.Duration
}

// NewGeeksForGeeksProvider creates a new GeeksForGeeks provider
func NewGeeksForGeeksProvider(fetcher fetch.Fetcher, baseURL string, timeout time.Duration) *GeeksForGeeksProvider {
	return &GeeksForGeeksProvider{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

func (p *GeeksForGeeksProvider) Platform() models.Platform {
	return models.PlatformGeeksForGeeks
}

// FetchProfile fetches and parses /user/{username}/
func (p *GeeksForGeeksProvider) FetchProfile(ctx context.Context, input string) (*models.PlatformMetrics, error) {
	username, err := extractUsername(models.PlatformGeeksForGeeks, input, "user")
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/user/%s/", p.baseURL, username)
	logger.Info("Fetching GeeksForGeeks profile", zap.String("username", username), zap.String("url", url))

	resp, err := p.fetcher.Get(ctx, url, fetch.Options{Timeout: p.timeout})
	if err != nil {
		return nil, fromFetchError(models.PlatformGeeksForGeeks, username, err)
	}

	metrics, err := ParseGeeksForGeeksProfile(resp.Body, username)
	if err != nil {
		return nil, err
	}

	logger.Info("GeeksForGeeks profile fetched successfully",
		zap.String("username", username),
		zap.Int("easy", metrics.Easy),
		zap.Int("medium", metrics.Medium),
		zap.Int("hard", metrics.Hard),
	)

	return metrics, nil
}

// ParseGeeksForGeeksProfile extracts per-category problem counts
func ParseGeeksForGeeksProfile(html []byte, username string) (*models.PlatformMetrics, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, parseError(models.PlatformGeeksForGeeks, "failed to parse html: %v", err)
	}
	root := doc.Selection

	if _, _, ok := FirstString(root, gfgUsername); !ok {
		return nil, profileNotFound(models.PlatformGeeksForGeeks, username)
	}

	metrics := &models.PlatformMetrics{
		Platform:  models.PlatformGeeksForGeeks,
		Username:  username,
		FetchedAt: time.Now(),
	}

	found := false
	for _, selector := range gfgCategorySelectors {
		root.Find(selector).Each(func(_ int, n *goquery.Selection) {
			for _, m := range gfgCategory.FindAllStringSubmatch(n.Text(), -1) {
				count, err := strconv.Atoi(m[2])
				if err != nil {
					continue
				}
				found = true
				switch strings.ToLower(m[1]) {
				case "school":
					metrics.School = count
				case "basic":
					metrics.Basic = count
				case "easy":
					metrics.Easy = count
				case "medium":
					metrics.Medium = count
				case "hard":
					metrics.Hard = count
				}
			}
		})
		if found {
			break
		}
	}

	if !found {
		return nil, parseError(models.PlatformGeeksForGeeks, "no problem categories found for %q", username)
	}

	return metrics, nil
}
