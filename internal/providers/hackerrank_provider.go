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
	hackerRankBadgeNodes = []string{".hacker-badge", ".badge-container svg.hexagon"}

	hackerRankBadgeTitle = []SelectorStrategy{
		{Name: "badge-title", Kind: StrategyText, Selector: ".badge-title"},
		{Name: "svg-title", Kind: StrategyText, Selector: "title"},
	}

	hackerRankStarSelectors = []string{".badge-star", "svg.star"}

	hackerRankCertificates = []string{".certificate_v3-heading", ".certificate-heading"}
)

// HackerRankProvider scrapes public HackerRank profile pages
type HackerRankProvider struct {
	fetcher fetch.Fetcher
	baseURL string
	timeout time.Duration
}

// NewHackerRankProvider creates a new HackerRank provider
func NewHackerRankProvider(fetcher fetch.Fetcher, baseURL string, timeout time.Duration) *HackerRankProvider {
	return &HackerRankProvider{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

func (p *HackerRankProvider) Platform() models.Platform {
	return models.PlatformHackerRank
}

// FetchProfile fetches and parses /profile/{username}
func (p *HackerRankProvider) FetchProfile(ctx context.Context, input string) (*models.PlatformMetrics, error) {
	username, err := extractUsername(models.PlatformHackerRank, input, "profile")
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/profile/%s", p.baseURL, username)
	logger.Info("Fetching HackerRank profile", zap.String("username", username), zap.String("url", url))

	resp, err := p.fetcher.Get(ctx, url, fetch.Options{Timeout: p.timeout})
	if err != nil {
		return nil, fromFetchError(models.PlatformHackerRank, username, err)
	}

	metrics, err := ParseHackerRankProfile(resp.Body, username)
	if err != nil {
		return nil, err
	}

	logger.Info("HackerRank profile fetched successfully",
		zap.String("username", username),
		zap.Int("badges", metrics.Badges),
		zap.Int("stars", metrics.Stars),
		zap.Int("certificates", metrics.Certificates),
	)

	return metrics, nil
}

// ParseHackerRankProfile reads badge hexagons and certificate headings.
// A page with neither is a legitimately empty profile, not an error.
func ParseHackerRankProfile(html []byte, username string) (*models.PlatformMetrics, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, parseError(models.PlatformHackerRank, "failed to parse html: %v", err)
	}
	root := doc.Selection

	metrics := &models.PlatformMetrics{
		Platform:  models.PlatformHackerRank,
		Username:  username,
		FetchedAt: time.Now(),
	}

	for _, selector := range hackerRankBadgeNodes {
		nodes := root.Find(selector)
		if nodes.Length() == 0 {
			continue
		}
		nodes.Each(func(_ int, n *goquery.Selection) {
			name, _, _ := FirstString(n, hackerRankBadgeTitle)
			stars := 0
			for _, starSelector := range hackerRankStarSelectors {
				if c := n.Find(starSelector).Length(); c > 0 {
					stars = c
					break
				}
			}
			metrics.BadgeDetails = append(metrics.BadgeDetails, models.Badge{Name: name, Stars: stars})
			metrics.Stars += stars
		})
		break
	}
	metrics.Badges = len(metrics.BadgeDetails)

	for _, selector := range hackerRankCertificates {
		nodes := root.Find(selector)
		if nodes.Length() == 0 {
			continue
		}
		nodes.Each(func(_ int, n *goquery.Selection) {
			if title := normalizeSpace(n.Text()); title != "" {
				metrics.CertificateTitles = append(metrics.CertificateTitles, title)
			}
		})
		break
	}
	metrics.Certificates = len(metrics.CertificateTitles)

	if metrics.Badges == 0 && metrics.Certificates == 0 {
		logger.Info("HackerRank profile has no badges or certificates", zap.String("username", username))
	}

	return metrics, nil
}
