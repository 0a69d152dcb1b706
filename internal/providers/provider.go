package providers

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
)

// Provider fetches one external profile and normalizes it
type Provider interface {
	Platform() models.Platform
	// FetchProfile accepts a profile URL or a bare username
	FetchProfile(ctx context.Context, input string) (*models.PlatformMetrics, error)
}

// Registry resolves the provider for a platform
type Registry struct {
	providers map[models.Platform]Provider
}

// NewRegistry creates a registry from the given providers
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[models.Platform]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Platform()] = p
	}
	return r
}

// Get returns the provider for platform
func (r *Registry) Get(platform models.Platform) (Provider, error) {
	p, ok := r.providers[platform]
	if !ok {
		return nil, fmt.Errorf("no provider registered for platform %q", platform)
	}
	return p, nil
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,64}$`)

// extractUsername pulls the username out of a profile URL. markers are the
// path segments that precede the username (e.g. "users" in /users/bob).
// Bare usernames are returned as is.
func extractUsername(platform models.Platform, input string, markers ...string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", invalidInput(platform, "empty username")
	}

	if !strings.Contains(input, "/") {
		input = strings.TrimPrefix(input, "@")
		if !usernamePattern.MatchString(input) {
			return "", invalidInput(platform, "invalid username %q", input)
		}
		return input, nil
	}

	raw := input
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", invalidInput(platform, "invalid profile url %q", input)
	}

	var segments []string
	for _, s := range strings.Split(parsed.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return "", invalidInput(platform, "no username in %q", input)
	}

	username := ""
	for i, s := range segments {
		for _, m := range markers {
			if strings.EqualFold(s, m) && i+1 < len(segments) {
				username = segments[i+1]
				break
			}
		}
		if username != "" {
			break
		}
	}
	if username == "" {
		username = segments[0]
	}

	username = strings.TrimPrefix(username, "@")
	if !usernamePattern.MatchString(username) {
		return "", invalidInput(platform, "invalid username %q", username)
	}
	return username, nil
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
