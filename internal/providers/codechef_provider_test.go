package providers

import (
	"context"
	"testing"
	"time"
)

const codeChefProfileHTML = `<html><body>
<div class="user-details-container">
  <header><h1>Bob Builder</h1></header>
  <div class="rating-star"><span>&#9733;</span><span>&#9733;</span><span>&#9733;</span></div>
</div>
<div class="rating-number">1654</div>
<div class="contest-participated-count">No. of Contests Participated: <b>12</b></div>
<section class="rating-data-section problems-solved">
  <h3>Contests (4)</h3>
  <h3>Total Problems Solved: 10</h3>
</section>
<div class="widget-badges">
  <div class="badge">Contest Contender</div>
  <div class="badge">Problem Solver</div>
</div>
</body></html>`

const codeChefFallbackHTML = `<html><body>
<div class="user-details-container">
  <span class="rating">2&#9733;</span>
</div>
<p>Contests Participated: 7</p>
<h3>Total Problems Solved: 1,204</h3>
<div class="widget-badges"><div class="badge">No badges earned yet</div></div>
</body></html>`

func TestParseCodeChefProfile(t *testing.T) {
	metrics, err := ParseCodeChefProfile([]byte(codeChefProfileHTML), "bob")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if metrics.Username != "bob" {
		t.Errorf("Expected username bob, got %q", metrics.Username)
	}
	if metrics.Stars != 3 {
		t.Errorf("Expected 3 stars, got %d", metrics.Stars)
	}
	if metrics.Rating != 1654 {
		t.Errorf("Expected rating 1654, got %d", metrics.Rating)
	}
	if metrics.ProblemsSolved != 10 {
		t.Errorf("Expected 10 problems, got %d", metrics.ProblemsSolved)
	}
	if metrics.Badges != 2 {
		t.Errorf("Expected 2 badges, got %d", metrics.Badges)
	}
	if metrics.Contests != 12 {
		t.Errorf("Expected 12 contests from the primary selector, got %d", metrics.Contests)
	}
}

func TestParseCodeChefFallbackSelectors(t *testing.T) {
	metrics, err := ParseCodeChefProfile([]byte(codeChefFallbackHTML), "bob")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if metrics.Stars != 2 {
		t.Errorf("Expected 2 stars from rating text, got %d", metrics.Stars)
	}
	if metrics.ProblemsSolved != 1204 {
		t.Errorf("Expected 1204 problems, got %d", metrics.ProblemsSolved)
	}
	if metrics.Badges != 0 {
		t.Errorf("Expected 'no badges' node to be excluded, got %d", metrics.Badges)
	}
	if metrics.Contests != 7 {
		t.Errorf("Expected 7 contests from the fallback selector, got %d", metrics.Contests)
	}
}

func TestParseCodeChefErrors(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected ErrorKind
	}{
		{name: "redirect to home page", html: `<html><body><h1>Practice</h1></body></html>`, expected: KindProfileNotFound},
		{name: "layout changed", html: `<html><body><div class="user-details-container"></div></body></html>`, expected: KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCodeChefProfile([]byte(tt.html), "bob")
			if !IsKind(err, tt.expected) {
				t.Errorf("Expected %s, got %v", tt.expected, err)
			}
		})
	}
}

func TestCodeChefFetchUsesProfileURLAndTimeout(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(codeChefProfileHTML)}
	provider := NewCodeChefProvider(fetcher, "https://www.codechef.com/", 30*time.Second, time.Millisecond)

	if _, err := provider.FetchProfile(context.Background(), "https://www.codechef.com/users/bob"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if fetcher.lastURL != "https://www.codechef.com/users/bob" {
		t.Errorf("Unexpected url %q", fetcher.lastURL)
	}
	if fetcher.lastOpts.Timeout != 30*time.Second {
		t.Errorf("Expected doubled timeout, got %v", fetcher.lastOpts.Timeout)
	}
}

func TestCodeChefPreDelayHonorsContext(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(codeChefProfileHTML)}
	provider := NewCodeChefProvider(fetcher, "https://www.codechef.com", time.Second, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := provider.FetchProfile(ctx, "bob"); !IsKind(err, KindHTTP) {
		t.Errorf("Expected HttpError on cancelled delay, got %v", err)
	}
	if fetcher.Calls() != 0 {
		t.Errorf("Expected no request after cancellation, got %d", fetcher.Calls())
	}
}
