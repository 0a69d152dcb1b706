package providers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/codetrack/scraper-service/internal/fetch"
	"github.com/yourusername/codetrack/scraper-service/internal/models"
)

func TestExtractUsername(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		markers  []string
		expected string
		wantErr  bool
	}{
		{name: "bare username", input: "alice", expected: "alice"},
		{name: "trimmed", input: "  alice  ", expected: "alice"},
		{name: "leetcode u path", input: "https://leetcode.com/u/alice/", markers: []string{"u"}, expected: "alice"},
		{name: "leetcode legacy path", input: "https://leetcode.com/alice", markers: []string{"u"}, expected: "alice"},
		{name: "codechef users path", input: "https://www.codechef.com/users/bob", markers: []string{"users"}, expected: "bob"},
		{name: "gfg without scheme", input: "geeksforgeeks.org/user/carol/practice", markers: []string{"user"}, expected: "carol"},
		{name: "hackerrank profile", input: "https://www.hackerrank.com/profile/dave_01", markers: []string{"profile"}, expected: "dave_01"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace", input: "   ", wantErr: true},
		{name: "host only", input: "https://leetcode.com/", wantErr: true},
		{name: "illegal characters", input: "bad name!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractUsername(models.PlatformLeetCode, tt.input, tt.markers...)
			if tt.wantErr {
				if !IsKind(err, KindInvalidInput) {
					t.Errorf("Expected InvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestEmptyInputMakesNoNetworkCall(t *testing.T) {
	fetcher := &fakeFetcher{}
	providers := []Provider{
		NewGeeksForGeeksProvider(fetcher, "https://www.geeksforgeeks.org", time.Second),
		NewCodeChefProvider(fetcher, "https://www.codechef.com", time.Second, 0),
		NewHackerRankProvider(fetcher, "https://www.hackerrank.com", time.Second),
		NewLeetCodeProvider(fetcher, "https://leetcode.com/graphql", time.Second, LeetCodeWeights{}),
	}

	for _, p := range providers {
		t.Run(string(p.Platform()), func(t *testing.T) {
			_, err := p.FetchProfile(context.Background(), " ")
			if !IsKind(err, KindInvalidInput) {
				t.Errorf("Expected InvalidInput, got %v", err)
			}
			if IsRetryable(err) {
				t.Error("InvalidInput must not be retryable")
			}
		})
	}

	if fetcher.Calls() != 0 {
		t.Errorf("Expected zero network calls, got %d", fetcher.Calls())
	}
}

func TestFetchErrorsAreClassified(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{name: "not found", err: &fetch.HTTPError{URL: "u", StatusCode: 404}, expected: KindProfileNotFound},
		{name: "server error", err: &fetch.HTTPError{URL: "u", StatusCode: 503}, expected: KindHTTP},
		{name: "timeout", err: &fetch.HTTPError{URL: "u", Err: context.DeadlineExceeded}, expected: KindHTTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{err: tt.err}
			p := NewGeeksForGeeksProvider(fetcher, "https://www.geeksforgeeks.org", time.Second)

			_, err := p.FetchProfile(context.Background(), "carol")
			if !IsKind(err, tt.expected) {
				t.Errorf("Expected %s, got %v", tt.expected, err)
			}
			if !IsRetryable(err) {
				t.Errorf("Expected %s to be retryable", tt.expected)
			}

			var httpErr *fetch.HTTPError
			if tt.expected == KindHTTP && !errors.As(err, &httpErr) {
				t.Error("Expected the fetch error to stay unwrappable")
			}
			if timedOut := strings.Contains(err.Error(), "timed out"); timedOut != (tt.name == "timeout") {
				t.Errorf("Unexpected timeout marking: %v", err)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	fetcher := &fakeFetcher{}
	registry := NewRegistry(NewHackerRankProvider(fetcher, "https://www.hackerrank.com", time.Second))

	if _, err := registry.Get(models.PlatformHackerRank); err != nil {
		t.Errorf("Expected HackerRank provider, got error %v", err)
	}
	if _, err := registry.Get(models.PlatformLeetCode); err == nil {
		t.Error("Expected error for unregistered platform")
	}
}
