package providers

import (
	"context"
	"testing"
	"time"
)

const gfgProfileHTML = `<html><body>
<div class="profilePicSection_head_userHandle__oOfFy">carol</div>
<ul class="problemNavbar_head__cKSRi">
  <li><div class="problemNavbar_head_nav--text__UaGCx">SCHOOL (4)</div></li>
  <li><div class="problemNavbar_head_nav--text__UaGCx">BASIC (7)</div></li>
  <li><div class="problemNavbar_head_nav--text__UaGCx">EASY (12)</div></li>
  <li><div class="problemNavbar_head_nav--text__UaGCx">Medium (5)</div></li>
  <li><div class="problemNavbar_head_nav--text__UaGCx">hard ( 1 )</div></li>
</ul>
</body></html>`

func TestParseGeeksForGeeksProfile(t *testing.T) {
	metrics, err := ParseGeeksForGeeksProfile([]byte(gfgProfileHTML), "carol")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := map[string]int{"school": 4, "basic": 7, "easy": 12, "medium": 5, "hard": 1}
	got := map[string]int{
		"school": metrics.School,
		"basic":  metrics.Basic,
		"easy":   metrics.Easy,
		"medium": metrics.Medium,
		"hard":   metrics.Hard,
	}
	for k, v := range expected {
		if got[k] != v {
			t.Errorf("Expected %s=%d, got %d", k, v, got[k])
		}
	}
}

func TestParseGeeksForGeeksErrors(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected ErrorKind
	}{
		{name: "missing username node", html: `<html><body><div>User not found</div></body></html>`, expected: KindProfileNotFound},
		{name: "no categories", html: `<html><body><div class="profile_name">carol</div></body></html>`, expected: KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGeeksForGeeksProfile([]byte(tt.html), "carol")
			if !IsKind(err, tt.expected) {
				t.Errorf("Expected %s, got %v", tt.expected, err)
			}
		})
	}
}

func TestGeeksForGeeksFetchProfile(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(gfgProfileHTML)}
	provider := NewGeeksForGeeksProvider(fetcher, "https://www.geeksforgeeks.org", time.Second)

	metrics, err := provider.FetchProfile(context.Background(), "https://www.geeksforgeeks.org/user/carol/")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if fetcher.lastURL != "https://www.geeksforgeeks.org/user/carol/" {
		t.Errorf("Unexpected url %q", fetcher.lastURL)
	}
	if metrics.Easy != 12 {
		t.Errorf("Expected 12 easy problems, got %d", metrics.Easy)
	}
}
