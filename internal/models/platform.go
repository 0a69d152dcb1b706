package models

import "strings"

// Platform identifies an external coding-judge site
type Platform string

const (
	PlatformLeetCode      Platform = "leetcode"
	PlatformCodeChef      Platform = "codechef"
	PlatformGeeksForGeeks Platform = "geeksforgeeks"
	PlatformHackerRank    Platform = "hackerrank"
)

// BatchOrder is the fixed order platforms are scraped in for one student
var BatchOrder = []Platform{
	PlatformGeeksForGeeks,
	PlatformCodeChef,
	PlatformHackerRank,
	PlatformLeetCode,
}

// Valid reports whether p is one of the supported platforms
func (p Platform) Valid() bool {
	switch p {
	case PlatformLeetCode, PlatformCodeChef, PlatformGeeksForGeeks, PlatformHackerRank:
		return true
	}
	return false
}

// DisplayName returns the human readable platform name
func (p Platform) DisplayName() string {
	switch p {
	case PlatformLeetCode:
		return "LeetCode"
	case PlatformCodeChef:
		return "CodeChef"
	case PlatformGeeksForGeeks:
		return "GeeksForGeeks"
	case PlatformHackerRank:
		return "HackerRank"
	}
	return string(p)
}

// Suffix is the short tag used in metric and column names
func (p Platform) Suffix() string {
	switch p {
	case PlatformLeetCode:
		return "lc"
	case PlatformCodeChef:
		return "cc"
	case PlatformGeeksForGeeks:
		return "gfg"
	case PlatformHackerRank:
		return "hr"
	}
	return string(p)
}

// ParsePlatform accepts platform tags case-insensitively, including the
// short forms used in spreadsheets ("lc", "cc", "gfg", "hr").
func ParsePlatform(s string) (Platform, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "leetcode", "lc":
		return PlatformLeetCode, true
	case "codechef", "cc":
		return PlatformCodeChef, true
	case "geeksforgeeks", "gfg":
		return PlatformGeeksForGeeks, true
	case "hackerrank", "hr":
		return PlatformHackerRank, true
	}
	return "", false
}

// Metric is a named numeric quantity that can carry a grading weight
type Metric struct {
	Name     string
	Platform Platform
	// Column is the performances table column holding the value
	Column string
}

// MetricCatalog lists every metric the scoring engine knows about.
// Metric names double as column names on the performances table.
var MetricCatalog = []Metric{
	{Name: "easy_lc", Platform: PlatformLeetCode, Column: "easy_lc"},
	{Name: "medium_lc", Platform: PlatformLeetCode, Column: "medium_lc"},
	{Name: "hard_lc", Platform: PlatformLeetCode, Column: "hard_lc"},
	{Name: "contests_lc", Platform: PlatformLeetCode, Column: "contests_lc"},
	{Name: "rating_lc", Platform: PlatformLeetCode, Column: "rating_lc"},

	{Name: "problems_cc", Platform: PlatformCodeChef, Column: "problems_cc"},
	{Name: "stars_cc", Platform: PlatformCodeChef, Column: "stars_cc"},
	{Name: "rating_cc", Platform: PlatformCodeChef, Column: "rating_cc"},
	{Name: "badges_cc", Platform: PlatformCodeChef, Column: "badges_cc"},
	{Name: "contests_cc", Platform: PlatformCodeChef, Column: "contests_cc"},

	{Name: "school_gfg", Platform: PlatformGeeksForGeeks, Column: "school_gfg"},
	{Name: "basic_gfg", Platform: PlatformGeeksForGeeks, Column: "basic_gfg"},
	{Name: "easy_gfg", Platform: PlatformGeeksForGeeks, Column: "easy_gfg"},
	{Name: "medium_gfg", Platform: PlatformGeeksForGeeks, Column: "medium_gfg"},
	{Name: "hard_gfg", Platform: PlatformGeeksForGeeks, Column: "hard_gfg"},

	{Name: "badges_hr", Platform: PlatformHackerRank, Column: "badges_hr"},
	{Name: "stars_hr", Platform: PlatformHackerRank, Column: "stars_hr"},
	{Name: "certificates_hr", Platform: PlatformHackerRank, Column: "certificates_hr"},
}

// LookupMetric finds a catalog metric by name
func LookupMetric(name string) (Metric, bool) {
	for _, m := range MetricCatalog {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}
