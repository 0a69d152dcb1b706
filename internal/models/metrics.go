package models

import "time"

// Badge is one HackerRank badge with the number of stars earned on it
type Badge struct {
	Name  string `json:"name"`
	Stars int    `json:"stars"`
}

// PlatformMetrics is the normalized snapshot produced by one platform scrape.
// Only the fields relevant to Platform are populated; a failed scrape yields
// a zero-valued record with Error set.
type PlatformMetrics struct {
	Platform Platform `json:"platform"`
	Username string   `json:"username,omitempty"`

	// Difficulty buckets (LeetCode: Easy/Medium/Hard, GFG: all five)
	School int `json:"school,omitempty"`
	Basic  int `json:"basic,omitempty"`
	Easy   int `json:"easy,omitempty"`
	Medium int `json:"medium,omitempty"`
	Hard   int `json:"hard,omitempty"`

	// CodeChef
	ProblemsSolved int `json:"problems_solved,omitempty"`

	Stars        int `json:"stars,omitempty"` // CodeChef star rating, HackerRank total stars
	Rating       int `json:"rating,omitempty"`
	Badges       int `json:"badges,omitempty"`
	Contests     int `json:"contests,omitempty"`
	Certificates int `json:"certificates,omitempty"`

	// TotalScore is the LeetCode client-side weighted total
	TotalScore int `json:"total_score,omitempty"`

	BadgeDetails      []Badge  `json:"badge_details,omitempty"`
	CertificateTitles []string `json:"certificate_titles,omitempty"`

	Error     string    `json:"error,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Failed reports whether the snapshot is an error stub
func (m PlatformMetrics) Failed() bool {
	return m.Error != ""
}

// ErrorStub builds the zero-valued record recorded for a failed platform
func ErrorStub(platform Platform, username string, err error) PlatformMetrics {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return PlatformMetrics{
		Platform:  platform,
		Username:  username,
		Error:     msg,
		FetchedAt: time.Now(),
	}
}

// MetricValues maps each catalog metric owned by the snapshot's platform
// to its value.
func (m PlatformMetrics) MetricValues() map[string]int {
	switch m.Platform {
	case PlatformLeetCode:
		return map[string]int{
			"easy_lc":     m.Easy,
			"medium_lc":   m.Medium,
			"hard_lc":     m.Hard,
			"contests_lc": m.Contests,
			"rating_lc":   m.Rating,
		}
	case PlatformCodeChef:
		return map[string]int{
			"problems_cc": m.ProblemsSolved,
			"stars_cc":    m.Stars,
			"rating_cc":   m.Rating,
			"badges_cc":   m.Badges,
			"contests_cc": m.Contests,
		}
	case PlatformGeeksForGeeks:
		return map[string]int{
			"school_gfg": m.School,
			"basic_gfg":  m.Basic,
			"easy_gfg":   m.Easy,
			"medium_gfg": m.Medium,
			"hard_gfg":   m.Hard,
		}
	case PlatformHackerRank:
		return map[string]int{
			"badges_hr":       m.Badges,
			"stars_hr":        m.Stars,
			"certificates_hr": m.Certificates,
		}
	}
	return map[string]int{}
}
