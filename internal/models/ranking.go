package models

// RankedStudent is one row of a ranking computation
type RankedStudent struct {
	StudentID  string `json:"student_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Year       int    `json:"year"`
	Section    string `json:"section"`
	Score      int    `json:"score"`
	Rank       int    `json:"rank"`
}

// RankingFilter narrows the ranked population without changing scores
type RankingFilter struct {
	Department string `form:"department" json:"department,omitempty"`
	Year       int    `form:"year" json:"year,omitempty"`
	Section    string `form:"section" json:"section,omitempty"`
	Search     string `form:"search" json:"search,omitempty"`
}

// Empty reports whether no filter criteria are set
func (f RankingFilter) Empty() bool {
	return f.Department == "" && f.Year == 0 && f.Section == "" && f.Search == ""
}
