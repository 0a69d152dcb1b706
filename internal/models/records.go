package models

import (
	"time"

	"gorm.io/datatypes"
)

// Student is the subset of the student record the pipeline reads and writes
type Student struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Department  string     `gorm:"index" json:"department"`
	Year        int        `gorm:"index" json:"year"`
	Section     string     `json:"section"`
	Score       int        `gorm:"not null;default:0" json:"score"`
	OverallRank int        `gorm:"not null;default:0" json:"overall_rank"`
	RankedAt    *time.Time `json:"ranked_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProfileStatus is the verification state of a coding profile link
type ProfileStatus string

const (
	StatusPending   ProfileStatus = "pending"
	StatusAccepted  ProfileStatus = "accepted"
	StatusRejected  ProfileStatus = "rejected"
	StatusSuspended ProfileStatus = "suspended"
)

// CodingProfile links a student to their username on one platform
type CodingProfile struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	StudentID      string        `gorm:"uniqueIndex:idx_profile_student_platform;size:64;not null" json:"student_id"`
	Platform       Platform      `gorm:"uniqueIndex:idx_profile_student_platform;size:32;not null" json:"platform"`
	Username       *string       `json:"username"`
	Status         ProfileStatus `gorm:"size:16;not null;default:'pending'" json:"status"`
	Verified       bool          `gorm:"not null;default:false" json:"verified"`
	VerifiedBy     string        `json:"verified_by"`
	DemotionReason string        `json:"demotion_reason,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Performance holds the latest normalized metrics for every platform of
// one student. Each platform's columns are overwritten as a unit.
type Performance struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	StudentID string `gorm:"uniqueIndex;size:64;not null" json:"student_id"`

	EasyLC       int    `gorm:"column:easy_lc;not null;default:0" json:"easy_lc"`
	MediumLC     int    `gorm:"column:medium_lc;not null;default:0" json:"medium_lc"`
	HardLC       int    `gorm:"column:hard_lc;not null;default:0" json:"hard_lc"`
	ContestsLC   int    `gorm:"column:contests_lc;not null;default:0" json:"contests_lc"`
	RatingLC     int    `gorm:"column:rating_lc;not null;default:0" json:"rating_lc"`
	TotalScoreLC int    `gorm:"column:total_score_lc;not null;default:0" json:"total_score_lc"`
	ErrorLC      string `gorm:"column:error_lc" json:"error_lc,omitempty"`

	ProblemsCC int    `gorm:"column:problems_cc;not null;default:0" json:"problems_cc"`
	StarsCC    int    `gorm:"column:stars_cc;not null;default:0" json:"stars_cc"`
	RatingCC   int    `gorm:"column:rating_cc;not null;default:0" json:"rating_cc"`
	BadgesCC   int    `gorm:"column:badges_cc;not null;default:0" json:"badges_cc"`
	ContestsCC int    `gorm:"column:contests_cc;not null;default:0" json:"contests_cc"`
	ErrorCC    string `gorm:"column:error_cc" json:"error_cc,omitempty"`

	SchoolGFG int    `gorm:"column:school_gfg;not null;default:0" json:"school_gfg"`
	BasicGFG  int    `gorm:"column:basic_gfg;not null;default:0" json:"basic_gfg"`
	EasyGFG   int    `gorm:"column:easy_gfg;not null;default:0" json:"easy_gfg"`
	MediumGFG int    `gorm:"column:medium_gfg;not null;default:0" json:"medium_gfg"`
	HardGFG   int    `gorm:"column:hard_gfg;not null;default:0" json:"hard_gfg"`
	ErrorGFG  string `gorm:"column:error_gfg" json:"error_gfg,omitempty"`

	BadgesHR       int            `gorm:"column:badges_hr;not null;default:0" json:"badges_hr"`
	StarsHR        int            `gorm:"column:stars_hr;not null;default:0" json:"stars_hr"`
	CertificatesHR int            `gorm:"column:certificates_hr;not null;default:0" json:"certificates_hr"`
	BadgeDetailsHR datatypes.JSON `gorm:"column:badge_details_hr" json:"badge_details_hr,omitempty"`
	CertTitlesHR   datatypes.JSON `gorm:"column:certificate_titles_hr" json:"certificate_titles_hr,omitempty"`
	ErrorHR        string         `gorm:"column:error_hr" json:"error_hr,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MetricValue returns the stored value for a catalog metric, 0 if unknown
func (p *Performance) MetricValue(name string) int {
	switch name {
	case "easy_lc":
		return p.EasyLC
	case "medium_lc":
		return p.MediumLC
	case "hard_lc":
		return p.HardLC
	case "contests_lc":
		return p.ContestsLC
	case "rating_lc":
		return p.RatingLC
	case "problems_cc":
		return p.ProblemsCC
	case "stars_cc":
		return p.StarsCC
	case "rating_cc":
		return p.RatingCC
	case "badges_cc":
		return p.BadgesCC
	case "contests_cc":
		return p.ContestsCC
	case "school_gfg":
		return p.SchoolGFG
	case "basic_gfg":
		return p.BasicGFG
	case "easy_gfg":
		return p.EasyGFG
	case "medium_gfg":
		return p.MediumGFG
	case "hard_gfg":
		return p.HardGFG
	case "badges_hr":
		return p.BadgesHR
	case "stars_hr":
		return p.StarsHR
	case "certificates_hr":
		return p.CertificatesHR
	}
	return 0
}

// GradingRule assigns integer points to one metric
type GradingRule struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Metric    string    `gorm:"uniqueIndex;size:64;not null" json:"metric"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultGradingRules are seeded for metrics that have no rule yet
var DefaultGradingRules = map[string]int{
	"easy_lc":         1,
	"medium_lc":       3,
	"hard_lc":         5,
	"contests_lc":     5,
	"rating_lc":       0,
	"problems_cc":     1,
	"stars_cc":        10,
	"rating_cc":       0,
	"badges_cc":       2,
	"contests_cc":     5,
	"school_gfg":      1,
	"basic_gfg":       1,
	"easy_gfg":        1,
	"medium_gfg":      3,
	"hard_gfg":        5,
	"badges_hr":       5,
	"stars_hr":        2,
	"certificates_hr": 5,
}

// CachedResult stores the merged metrics of one scrape keyed by the
// content hash of the student and their linked usernames.
type CachedResult struct {
	Key       string    `gorm:"column:cache_key;primaryKey;size:64" json:"key"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	ExpiresAt int64     `gorm:"index;not null" json:"expires_at"` // epoch millis
	CreatedAt time.Time `json:"created_at"`
}

// AllModels lists every table the service migrates
func AllModels() []interface{} {
	return []interface{}{
		&Student{},
		&CodingProfile{},
		&Performance{},
		&GradingRule{},
		&CachedResult{},
	}
}
