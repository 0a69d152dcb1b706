package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
)

// Engine turns grading rules into per-student scores
type Engine struct {
	terms []term
}

type term struct {
	metric models.Metric
	points int
}

// NewEngine builds an engine from the current grading rules. Rules for
// metrics outside the catalog are ignored; they contribute nothing.
func NewEngine(rules []models.GradingRule) *Engine {
	terms := make([]term, 0, len(rules))
	for _, r := range rules {
		metric, ok := models.LookupMetric(r.Metric)
		if !ok {
			continue
		}
		terms = append(terms, term{metric: metric, points: r.Points})
	}
	sort.Slice(terms, func(i, j int) bool {
		return terms[i].metric.Name < terms[j].metric.Name
	})
	return &Engine{terms: terms}
}

// Score computes a student's score from their performance row and the
// verification status of each platform. Metrics of a platform whose
// status is not accepted count as zero.
func (e *Engine) Score(perf *models.Performance, statuses map[models.Platform]models.ProfileStatus) int {
	if perf == nil {
		return 0
	}
	total := 0
	for _, t := range e.terms {
		if statuses[t.metric.Platform] != models.StatusAccepted {
			continue
		}
		total += perf.MetricValue(t.metric.Name) * t.points
	}
	return total
}

// ProfileAlias is the SQL alias under which the ranking query joins the
// coding profile of a platform.
func ProfileAlias(p models.Platform) string {
	return "cp_" + p.Suffix()
}

// Expression renders the score as a SQL expression over the performance
// row (alias perf) and the per-platform profile joins. Column names come
// from the metric catalog; statuses and weights are bound parameters.
func (e *Engine) Expression() (string, []interface{}) {
	if len(e.terms) == 0 {
		return "0", nil
	}

	parts := make([]string, 0, len(e.terms))
	args := make([]interface{}, 0, len(e.terms)*2)
	for _, t := range e.terms {
		parts = append(parts, fmt.Sprintf(
			"(CASE WHEN %s.status = ? THEN COALESCE(perf.%s, 0) ELSE 0 END) * ?",
			ProfileAlias(t.metric.Platform), t.metric.Column,
		))
		args = append(args, string(models.StatusAccepted), t.points)
	}
	return "(" + strings.Join(parts, " + ") + ")", args
}

// AssignRanks orders students by descending score, breaking ties by
// ascending student ID, and numbers them 1..N.
func AssignRanks(students []models.RankedStudent) {
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].Score != students[j].Score {
			return students[i].Score > students[j].Score
		}
		return students[i].StudentID < students[j].StudentID
	})
	for i := range students {
		students[i].Rank = i + 1
	}
}
