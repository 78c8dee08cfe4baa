package stats

import (
	"math"

	"github.com/Shubhamkahar196/CodeFixer/pkg/models"
)

// RepoStats is the aggregated snapshot stored on the repository record.
type RepoStats struct {
	TotalIssues    int
	CriticalIssues int
	WarningIssues  int
	InfoIssues     int
	HealthScore    int // [0; 100]
}

type Calculator struct{}

// Severity bucket weights: each open critical costs 10 score points,
// each warning 4, each informational 1.
const (
	criticalWeight = 0.10
	warningWeight  = 0.04
	infoWeight     = 0.01
)

// Calc buckets the issue snapshot by severity and derives the health score
// 100*(1 - weighted penalty), clamped to [0; 100]. Closed and ignored issues
// don't count. The score strictly decreases as any bucket grows until the
// clamp floor is reached.
func (c Calculator) Calc(issues []models.Issue) *RepoStats {
	const maxScore = 100

	var res RepoStats
	for i := range issues {
		issue := &issues[i]
		if !issue.CountsTowardStats() {
			continue
		}

		res.TotalIssues++
		switch issue.Severity {
		case models.SeverityCritical:
			res.CriticalIssues++
		case models.SeverityHigh:
			res.WarningIssues++
		default:
			res.InfoIssues++
		}
	}

	penalty := criticalWeight*float64(res.CriticalIssues) +
		warningWeight*float64(res.WarningIssues) +
		infoWeight*float64(res.InfoIssues)

	score := int(math.Round(maxScore * (1 - penalty)))
	if score < 0 {
		score = 0
	}
	if score > maxScore {
		score = maxScore
	}
	res.HealthScore = score

	return &res
}
