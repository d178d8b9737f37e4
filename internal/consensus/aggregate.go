package consensus

import (
	"sort"
	"strings"

	"github.com/harrison/tetrad/internal/models"
)

// AggregateScore is the integer-floor mean of all vote scores.
func AggregateScore(votes map[string]models.ModelVote) int {
	if len(votes) == 0 {
		return 0
	}
	total := 0
	for _, v := range votes {
		total += v.Score
	}
	return total / len(votes)
}

var criticalMarkers = []string{"security", "vulnerability", "injection"}
var errorMarkers = []string{"error", "bug", "fail", "crash"}
var warningMarkers = []string{"warn", "should", "consider"}

func inferSeverity(issue string) models.Severity {
	lower := strings.ToLower(issue)
	for _, m := range criticalMarkers {
		if strings.Contains(lower, m) {
			return models.SeverityCritical
		}
	}
	for _, m := range errorMarkers {
		if strings.Contains(lower, m) {
			return models.SeverityError
		}
	}
	for _, m := range warningMarkers {
		if strings.Contains(lower, m) {
			return models.SeverityWarning
		}
	}
	return models.SeverityInfo
}

var categoryMarkers = []struct {
	category models.Category
	markers  []string
}{
	{models.CategorySecurity, []string{"security", "vulnerability", "injection", "credential", "secret"}},
	{models.CategoryPerformance, []string{"performance", "slow", "allocation", "memory"}},
	{models.CategoryLogic, []string{"logic", "bug", "null", "panic", "crash"}},
	{models.CategoryStyle, []string{"style", "naming", "format", "lint"}},
	{models.CategoryArchitecture, []string{"architecture", "coupling", "layering", "design"}},
}

func inferCategory(issue string) models.Category {
	lower := strings.ToLower(issue)
	for _, cm := range categoryMarkers {
		for _, m := range cm.markers {
			if strings.Contains(lower, m) {
				return cm.category
			}
		}
	}
	return models.CategoryGeneral
}

func normalizeIssue(issue string) string {
	return strings.ToLower(strings.TrimSpace(issue))
}

// ConsolidateFindings groups issue strings across votes by case-insensitive
// trim-equal equality, infers severity/category, attaches a paired or
// best-effort suggestion, and returns the findings sorted non-increasing
// by severity.
func ConsolidateFindings(votes map[string]models.ModelVote) []models.Finding {
	type group struct {
		issue       string
		reviewers   []string
		suggestion  string
	}
	order := make([]string, 0)
	groups := make(map[string]*group)

	// stable iteration over reviewer names for deterministic output
	names := make([]string, 0, len(votes))
	for name := range votes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := votes[name]
		for idx, issue := range v.Issues {
			key := normalizeIssue(issue)
			if key == "" {
				continue
			}
			g, ok := groups[key]
			if !ok {
				g = &group{issue: strings.TrimSpace(issue)}
				groups[key] = g
				order = append(order, key)
			}
			g.reviewers = append(g.reviewers, v.Reviewer)
			if g.suggestion == "" {
				if s, ok := v.SuggestionFor(idx); ok && s != "" {
					g.suggestion = s
				}
			}
		}
	}

	// fallback suggestion pass: any suggestion whose lowercase contains
	// the first 20 characters of the issue text.
	for _, key := range order {
		g := groups[key]
		if g.suggestion != "" {
			continue
		}
		prefix := g.issue
		if len(prefix) > 20 {
			prefix = prefix[:20]
		}
		prefix = strings.ToLower(prefix)
		for _, name := range names {
			for _, s := range votes[name].Suggestions {
				if strings.Contains(strings.ToLower(s), prefix) {
					g.suggestion = s
					break
				}
			}
			if g.suggestion != "" {
				break
			}
		}
	}

	findings := make([]models.Finding, 0, len(order))
	for _, key := range order {
		g := groups[key]
		findings = append(findings, models.Finding{
			Severity:          inferSeverity(g.issue),
			Category:          inferCategory(g.issue),
			Issue:             g.issue,
			Suggestion:        g.suggestion,
			Reviewers:         strings.Join(g.reviewers, ", "),
			ConsensusStrength: models.StrengthFor(len(g.reviewers)),
		})
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity.Rank() < findings[j].Severity.Rank()
	})
	return findings
}

// Confidence computes the [0,1] confidence score per spec.md §4.D.
func Confidence(votes map[string]models.ModelVote, score, minScore int, consensusAchieved bool) float64 {
	total := len(votes)
	if total == 0 {
		return 0
	}
	passCount := countVote(votes, models.VotePass)
	passRatio := float64(passCount) / float64(total)

	scoreGap := 0.0
	if 100-minScore > 0 {
		scoreGap = float64(score-minScore) / float64(100-minScore)
	}
	scoreGap = clamp(scoreGap, 0, 1)

	achievedTerm := 0.0
	if consensusAchieved {
		achievedTerm = 1.0
	}

	return 0.4*passRatio + 0.3*scoreGap + 0.3*achievedTerm
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CanRetry reports whether currentLoop is within the retry budget.
func CanRetry(currentLoop int, maxLoops int) bool {
	return currentLoop < maxLoops
}
