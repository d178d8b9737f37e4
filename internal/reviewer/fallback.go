package reviewer

import (
	"strings"

	"github.com/harrison/tetrad/internal/models"
)

// failMarkers and warnMarkers are the Portuguese+English keyword sets
// spec.md §4.A requires for the text classifier fallback.
var failMarkers = []string{
	"critical", "vulnerabilidade", "vulnerability", "security flaw",
	"falha de segurança", "insecure", "inseguro", "crítico",
}

var warnMarkers = []string{
	"issue", "problema", "suggestion", "sugestão", "improvement",
	"melhoria", "overflow", "consider", "considere",
}

// KeywordInfer classifies raw reviewer text into a vote when structured
// JSON extraction failed, per spec.md §4.A's parse-or-infer fallback.
func KeywordInfer(reviewer, raw string) models.ModelVote {
	lower := strings.ToLower(raw)

	vote := models.VotePass
	for _, m := range failMarkers {
		if strings.Contains(lower, m) {
			vote = models.VoteFail
			break
		}
	}
	if vote == models.VotePass {
		for _, m := range warnMarkers {
			if strings.Contains(lower, m) {
				vote = models.VoteWarn
				break
			}
		}
	}

	score := scoreBand(vote, lower)
	issues := extractBulletLines(raw, 5)
	reasoning := raw
	if len(reasoning) > 500 {
		reasoning = reasoning[:500]
	}

	return models.ModelVote{
		Reviewer:  reviewer,
		Vote:      vote,
		Score:     score,
		Reasoning: reasoning,
		Issues:    issues,
	}
}

func scoreBand(vote models.Vote, lower string) int {
	switch vote {
	case models.VotePass:
		switch {
		case strings.Contains(lower, "perfect") || strings.Contains(lower, "excellent"):
			return 95
		case strings.Contains(lower, "good") || strings.Contains(lower, "correct") || strings.Contains(lower, "idiomatic"):
			return 85
		default:
			return 80
		}
	case models.VoteWarn:
		if strings.Contains(lower, "minor") {
			return 70
		}
		return 60
	default:
		return 35
	}
}

func extractBulletLines(text string, limit int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "-") || strings.HasPrefix(t, "*") || strings.HasPrefix(t, "•") {
			t = strings.TrimSpace(strings.TrimLeft(t, "-*•"))
			if t == "" {
				continue
			}
			out = append(out, t)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}
