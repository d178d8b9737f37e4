package consensus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harrison/tetrad/internal/models"
)

// RenderFeedback builds the markdown feedback text described in spec.md
// §4.D: a decision header, pass/warn/fail counts, per-reviewer sections,
// and a recommended-action paragraph.
func RenderFeedback(decision models.Decision, votes map[string]models.ModelVote) string {
	var sb strings.Builder

	switch decision {
	case models.DecisionPass:
		sb.WriteString("# Evaluation Approved\n\n")
	case models.DecisionBlock:
		sb.WriteString("# Evaluation Blocked\n\n")
	default:
		sb.WriteString("# Evaluation Needs Revision\n\n")
	}

	pass := countVote(votes, models.VotePass)
	warn := countVote(votes, models.VoteWarn)
	fail := countVote(votes, models.VoteFail)
	fmt.Fprintf(&sb, "%d PASS | %d WARN | %d FAIL\n\n", pass, warn, fail)

	names := make([]string, 0, len(votes))
	for name := range votes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := votes[name]
		sb.WriteString(fmt.Sprintf("## %s %s (score: %d)\n\n", voteIcon(v.Vote), name, v.Score))
		if v.Reasoning != "" {
			sb.WriteString(v.Reasoning)
			sb.WriteString("\n\n")
		}
		if len(v.Issues) > 0 {
			sb.WriteString("Issues:\n")
			for _, issue := range v.Issues {
				sb.WriteString("- " + issue + "\n")
			}
			sb.WriteString("\n")
		}
		if len(v.Suggestions) > 0 {
			sb.WriteString("Suggestions:\n")
			for _, s := range v.Suggestions {
				sb.WriteString("- " + s + "\n")
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString(recommendedAction(decision))
	return sb.String()
}

func voteIcon(v models.Vote) string {
	switch v {
	case models.VotePass:
		return "✓"
	case models.VoteWarn:
		return "⚠"
	default:
		return "✗"
	}
}

func recommendedAction(decision models.Decision) string {
	switch decision {
	case models.DecisionPass:
		return "Recommended action: proceed. All reviewers reached agreement within the configured threshold.\n"
	case models.DecisionBlock:
		return "Recommended action: stop and address the blocking findings above before retrying.\n"
	default:
		return "Recommended action: revise based on the feedback above and resubmit for another round of review.\n"
	}
}
