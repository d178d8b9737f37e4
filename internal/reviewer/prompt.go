package reviewer

import (
	"fmt"
	"strings"

	"github.com/harrison/tetrad/internal/models"
)

// kindLabel renders an EvaluationKind for the prompt header.
func kindLabel(kind models.EvaluationKind) string {
	switch kind {
	case models.KindPlan:
		return "implementation plan"
	case models.KindTests:
		return "test suite"
	case models.KindFinalCheck:
		return "final certification"
	default:
		return "code change"
	}
}

// BuildPrompt renders the multi-line prompt contract from spec.md §4.A:
// a header naming language and kind, the payload fenced as code, optional
// free-text context, and a fixed instruction to respond as JSON.
func BuildPrompt(req models.EvaluationRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Review the following %s written in %s.\n\n", kindLabel(req.Kind), nonEmpty(req.Language, "unspecified"))
	sb.WriteString("```")
	sb.WriteString(req.Language)
	sb.WriteString("\n")
	sb.WriteString(req.Payload)
	sb.WriteString("\n```\n\n")
	if req.Context != "" {
		sb.WriteString("Additional context:\n")
		sb.WriteString(req.Context)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Respond with a single JSON object with exactly these fields: ")
	sb.WriteString(`"vote" (one of "PASS", "WARN", "FAIL"), "score" (integer 0-100), ` +
		`"reasoning" (string), "issues" (list of strings), "suggestions" (list of strings).`)
	sb.WriteString("\n")
	return sb.String()
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
