package consensus

import (
	"testing"

	"github.com/harrison/tetrad/internal/models"
)

func TestAggregateScore(t *testing.T) {
	if got := AggregateScore(nil); got != 0 {
		t.Fatalf("empty votes: got %d, want 0", got)
	}
	votes := map[string]models.ModelVote{
		"a": {Score: 90},
		"b": {Score: 60},
		"c": {Score: 60},
	}
	if got := AggregateScore(votes); got != 70 {
		t.Fatalf("got %d, want 70", got)
	}
}

func TestConsolidateFindingsGroupsAndSorts(t *testing.T) {
	votes := map[string]models.ModelVote{
		"Codex": {
			Reviewer:    "Codex",
			Issues:      []string{"SQL injection in query builder", "missing newline at EOF"},
			Suggestions: []string{"use parameterized queries", "add trailing newline"},
		},
		"Gemini": {
			Reviewer: "Gemini",
			Issues:   []string{"  sql injection in query builder  "},
		},
		"Qwen": {
			Reviewer: "Qwen",
			Issues:   []string{"possible nil pointer panic"},
		},
	}

	findings := ConsolidateFindings(votes)
	if len(findings) != 3 {
		t.Fatalf("got %d findings, want 3", len(findings))
	}

	// The security finding was raised by two reviewers after case/whitespace
	// normalization, so it must be consolidated into a single finding and
	// sort ahead of the lower-severity ones.
	first := findings[0]
	if first.Category != models.CategorySecurity {
		t.Fatalf("first finding category = %s, want security", first.Category)
	}
	if first.ConsensusStrength != models.ConsensusModerate {
		t.Fatalf("consensus strength = %s, want moderate (2 reviewers)", first.ConsensusStrength)
	}
	if first.Suggestion != "use parameterized queries" {
		t.Fatalf("suggestion = %q, want paired suggestion preserved", first.Suggestion)
	}

	for i := 1; i < len(findings); i++ {
		if findings[i-1].Severity.Rank() > findings[i].Severity.Rank() {
			t.Fatalf("findings not sorted non-increasing by severity at index %d", i)
		}
	}
}

func TestConfidenceBounds(t *testing.T) {
	votes := map[string]models.ModelVote{
		"a": {Vote: models.VotePass},
		"b": {Vote: models.VotePass},
		"c": {Vote: models.VotePass},
	}
	c := Confidence(votes, 100, 70, true)
	if c < 0 || c > 1 {
		t.Fatalf("confidence out of bounds: %v", c)
	}
	if c != 1.0 {
		t.Fatalf("full pass + full score + achieved should be 1.0, got %v", c)
	}

	zero := Confidence(nil, 0, 70, false)
	if zero != 0 {
		t.Fatalf("empty votes should yield zero confidence, got %v", zero)
	}
}

func TestCanRetry(t *testing.T) {
	if !CanRetry(0, 3) {
		t.Fatal("loop 0 of 3 should be retryable")
	}
	if CanRetry(3, 3) {
		t.Fatal("loop 3 of 3 should not be retryable")
	}
}
